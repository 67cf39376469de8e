package preference

import (
	"context"
	"time"
)

// ClockSource derives the ambient light/dark preference from local time of
// day: light between 07:00 and 19:00, dark otherwise. It stands in for the
// host environment's preference signal on platforms without one.
type ClockSource struct {
	now  func() time.Time
	tick time.Duration
}

// NewClockSource returns a ClockSource polling the wall clock once a minute
// internally; consumers only see change events.
func NewClockSource() *ClockSource {
	return &ClockSource{now: time.Now, tick: time.Minute}
}

// Current returns the ambient theme for the current time.
func (c *ClockSource) Current() Theme {
	return themeForHour(c.now().Hour())
}

// Watch emits the ambient theme whenever it flips, until ctx is canceled.
func (c *ClockSource) Watch(ctx context.Context) <-chan Theme {
	ch := make(chan Theme, 1)

	go func() {
		defer close(ch)

		ticker := time.NewTicker(c.tick)
		defer ticker.Stop()

		last := c.Current()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current := c.Current()
				if current == last {
					continue
				}
				last = current
				select {
				case ch <- current:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch
}

func themeForHour(hour int) Theme {
	if hour >= 7 && hour < 19 {
		return ThemeLight
	}
	return ThemeDark
}
