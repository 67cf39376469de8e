package advisor

import "github.com/liuwenjie/emomirror/backend/internal/model/emotion"

// Profile captures the conversational attributes of one assistant persona
// exposed to the frontend.
type Profile struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Title       string                   `json:"title"`
	Tone        string                   `json:"tone"`
	PromptHint  string                   `json:"promptHint"`
	OpeningLine string                   `json:"openingLine"`
	Advice      map[emotion.Label]string `json:"advice,omitempty"`
}

// AdviceFor returns the canned guidance text for a label, falling back to the
// neutral entry when the profile has nothing specific.
func (p Profile) AdviceFor(label emotion.Label) string {
	if text, ok := p.Advice[label]; ok {
		return text
	}
	return p.Advice[emotion.Neutral]
}

// Seed provides the default advisor profiles shipped with the product.
func Seed() []Profile {
	return []Profile{
		{
			ID:          "companion",
			Name:        "Mira",
			Title:       "Everyday Companion",
			Tone:        "warm, attentive, encouraging",
			PromptHint:  "Acknowledge the user's feelings before offering suggestions; keep replies short and conversational.",
			OpeningLine: "Hi, I'm Mira. How are you feeling right now?",
			Advice: map[emotion.Label]string{
				emotion.Happy:     "You seem to be in a good place. Consider noting what contributed to it so you can return here later.",
				emotion.Excited:   "Great energy! Channel it into one concrete thing before it fades.",
				emotion.Calm:      "A calm stretch is a good moment for reflection or a task that needs focus.",
				emotion.Sad:       "It's okay to feel low. Something small and kind for yourself can help: a walk, a message to a friend.",
				emotion.Angry:     "Strong feelings pass. A few slow breaths before reacting usually leaves you with better options.",
				emotion.Anxious:   "Try naming what's worrying you out loud or on paper; it tends to shrink when it has edges.",
				emotion.Surprised: "Take a beat to let it settle before deciding anything.",
				emotion.Neutral:   "A steady baseline is worth keeping. Check in with yourself again in a while.",
			},
		},
		{
			ID:          "counselor",
			Name:        "Dr. Hart",
			Title:       "Reflective Counselor",
			Tone:        "measured, validating, inquisitive",
			PromptHint:  "Ask open questions that invite the user to explore the feeling rather than prescribing fixes.",
			OpeningLine: "Welcome back. What would you like to look at together today?",
			Advice: map[emotion.Label]string{
				emotion.Happy:   "What made this moment feel good? Naming it makes it easier to recreate.",
				emotion.Sad:     "Sadness often points at something that matters to you. What might that be?",
				emotion.Angry:   "Anger usually guards a boundary. Which one feels crossed?",
				emotion.Anxious: "When did you first notice the worry today? What was happening around you?",
				emotion.Neutral: "How does this steadiness compare with earlier in the week?",
			},
		},
		{
			ID:          "coach",
			Name:        "Kline",
			Title:       "Momentum Coach",
			Tone:        "direct, upbeat, pragmatic",
			PromptHint:  "Translate emotional state into one small actionable next step. Stay brief.",
			OpeningLine: "Let's see where you're at and pick one small win.",
			Advice: map[emotion.Label]string{
				emotion.Happy:   "Momentum is on your side. Pick the task you've been postponing.",
				emotion.Excited: "Write the idea down now, refine it later.",
				emotion.Sad:     "Lower the bar today: one tiny task, done, counts.",
				emotion.Anxious: "Break the big thing into the next five minutes only.",
				emotion.Neutral: "Steady is fine. What's the one thing that would make today a win?",
			},
		},
	}
}
