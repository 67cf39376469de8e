package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/liuwenjie/emomirror/backend/internal/config"
	"github.com/liuwenjie/emomirror/backend/internal/handler"
	"github.com/liuwenjie/emomirror/backend/internal/model/advisor"
	"github.com/liuwenjie/emomirror/backend/internal/service/ai"
	"github.com/liuwenjie/emomirror/backend/internal/service/preference"
	"github.com/liuwenjie/emomirror/backend/internal/service/session"
	"github.com/liuwenjie/emomirror/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Open the state store. Persistence is best-effort: a broken store
	// degrades to in-memory operation instead of aborting startup.
	var sessionPersister session.Persister
	var preferencePersister preference.Persister
	if cfg.Storage.Enabled {
		store, err := storage.Open(ctx, cfg.Storage.Path)
		if err != nil {
			log.Printf("warning: failed to open state store at %s: %v", cfg.Storage.Path, err)
			log.Println("continuing without persistence")
		} else {
			defer store.Close()
			sessionPersister = storage.NewSessionPersister(store)
			preferencePersister = storage.NewPreferencePersister(store)
			log.Printf("state store ready at %s", cfg.Storage.Path)
		}
	} else {
		log.Println("persistence disabled by configuration")
	}

	advisorStore := advisor.NewMemoryStore(advisor.Seed())

	sessionStore := session.NewStore(sessionPersister)
	sessionStore.Restore(ctx)

	preferenceStore := preference.NewStore(preferencePersister, preference.NewClockSource())
	preferenceStore.Restore(ctx)
	go preferenceStore.Run(ctx)

	// Initialize AI service
	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing with advisor-scripted replies only")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping AI initialization")
	}

	router := handler.NewRouter(cfg, sessionStore, preferenceStore, advisorStore, aiService)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("EmoMirror backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
