package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/atharv-dange/vaani/internal/actions"
	"github.com/atharv-dange/vaani/internal/brain"
	"github.com/atharv-dange/vaani/internal/config"
	"github.com/atharv-dange/vaani/internal/contacts"
	"github.com/atharv-dange/vaani/internal/dialog"
	"github.com/atharv-dange/vaani/internal/history"
	"github.com/atharv-dange/vaani/internal/httpapi"
	"github.com/atharv-dange/vaani/internal/intent"
	"github.com/atharv-dange/vaani/internal/observability"
	"github.com/atharv-dange/vaani/internal/speech"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := history.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("history store init failed: %v", err)
	}
	defer store.Close()

	var directory contacts.Directory
	if cfg.DatabaseURL != "" {
		pgDir, err := contacts.NewPostgresDirectory(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("contact directory init failed: %v", err)
		}
		defer pgDir.Close()
		directory = pgDir
		log.Printf("contact directory: postgres")
	} else {
		directory = contacts.NewInMemoryDirectory(nil)
		log.Printf("contact directory: in-memory (empty; set DATABASE_URL for real contacts)")
	}

	var interpreter intent.Interpreter
	if cfg.InterpreterURL != "" {
		interpreter = intent.NewHTTPInterpreter(cfg.InterpreterURL)
		log.Printf("interpreter: http (%s)", cfg.InterpreterURL)
	} else {
		interpreter = intent.NewMockInterpreter()
		log.Printf("interpreter: mock (set VAANI_INTERPRETER_URL for the remote classifier)")
	}

	var responder brain.Responder
	if cfg.ResponderURL != "" {
		responder = brain.NewHTTPResponder(cfg.ResponderURL)
		log.Printf("responder: http (%s)", cfg.ResponderURL)
	} else {
		responder = brain.NewMockResponder()
		log.Printf("responder: mock (set VAANI_RESPONDER_URL for the conversational model)")
	}

	// The device speech bridge connects over the websocket surface; until one
	// is attached, mock engines let the service run end to end.
	recognizer := speech.NewMockRecognizer()
	speaker := speech.NewMockSpeaker(0)
	wakeSource := speech.NewMockWakeSource()
	levels := speech.NewMockLevelSource()

	controller := dialog.NewController(dialog.Options{
		WakePhrases:             cfg.WakePhrases,
		LanguageHint:            cfg.LanguageHint,
		SilenceTimeout:          cfg.SilenceTimeout,
		WakeAckTimeout:          cfg.WakeAckTimeout,
		SettleDelay:             cfg.SettleDelay,
		RetryMax:                cfg.RetryMax,
		RetryBaseDelay:          cfg.RetryBaseDelay,
		HighConfidence:          cfg.HighConfidence,
		HistoryLimit:            cfg.HistoryContextLimit,
		BargeInEnabled:          cfg.BargeInEnabled,
		BargeInSpeechThreshold:  cfg.BargeInSpeechThreshold,
		BargeInSilenceThreshold: cfg.BargeInSilenceThreshold,
	}, dialog.Collaborators{
		Recognizer:  recognizer,
		Speaker:     speaker,
		WakeSource:  wakeSource,
		Levels:      levels,
		Interpreter: interpreter,
		Responder:   responder,
		Executor:    actions.NewDispatcher(actions.NewMockDevice()),
		Resolver:    contacts.NewDirectoryResolver(directory),
		History:     store,
	}, metrics)

	api := httpapi.New(cfg, controller, store, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		if err := controller.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-gctx.Done():
			return nil
		case sig := <-sigCh:
			log.Printf("shutdown signal received: %v", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
			_ = httpServer.Close()
		}
		runCancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("run error: %v", err)
	}
	log.Printf("shutdown complete")
}
