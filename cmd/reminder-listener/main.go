package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"creances/internal/config"
	"creances/internal/importer"
	"creances/internal/reminder"
	"creances/internal/storage"
	"creances/internal/store"
)

func main() {
	cfg, err := config.Load()
	must(err)

	log, err := zap.NewProduction()
	must(err)
	defer log.Sync()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	sender := reminder.NewOutboxSender(cfg.OutboxDir)
	s, err := store.New(cfg, log, db, importer.New(cfg, log), sender)
	must(err)

	sched := reminder.NewScheduler(cfg, log, s)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(sched.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
