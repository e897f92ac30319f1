package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"salesdesk_backend/internal/email"
	"salesdesk_backend/internal/scheduler"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/db"
	"salesdesk_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	var mail email.Sender
	if cfg.GetEmailEnabled() {
		mail = email.NewSMTPSender(cfg)
	} else {
		log.Warn("email sending disabled; reminders will be logged only")
		mail = email.NewNoopSender(log)
	}

	worker, err := scheduler.NewWorker(cfg, pool, mail, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	digest, err := scheduler.NewDigestScheduler(cfg)
	if err != nil {
		log.Error("failed to initialize digest scheduler", "error", err)
		panic("failed to initialize digest scheduler: " + err.Error())
	}

	go func() {
		<-ctx.Done()
		digest.Shutdown()
	}()
	go func() {
		if err := digest.Run(); err != nil {
			log.Error("digest scheduler stopped", "error", err)
		}
	}()

	worker.Run(ctx)
	log.Info("worker shut down")
}
