package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/edu-leads/internal/config"
	"github.com/iliyamo/edu-leads/internal/logger"
	"github.com/iliyamo/edu-leads/internal/queue"
)

// notifier drains the lead.submitted queue into a line-per-lead log that
// admissions staff tail for new enquiries.
func main() {
	_ = godotenv.Load()
	logger.Init("edu-leads-notifier")

	logPath := os.Getenv("LEAD_NOTIFY_LOG")
	if logPath == "" {
		logPath = queue.DefaultNotificationLog
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.WithField("log", logPath).Info("lead notifier started")
	err := queue.StartLeadConsumer(ctx, config.RabbitURL(), logPath)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.WithError(err).Fatal("lead notifier stopped")
	}
	logger.Log.Info("lead notifier stopped")
}
