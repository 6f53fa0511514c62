package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"rar-studio/internal/app"
)

func main() {
	limit := flag.Int("limit", 0, "maximum messages to process (0 uses outbound.batch_limit)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := app.RunOutboundOnce(ctx, *limit)
	if err != nil {
		logrus.Fatalf("outbound run failed: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"queued_found": result.QueuedFound,
		"sent":         result.Sent,
		"failed":       result.Failed,
	}).Info("Outbound run completed")
}
