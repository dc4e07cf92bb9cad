package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//you may do your own logger setup here or use this default one with slog
	approvalflow.SetupLogger()

	if err := approvalflow.Start(ctx, nil); err != nil {
		slog.Error("Service exited with error", "error", err)
		os.Exit(1)
	}
}
