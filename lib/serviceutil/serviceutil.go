package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Returns a context that will live until Ctrl+C is pressed, a crawl
// interrupted this way stops after the page it is on.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		slog.Warn("interrupted, stopping")
		cancel()
	}()

	return ctx
}

func Fatal(message string, err error) {
	slog.Error(message, "err", err)
	os.Exit(1)
}
