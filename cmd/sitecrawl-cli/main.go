package main

import (
	"context"
	"log/slog"
	"time"

	"sitecrawl/cmd/sitecrawl-cli/commands"
	"sitecrawl/lib/serviceutil"
	"sitecrawl/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	err := telemetry.SetupFromEnv(ctx, "sitecrawl-cli")
	if err != nil {
		slog.Warn("failed to setup telemetry", "err", err)
	}
	defer telemetry.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx, 15*time.Second)

	commands.ExecuteContext(ctx)
}
