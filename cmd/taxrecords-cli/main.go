package main

import (
	"taxrecords-backend/cmd/taxrecords-cli/commands"
	"taxrecords-backend/lib/serviceutil"
	"taxrecords-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "taxrecords-cli")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
