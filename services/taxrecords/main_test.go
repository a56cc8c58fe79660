package taxrecords

import (
	"os"
	"testing"
	"taxrecords-backend/lib/telemetry"
)

func TestMain(m *testing.M) {
	cleanup := telemetry.SetupForTesting("test:taxrecords")
	code := m.Run()
	cleanup()
	os.Exit(code)
}
