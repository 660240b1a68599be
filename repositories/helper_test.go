package repositories

import (
	"log/slog"

	"github.com/mama165/sdk-go/logs"
)

func testLogger() *slog.Logger {
	return logs.GetLoggerFromString("error")
}
