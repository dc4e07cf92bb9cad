package approvalflow

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/config"
	"github.com/lmittmann/tint"
)

var logLevel = new(slog.LevelVar)

// SetupLogger installs a tint handler on stderr as the default slog logger, at the
// level named by log.level (debug, info, warn, error). Start re-reads the level
// once the config file is loaded.
func SetupLogger() {
	applyLogLevel()
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339Nano,
		}),
	))
}

func applyLogLevel() {
	logLevel.Set(parseLevel(config.GetSystemSettingString(config.LOG_LEVEL)))
}

func parseLevel(text string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(text))); err != nil {
		return slog.LevelInfo
	}
	return level
}
