package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/ledger/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type levelStyle struct {
	level log.Level
	key   string
	icon  string
	color lipgloss.AdaptiveColor
}

var levelStyles = []levelStyle{
	{log.ErrorLevel, "error", "❌", lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}},
	{log.WarnLevel, "warn", "⚠️", lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}},
	{log.InfoLevel, "info", "ℹ️", lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}},
	{log.DebugLevel, "debug", "🐛", lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}},
}

func setupLogger(cfg *config.Log) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

// newLogger builds the charmbracelet handler behind slog and installs it as the default logger.
func newLogger(w io.Writer, cfg *config.Log) *slog.Logger {
	styles := log.DefaultStyles()
	for _, ls := range levelStyles {
		styles.Levels[ls.level] = lipgloss.NewStyle().
			SetString(ls.icon).
			Bold(true).
			Padding(0, 1).
			Foreground(ls.color)
		styles.Keys[ls.key] = lipgloss.NewStyle().Foreground(ls.color)
		styles.Values[ls.key] = lipgloss.NewStyle().Bold(true)
	}
	muted := levelStyles[len(levelStyles)-1].color
	for _, key := range []string{"prefix", "caller", "time", "kind", "reference"} {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(muted)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}

	formatter := log.TextFormatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(styles)

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
