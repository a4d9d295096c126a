package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/adnanq/wlandiag/internal/config"
)

func Init(lcfg config.LoggingConfig) {
	zerolog.SetGlobalLevel(parseLevel(lcfg.Level))
	log.Logger = zerolog.New(consoleWriter(lcfg)).With().Timestamp().Logger()
}

// SessionFile tees the global logger into a per-session log file under
// dir, named troubleshooting-<timestamp>.log like the dashboards expect.
// The file captures debug regardless of the console level. Returns the
// file path and a closer to call when the session ends.
func SessionFile(lcfg config.LoggingConfig, dir string) (string, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("troubleshooting-%s.log", time.Now().Format("20060102-150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("create session log: %w", err)
	}

	console := levelWriter{w: consoleWriter(lcfg), min: parseLevel(lcfg.Level)}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, f)).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	closeFn := func() {
		Init(lcfg)
		f.Close()
	}
	return path, closeFn, nil
}

func consoleWriter(lcfg config.LoggingConfig) io.Writer {
	if strings.ToLower(lcfg.Format) == "console" {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return os.Stderr
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// levelWriter keeps the console at its configured level while the session
// file receives everything.
type levelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (lw levelWriter) Write(p []byte) (int, error) {
	return lw.w.Write(p)
}

func (lw levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < lw.min {
		return len(p), nil
	}
	return lw.w.Write(p)
}
