package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls Setup.
type Options struct {
	// Verbosity: 0 warn, 1 info, 2 debug, 3+ trace.
	Verbosity int
	// File enables the log file under the XDG state directory.
	File bool
	// Output overrides the console destination (stderr by default).
	Output io.Writer
}

// Setup configures the global logger. Console output is colourised only when
// it goes to a terminal.
func Setup(opts Options) {
	zerolog.SetGlobalLevel(levelFor(opts.Verbosity))

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(out),
	}

	writers := []io.Writer{console}
	var (
		logFile string
		fileErr error
	)
	if opts.File {
		logFile, fileErr = xdg.StateFile(filepath.Join("formtags", "formtags.log"))
		if fileErr == nil {
			var handle *os.File
			handle, fileErr = openLogFile(logFile)
			if fileErr == nil {
				writers = append(writers, handle)
			}
		}
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	if opts.Verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}
	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", logFile).Msg("Failed to open log file, logging to console only")
	}
	log.Debug().Int("verbosity", opts.Verbosity).Str("logFile", logFile).Msg("Logger initialized")
}

// GetLogger returns a sub-logger tagged with the component name.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func levelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return file, nil
}
