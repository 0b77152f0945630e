package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/gitpulse/internal/config"
	"github.com/mrz1836/gitpulse/internal/constants"
	"github.com/mrz1836/gitpulse/internal/logging"
)

// logFileWriter is the rotating log file opened by InitLogger, if any.
var logFileWriter io.WriteCloser //nolint:gochecknoglobals // Needed for cleanup

// zerologGlobalMu serializes replacement of the zerolog/log package logger.
var zerologGlobalMu sync.Mutex //nolint:gochecknoglobals // Protects zerolog global

// InitLogger builds the CLI logger. Verbose selects debug level and quiet
// selects warn level. A terminal gets the console writer unless NO_COLOR is
// set; anything else gets JSON lines on stderr.
//
// With fileEnabled the same entries are also appended to the rotating
// ~/.gitpulse/logs/gitpulse.log. A log file that cannot be opened is skipped.
func InitLogger(verbose, quiet, fileEnabled bool) zerolog.Logger {
	out := selectOutput()
	if fileEnabled {
		if fw, err := createLogFileWriter(); err == nil {
			logFileWriter = fw
			out = zerolog.MultiLevelWriter(out, fw)
		}
	}
	return newLogger(out, verbose, quiet)
}

// InitLoggerWithWriter builds the CLI logger on top of w. Tests use it to
// capture output.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	return newLogger(w, verbose, quiet)
}

func newLogger(w io.Writer, verbose, quiet bool) zerolog.Logger {
	logger := zerolog.New(w).
		Level(selectLevel(verbose, quiet)).
		Hook(logging.NewSensitiveDataHook()).
		With().Timestamp().Logger()

	zerologGlobalMu.Lock()
	log.Logger = logger
	zerologGlobalMu.Unlock()
	return logger
}

// CloseLogFile closes the log file opened by InitLogger.
func CloseLogFile() {
	if logFileWriter == nil {
		return
	}
	_ = logFileWriter.Close()
	logFileWriter = nil
}

func selectLevel(verbose, quiet bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	if quiet {
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

func selectOutput() io.Writer {
	if os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stderr.Fd())) {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
}

// redactingFile scrubs credentials from entries before they reach the file.
type redactingFile struct {
	*logging.FilteringWriter
	io.Closer
}

// createLogFileWriter opens the rotating CLI log file.
func createLogFileWriter() (io.WriteCloser, error) {
	path, err := LogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}
	return redactingFile{FilteringWriter: logging.NewFilteringWriter(rotator), Closer: rotator}, nil
}

// LogFilePath returns ~/.gitpulse/logs/gitpulse.log, honoring the home override.
func LogFilePath() (string, error) {
	dir, err := config.LogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.CLILogFileName), nil
}
