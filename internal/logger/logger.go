// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level  string
	Pretty bool
	// File, when set, receives JSON logs with size-based rotation in
	// addition to stdout.
	File string
}

// New returns the root logger and a function that flushes and closes the
// log file, if any.
func New(opts Options) (zerolog.Logger, func() error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var console io.Writer = os.Stdout
	if opts.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}

	closer := func() error { return nil }
	out := console
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(console, file)
		closer = file.Close
	}

	log := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if err != nil && opts.Level != "" {
		log.Warn().Str("level", opts.Level).Msg("unknown log level, using info")
	}
	return log, closer
}
