// Package logflags builds the zap logger used by the command line tools.
package logflags

import (
	"errors"
	"flag"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Flags struct {
	Level zapcore.Level
	Path  string
	// MaxSize is the size in megabytes at which a log file is rotated.
	MaxSize    int
	MaxBackups int
	Quiet      bool
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	fs.Var(&f.Level, "l", "logging level [debug,info,warn,error]")
	fs.StringVar(&f.Path, "log.path", "", "write logs to this file instead of stderr")
	fs.IntVar(&f.MaxSize, "log.maxsize", 100, "size in megabytes at which the log file is rotated")
	fs.IntVar(&f.MaxBackups, "log.maxbackups", 3, "number of rotated log files to keep")
	fs.BoolVar(&f.Quiet, "q", false, "quiet mode")
}

// Open returns a logger writing to stderr or, if a path was given, to a
// rotated log file.  Logs on a terminal are in console format and JSON
// otherwise.
func (f *Flags) Open() (*zap.Logger, error) {
	if f.Quiet {
		return zap.NewNop(), nil
	}
	if f.MaxSize < 0 || f.MaxBackups < 0 {
		return nil, errors.New("log rotation limits must not be negative")
	}
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	var ws zapcore.WriteSyncer
	encoder := zapcore.NewJSONEncoder(config)
	if f.Path != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   f.Path,
			MaxSize:    f.MaxSize,
			MaxBackups: f.MaxBackups,
		})
	} else {
		ws = zapcore.Lock(os.Stderr)
		if term.IsTerminal(int(os.Stderr.Fd())) {
			config.EncodeLevel = zapcore.CapitalColorLevelEncoder
			encoder = zapcore.NewConsoleEncoder(config)
		}
	}
	return zap.New(zapcore.NewCore(encoder, ws, f.Level)), nil
}
