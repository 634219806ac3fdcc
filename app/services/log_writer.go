package services

import (
	"io"
	"os"

	"github.com/amirphl/collab-market/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogWriter returns stdout, teed into a rotating file when a path is configured.
// The returned closer releases the file and is safe to call on the stdout-only writer.
func NewLogWriter(cfg config.LoggingConfig) (io.Writer, io.Closer) {
	if cfg.FilePath == "" {
		return os.Stdout, nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	return io.MultiWriter(os.Stdout, file), file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
