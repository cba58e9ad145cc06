package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"rowlly_listings/models"
)

const maxLogSize = 2 * 1024 * 1024 // 2MB

var minRank atomic.Int32

func init() {
	minRank.Store(int32(models.LogLevelInfo.Rank()))
}

// SetLevel drops messages below level.
func SetLevel(level models.LogLevel) {
	minRank.Store(int32(level.Rank()))
}

func Enabled(level models.LogLevel) bool {
	return int32(level.Rank()) >= minRank.Load()
}

func logf(level models.LogLevel, format string, args ...any) {
	if !Enabled(level) {
		return
	}
	log.Output(3, fmt.Sprintf("[%s] ", level)+fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...any) { logf(models.LogLevelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(models.LogLevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(models.LogLevelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(models.LogLevelError, format, args...) }

type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
}

// Setup sends the standard logger to stdout and to a size-capped file at
// logPath, and applies the level filter.
func Setup(logPath string, level models.LogLevel) (*RotatingWriter, error) {
	SetLevel(level)

	rw, err := NewRotatingWriter(logPath, maxLogSize)
	if err != nil {
		return nil, err
	}

	multi := io.MultiWriter(os.Stdout, rw)
	log.SetOutput(multi)

	return rw, nil
}

func NewRotatingWriter(logPath string, maxSize int64) (*RotatingWriter, error) {
	// Truncate if too large on startup
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxSize {
		os.Truncate(logPath, 0)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	info, _ := f.Stat()
	size := int64(0)
	if info != nil {
		size = info.Size()
	}

	return &RotatingWriter{
		file:    f,
		path:    logPath,
		size:    size,
		maxSize: maxSize,
	}, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.maxSize {
		w.rotate()
	}

	return n, err
}

func (w *RotatingWriter) rotate() {
	w.file.Close()

	// Keep one backup
	os.Rename(w.path, w.path+".1")

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}

	w.file = f
	w.size = 0
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
