package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// RotationConfig holds configuration for log rotation.
type RotationConfig struct {
	// MaxSizeMB is the size in megabytes at which the active file is rotated.
	// Zero disables rotation.
	MaxSizeMB int
	// MaxBackups is how many rotated files are kept. Zero keeps none.
	MaxBackups int
	// Compress gzips rotated files.
	Compress bool
}

// DefaultRotationConfig returns the rotation settings used when the config
// file does not override them.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSizeMB:  10,
		MaxBackups: 3,
	}
}

// RotatingWriter is an io.WriteCloser that rotates its file once it would
// grow past the configured size. Backups are named path.1 (newest) through
// path.N (oldest), with a .gz suffix when compression is on.
// It is safe for concurrent use.
type RotatingWriter struct {
	mu sync.Mutex

	path       string
	limit      int64
	maxBackups int
	compress   bool

	file *os.File
	size int64
}

// NewRotatingWriter opens (or creates) path for appending.
func NewRotatingWriter(path string, rc RotationConfig) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		path:       path,
		limit:      int64(rc.MaxSizeMB) * 1024 * 1024,
		maxBackups: rc.MaxBackups,
		compress:   rc.Compress,
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

// open must be called with mu held (or before the writer is shared).
func (rw *RotatingWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(rw.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(rw.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	rw.file = file
	rw.size = info.Size()
	return nil
}

// Write appends p, rotating first if p would push the file past the limit.
// A failed rotation is reported on stderr and the write still goes to the
// current file.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, fmt.Errorf("log file is closed")
	}

	if rw.limit > 0 && rw.size > 0 && rw.size+int64(len(p)) > rw.limit {
		if err := rw.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
		}
	}

	n, err := rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

func (rw *RotatingWriter) rotate() error {
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	rw.file = nil

	rw.shiftBackups()

	if rw.maxBackups > 0 {
		first := rw.backupPath(1)
		if err := os.Rename(rw.path, first); err != nil {
			if openErr := rw.open(); openErr != nil {
				return fmt.Errorf("failed to rename log file and reopen: %w", openErr)
			}
			return fmt.Errorf("failed to rename log file: %w", err)
		}
		if rw.compress {
			if err := gzipFile(first); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to compress %s: %v\n", first, err)
			}
		}
	} else {
		_ = os.Remove(rw.path)
	}

	return rw.open()
}

// shiftBackups drops the oldest backup and renames .i to .i+1.
func (rw *RotatingWriter) shiftBackups() {
	if rw.maxBackups <= 0 {
		return
	}
	oldest := rw.backupPath(rw.maxBackups)
	_ = os.Remove(oldest)
	_ = os.Remove(oldest + ".gz")

	for i := rw.maxBackups - 1; i >= 1; i-- {
		from, to := rw.backupPath(i), rw.backupPath(i+1)
		if _, err := os.Stat(from + ".gz"); err == nil {
			_ = os.Rename(from+".gz", to+".gz")
		} else if _, err := os.Stat(from); err == nil {
			_ = os.Rename(from, to)
		}
	}
}

func (rw *RotatingWriter) backupPath(n int) string {
	return fmt.Sprintf("%s.%d", rw.path, n)
}

// gzipFile replaces path with path.gz. The original is removed only after the
// compressed copy is complete.
func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(dst)
	if _, err := io.Copy(zw, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path + ".gz")
		return err
	}
	if err := zw.Close(); err != nil {
		_ = dst.Close()
		_ = os.Remove(path + ".gz")
		return err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path + ".gz")
		return err
	}
	return os.Remove(path)
}

// Sync flushes the active file to disk.
func (rw *RotatingWriter) Sync() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.file == nil {
		return nil
	}
	return rw.file.Sync()
}

// Close syncs and closes the active file. Further writes fail.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	if err := rw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	rw.file = nil
	return nil
}

// CurrentSize returns the size of the active file in bytes.
func (rw *RotatingWriter) CurrentSize() int64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.size
}

// Path returns the path of the active file.
func (rw *RotatingWriter) Path() string {
	return rw.path
}
