package logger

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// appendFile is an append-only file whose buffered layer is flushed on a
// ticker and on Close. flushBuffer runs with mu held.
type appendFile struct {
	mu          sync.Mutex
	file        *os.File
	path        string
	logger      *zap.Logger
	flushBuffer func() error
	stop        chan struct{}
	stopped     sync.WaitGroup

	written uint64
	flushes uint64
}

func openAppend(path string, logger *zap.Logger) (*appendFile, int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, 0, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat file: %w", err)
	}
	return &appendFile{
		file:   file,
		path:   path,
		logger: logger,
		stop:   make(chan struct{}),
	}, stat.Size(), nil
}

func (af *appendFile) startFlushing(interval time.Duration) {
	af.stopped.Add(1)
	go func() {
		defer af.stopped.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := af.Flush(); err != nil {
					af.logger.Error("Periodic flush failed", zap.String("file", af.path), zap.Error(err))
				}
			case <-af.stop:
				return
			}
		}
	}()
}

// Flush writes buffered data through to disk.
func (af *appendFile) Flush() error {
	af.mu.Lock()
	defer af.mu.Unlock()

	if err := af.flushBuffer(); err != nil {
		return err
	}
	if err := af.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	af.flushes++
	return nil
}

// Close stops the flush loop, flushes once more and closes the file.
func (af *appendFile) Close() error {
	close(af.stop)
	af.stopped.Wait()

	af.mu.Lock()
	defer af.mu.Unlock()

	if err := af.flushBuffer(); err != nil {
		af.file.Close()
		return err
	}
	if err := af.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	af.logger.Info("File closed",
		zap.String("file", af.path),
		zap.Uint64("written", af.written),
		zap.Uint64("flushes", af.flushes))
	return nil
}

// GetStats returns entries written and flushes done.
func (af *appendFile) GetStats() (written, flushes uint64) {
	af.mu.Lock()
	defer af.mu.Unlock()
	return af.written, af.flushes
}

// SafeFileWriter is the JSON log file sink. Each Write is one encoded zap
// entry; Sync flushes, so zap's Logger.Sync reaches the disk.
type SafeFileWriter struct {
	*appendFile
	buf *bufio.Writer
}

// NewSafeFileWriter opens path for appending and flushes it every flushInterval.
func NewSafeFileWriter(path string, flushInterval time.Duration, logger *zap.Logger) (*SafeFileWriter, error) {
	af, _, err := openAppend(path, logger)
	if err != nil {
		return nil, err
	}
	w := &SafeFileWriter{appendFile: af, buf: bufio.NewWriter(af.file)}
	af.flushBuffer = func() error {
		if err := w.buf.Flush(); err != nil {
			return fmt.Errorf("failed to flush buffer: %w", err)
		}
		return nil
	}
	af.startFlushing(flushInterval)
	return w, nil
}

func (w *SafeFileWriter) Write(entry []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.buf.Write(entry)
	if err != nil {
		return n, fmt.Errorf("failed to write entry: %w", err)
	}
	w.written++
	return n, nil
}

func (w *SafeFileWriter) Sync() error {
	return w.Flush()
}

// SafeCSVWriter appends trade journal records. The header is written only
// when the file is new.
type SafeCSVWriter struct {
	*appendFile
	csv *csv.Writer
}

// NewSafeCSVWriter opens path for appending, writes header to an empty file
// and flushes every flushInterval.
func NewSafeCSVWriter(path string, header []string, flushInterval time.Duration, logger *zap.Logger) (*SafeCSVWriter, error) {
	af, size, err := openAppend(path, logger)
	if err != nil {
		return nil, err
	}
	w := &SafeCSVWriter{appendFile: af, csv: csv.NewWriter(af.file)}
	af.flushBuffer = func() error {
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			return fmt.Errorf("CSV writer error: %w", err)
		}
		return nil
	}

	if size == 0 && len(header) > 0 {
		if err := w.csv.Write(header); err != nil {
			af.file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		if err := af.flushBuffer(); err != nil {
			af.file.Close()
			return nil, err
		}
	}

	af.startFlushing(flushInterval)
	return w, nil
}

// WriteRecord appends one journal row.
func (w *SafeCSVWriter) WriteRecord(record []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.written++
	return nil
}
