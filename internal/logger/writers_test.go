package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSafeFileWriterConcurrentWrites(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test_safe_writer.log")
	logger := zap.NewNop()

	writer, err := NewSafeFileWriter(testFile, 50*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("Failed to create safe file writer: %v", err)
	}
	defer writer.Close()

	// Concurrent writes
	var wg sync.WaitGroup
	numGoroutines := 10
	linesPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < linesPerGoroutine; j++ {
				entry := fmt.Sprintf("{\"msg\":\"goroutine %d entry %d\"}\n", id, j)
				if _, err := writer.Write([]byte(entry)); err != nil {
					t.Errorf("Failed to write entry: %v", err)
				}
			}
		}(i)
	}

	// Concurrent flushes
	flushDone := make(chan struct{})
	go func() {
		defer close(flushDone)
		for i := 0; i < 20; i++ {
			if err := writer.Flush(); err != nil {
				// Don't use t.Errorf in goroutine after test might complete
				logger.Error("Failed to flush", zap.Error(err))
			}
			time.Sleep(25 * time.Millisecond)
		}
	}()

	// Concurrent stats reading
	statsDone := make(chan struct{})
	go func() {
		defer close(statsDone)
		for i := 0; i < 50; i++ {
			lines, flushes := writer.GetStats()
			_ = lines
			_ = flushes
			time.Sleep(10 * time.Millisecond)
		}
	}()

	wg.Wait()

	// Wait for background goroutines
	select {
	case <-flushDone:
		// Flush goroutine completed
	case <-time.After(2 * time.Second):
		t.Error("Flush goroutine timeout")
	}

	select {
	case <-statsDone:
		// Stats goroutine completed
	case <-time.After(2 * time.Second):
		t.Error("Stats goroutine timeout")
	}

	// Final flush
	if err := writer.Flush(); err != nil {
		t.Errorf("Failed final flush: %v", err)
	}

	lines, flushes := writer.GetStats()
	t.Logf("Written lines: %d, Flush count: %d", lines, flushes)

	expectedLines := uint64(numGoroutines * linesPerGoroutine)
	if lines != expectedLines {
		t.Errorf("Expected %d lines, got %d", expectedLines, lines)
	}

	// File should exist and have content
	info, err := os.Stat(testFile)
	if err != nil {
		t.Errorf("Failed to stat file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("File should not be empty")
	}
}

func TestSafeCSVWriterConcurrentWrites(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test_safe_csv.csv")
	logger := zap.NewNop()

	header := []string{"timestamp", "action", "inst_id", "side", "size", "leverage", "order_id", "status", "error"}
	writer, err := NewSafeCSVWriter(testFile, header, 50*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("Failed to create safe CSV writer: %v", err)
	}
	defer writer.Close()

	// Concurrent writes
	var wg sync.WaitGroup
	numGoroutines := 5
	recordsPerGoroutine := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < recordsPerGoroutine; j++ {
				record := []string{
					time.Now().Format(time.RFC3339),
					"open",
					fmt.Sprintf("INST%d-USDT-SWAP", id),
					"buy",
					fmt.Sprintf("%d", j+1),
					"10",
					fmt.Sprintf("ord_%d_%d", id, j),
					"ok",
					"",
				}
				if err := writer.WriteRecord(record); err != nil {
					t.Errorf("Failed to write record: %v", err)
				}
			}
		}(i)
	}

	// Concurrent flushes
	csvFlushDone := make(chan struct{})
	go func() {
		defer close(csvFlushDone)
		for i := 0; i < 10; i++ {
			if err := writer.Flush(); err != nil {
				// Don't use t.Errorf in goroutine after test might complete
				logger.Error("CSV flush failed", zap.Error(err))
			}
			time.Sleep(50 * time.Millisecond)
		}
	}()

	wg.Wait()

	// Wait for flush goroutine
	select {
	case <-csvFlushDone:
		// Flush goroutine completed
	case <-time.After(2 * time.Second):
		t.Error("CSV flush goroutine timeout")
	}

	// Final flush
	if err := writer.Flush(); err != nil {
		t.Errorf("Failed final flush: %v", err)
	}

	records, flushes := writer.GetStats()
	t.Logf("Written records: %d, Flush count: %d", records, flushes)

	// Expected records = data records (not counting the header which was written in constructor)
	expectedRecords := uint64(numGoroutines * recordsPerGoroutine)
	if records != expectedRecords {
		t.Errorf("Expected %d records (excluding header), got %d", expectedRecords, records)
	}

	// File should exist and have content
	info, err := os.Stat(testFile)
	if err != nil {
		t.Errorf("Failed to stat file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("CSV file should not be empty")
	}

	raw, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if !strings.HasPrefix(string(raw), "timestamp,action,inst_id,") {
		t.Errorf("Expected header on first line, got %q", strings.SplitN(string(raw), "\n", 2)[0])
	}
}

func TestSafeCSVWriterSkipsHeaderOnExistingFile(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "journal.csv")
	header := []string{"timestamp", "action"}

	first, err := NewSafeCSVWriter(testFile, header, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	_ = first.WriteRecord([]string{"t1", "open"})
	_ = first.Close()

	second, err := NewSafeCSVWriter(testFile, header, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to reopen writer: %v", err)
	}
	_ = second.WriteRecord([]string{"t2", "close"})
	_ = second.Close()

	raw, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if got := strings.Count(string(raw), "timestamp,action"); got != 1 {
		t.Errorf("Expected one header line, got %d", got)
	}
	if !strings.Contains(string(raw), "t2,close") {
		t.Error("Expected appended record")
	}
}

func TestSafeFileWriterWithSlowWrites(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test_slow_writes.log")
	logger := zap.NewNop()

	// Very short flush interval
	writer, err := NewSafeFileWriter(testFile, 10*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("Failed to create safe file writer: %v", err)
	}
	defer writer.Close()

	// Write slowly to test periodic flush
	for i := 0; i < 10; i++ {
		entry := fmt.Sprintf("{\"msg\":\"slow write %d\"}\n", i)
		if _, err := writer.Write([]byte(entry)); err != nil {
			t.Errorf("Failed to write entry: %v", err)
		}
		time.Sleep(15 * time.Millisecond) // Longer than flush interval
	}

	lines, flushes := writer.GetStats()
	t.Logf("Lines: %d, Flushes: %d", lines, flushes)

	// Should have multiple flushes due to periodic flush
	if flushes < 2 {
		t.Error("Expected multiple periodic flushes")
	}
}

func TestSafeFileWriterBacksZapLogger(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "okx-trader.log")
	writer, err := NewSafeFileWriter(testFile, time.Hour, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create safe file writer: %v", err)
	}
	defer writer.Close()

	buffer, err := NewLogBuffer(10)
	if err != nil {
		t.Fatalf("Failed to create log buffer: %v", err)
	}
	log, err := CreateTUILogger(false, buffer, writer)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	log.Info("Order placed", zap.String("inst_id", "BTC-USDT-SWAP"))
	if err := log.Sync(); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	raw, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if !strings.Contains(string(raw), `"inst_id":"BTC-USDT-SWAP"`) {
		t.Errorf("Expected JSON entry on disk after Sync, got %q", raw)
	}
	if _, flushes := writer.GetStats(); flushes == 0 {
		t.Error("Expected Sync to count as a flush")
	}
}
