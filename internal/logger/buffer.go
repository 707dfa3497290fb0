package logger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Format renders the entry as "[15:04:05] LEVEL: message key=value ...".
func (e LogEntry) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", e.Timestamp.Format("15:04:05"), strings.ToUpper(e.Level), e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}

// LogBuffer is a thread-safe ring of the most recent log entries. The
// oldest entry is dropped once maxSize is reached.
type LogBuffer struct {
	mu           sync.Mutex
	ringBuffer   []LogEntry
	maxSize      int
	currentIndex int
	wrapped      bool
	now          func() time.Time
}

// NewLogBuffer creates a buffer holding maxSize entries.
func NewLogBuffer(maxSize int) (*LogBuffer, error) {
	if maxSize < 1 {
		return nil, fmt.Errorf("invalid log buffer size: %d", maxSize)
	}
	return &LogBuffer{
		ringBuffer: make([]LogEntry, maxSize),
		maxSize:    maxSize,
		now:        time.Now,
	}, nil
}

// Add appends a new entry stamped with the current time.
func (lb *LogBuffer) Add(level, message string, fields map[string]interface{}) {
	lb.add(LogEntry{
		Timestamp: lb.now(),
		Level:     level,
		Message:   message,
		Fields:    fields,
	})
}

func (lb *LogBuffer) add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.ringBuffer[lb.currentIndex] = entry
	lb.currentIndex = (lb.currentIndex + 1) % lb.maxSize
	if lb.currentIndex == 0 {
		lb.wrapped = true
	}
}

// Write lets the buffer act as a zap sink. Each line is a JSON encoded entry.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		lb.add(lb.decodeLine(line))
	}
	return len(p), nil
}

func (lb *LogBuffer) decodeLine(line []byte) LogEntry {
	var raw map[string]interface{}
	if err := sonic.Unmarshal(line, &raw); err != nil {
		return LogEntry{Timestamp: lb.now(), Level: "info", Message: string(line)}
	}

	entry := LogEntry{Timestamp: lb.now(), Level: "info"}
	if v, ok := raw[levelKey].(string); ok {
		entry.Level = v
	}
	if v, ok := raw[messageKey].(string); ok {
		entry.Message = v
	}
	if v, ok := raw[timeKey].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			entry.Timestamp = ts.Local()
		}
	}
	delete(raw, levelKey)
	delete(raw, messageKey)
	delete(raw, timeKey)
	delete(raw, nameKey)
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry
}

// GetRecentLogs returns up to limit of the newest entries, oldest first.
// A limit of zero or less returns everything held.
func (lb *LogBuffer) GetRecentLogs(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	held := lb.currentIndex
	start := 0
	if lb.wrapped {
		held = lb.maxSize
		start = lb.currentIndex
	}

	count := held
	if limit > 0 && limit < count {
		count = limit
	}

	logs := make([]LogEntry, 0, count)
	for i := held - count; i < held; i++ {
		logs = append(logs, lb.ringBuffer[(start+i)%lb.maxSize])
	}
	return logs
}

// Len is the number of entries currently held.
func (lb *LogBuffer) Len() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lb.wrapped {
		return lb.maxSize
	}
	return lb.currentIndex
}

// Clear drops every held entry.
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.ringBuffer = make([]LogEntry, lb.maxSize)
	lb.currentIndex = 0
	lb.wrapped = false
}

// Sync implements zapcore.WriteSyncer. Entries are held in memory only.
func (lb *LogBuffer) Sync() error {
	return nil
}
