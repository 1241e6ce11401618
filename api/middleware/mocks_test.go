package middleware

import "sync"

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

// recordingLogger keeps every entry for assertions
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.add("debug", msg, fields)
}
func (l *recordingLogger) Info(msg string, fields map[string]interface{}) { l.add("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) { l.add("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.add("error", msg, fields)
}

func (l *recordingLogger) last() logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[len(l.entries)-1]
}
