package pipeline

import (
	"fmt"
	"os"
	"time"
)

// ProgressTimeLayout renders year, abbreviated month, day and clock time.
const ProgressTimeLayout = "2006-Jan-02-15:04:05"

// ProgressLog appends one timestamped line per completed milestone.
type ProgressLog struct {
	path string
	now  func() time.Time
}

// NewProgressLog returns a log that appends to path.
func NewProgressLog(path string) *ProgressLog {
	return &ProgressLog{path: path, now: time.Now}
}

// WithClock overrides the timestamp source.
func (l *ProgressLog) WithClock(now func() time.Time) *ProgressLog {
	l.now = now
	return l
}

// Log appends "<timestamp> : <message>" to the file, opening and closing it per call.
func (l *ProgressLog) Log(message string) error {
	if err := ensureDir(l.path); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open progress log: %w", err)
	}

	line := l.now().Format(ProgressTimeLayout) + " : " + message + "\n"
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("write progress log: %w", err)
	}
	return f.Close()
}
