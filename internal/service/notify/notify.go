package notify

import (
	"log/slog"
	"sync"
)

const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelError    = "error"
	LevelCritical = "critical"
)

type Notice struct {
	Message string `json:"message"`
	Level   string `json:"level"`
}

// Sink is the server-side toast: every notice is logged, and buffered so the
// handler that caused it can return it to the browser.
type Sink struct {
	mu  sync.Mutex
	log *slog.Logger
	buf []Notice
}

func NewSink(log *slog.Logger) *Sink {
	return &Sink{log: log}
}

func (s *Sink) Notify(message, level string) {
	switch level {
	case LevelWarning:
		s.log.Warn(message)
	case LevelError, LevelCritical:
		s.log.Error(message)
	default:
		s.log.Info(message)
	}

	s.mu.Lock()
	s.buf = append(s.buf, Notice{Message: message, Level: level})
	s.mu.Unlock()
}

// Drain returns buffered notices and clears the buffer.
func (s *Sink) Drain() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.buf
	s.buf = nil
	return out
}
