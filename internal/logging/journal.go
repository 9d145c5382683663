// Package logging writes the batch journal: one JSON object per line
// describing each conversion a batch run performs.
package logging

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type EventType string

const (
	EventBatchStarted       EventType = "batch_started"
	EventTransformCompleted EventType = "transform_completed"
	EventTransformFailed    EventType = "transform_failed"
	EventBatchCompleted     EventType = "batch_completed"
)

type Event struct {
	Timestamp  time.Time      `json:"timestamp"`
	Component  string         `json:"component"`
	Type       EventType      `json:"event_type"`
	Source     string         `json:"source,omitempty"`
	Transform  string         `json:"transform,omitempty"`
	Payloads   int            `json:"payloads,omitempty"`
	Output     string         `json:"output,omitempty"`
	DurationMS int64          `json:"duration_ms,omitempty"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type Option func(*config) error

type config struct {
	writers []io.Writer
	closers []io.Closer
}

func WithWriter(w io.Writer) Option {
	return func(cfg *config) error {
		if w == nil {
			return errors.New("writer cannot be nil")
		}
		cfg.writers = append(cfg.writers, w)
		return nil
	}
}

// WithFile appends to path, creating it when needed.
func WithFile(path string) Option {
	return func(cfg *config) error {
		if strings.TrimSpace(path) == "" {
			return errors.New("file path cannot be empty")
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		cfg.writers = append(cfg.writers, f)
		cfg.closers = append(cfg.closers, f)
		return nil
	}
}

func WithStdout() Option {
	return WithWriter(os.Stdout)
}

type journalCore struct {
	mu      sync.Mutex
	encoder *json.Encoder
	closers []io.Closer
}

// Journal is safe for concurrent use. A nil *Journal discards events.
type Journal struct {
	component   string
	core        *journalCore
	ownsClosers bool
}

func NewJournal(component string, opts ...Option) (*Journal, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			for _, closer := range cfg.closers {
				_ = closer.Close()
			}
			return nil, err
		}
	}
	if len(cfg.writers) == 0 {
		return nil, errors.New("no writers configured for journal")
	}
	enc := json.NewEncoder(io.MultiWriter(cfg.writers...))
	enc.SetEscapeHTML(false)
	return &Journal{
		component:   component,
		core:        &journalCore{encoder: enc, closers: cfg.closers},
		ownsClosers: true,
	}, nil
}

func (j *Journal) Close() error {
	if j == nil || !j.ownsClosers || j.core == nil {
		return nil
	}
	j.core.mu.Lock()
	defer j.core.mu.Unlock()
	var firstErr error
	for _, closer := range j.core.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	j.core.closers = nil
	return firstErr
}

func (j *Journal) Emit(event Event) error {
	if j == nil || j.core == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	} else {
		event.Timestamp = event.Timestamp.UTC()
	}
	if event.Component == "" {
		event.Component = j.component
	}
	j.core.mu.Lock()
	defer j.core.mu.Unlock()
	return j.core.encoder.Encode(event)
}

// WithComponent shares the underlying writers under a different component name.
// Closing the derived journal is a no-op.
func (j *Journal) WithComponent(component string) *Journal {
	if j == nil || j.core == nil {
		return nil
	}
	return &Journal{
		component: component,
		core:      j.core,
	}
}
