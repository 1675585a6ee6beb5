// Package engine defines the handle to the external pattern-evaluation engine.
// The workstation only ever hands the engine a rewritten script string.
package engine

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	engineNameMemory = "memory"
	engineNameStdout = "stdout"
	engineNameWriter = "writer"
)

// Engine is the external evaluation engine that schedules and plays a script
type Engine interface {
	Name() string
	// SetCode replaces the engine's current script
	SetCode(ctx context.Context, code string) error
	// Evaluate (re)starts playback of the current script
	Evaluate(ctx context.Context) error
}

// MemoryEngine keeps every handed-off script in memory
type MemoryEngine struct {
	mu          sync.Mutex
	history     []string
	evaluations int
}

// NewMemoryEngine creates an empty in-memory engine
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{}
}

// Name returns the engine name
func (e *MemoryEngine) Name() string {
	return engineNameMemory
}

// SetCode records code as the current script
func (e *MemoryEngine) SetCode(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, code)
	return nil
}

// Evaluate counts an evaluation; it fails if no code was ever set
func (e *MemoryEngine) Evaluate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.history) == 0 {
		return fmt.Errorf("no code to evaluate")
	}
	e.evaluations++
	return nil
}

// Code returns the current script
func (e *MemoryEngine) Code() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.history) == 0 {
		return ""
	}
	return e.history[len(e.history)-1]
}

// History returns every script handed off, oldest first
func (e *MemoryEngine) History() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.history...)
}

// Evaluations returns how many times Evaluate succeeded
func (e *MemoryEngine) Evaluations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluations
}

// WriterEngine prints each handed-off script to a writer, for dry runs and
// piping into an engine that runs elsewhere
type WriterEngine struct {
	mu       sync.Mutex
	name     string
	w        io.Writer
	handoffs int
}

// NewWriterEngine creates an engine writing to w
func NewWriterEngine(name string, w io.Writer) *WriterEngine {
	return &WriterEngine{name: name, w: w}
}

// Name returns the engine name
func (e *WriterEngine) Name() string {
	return e.name
}

// SetCode writes code framed by a header line
func (e *WriterEngine) SetCode(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handoffs++
	if _, err := fmt.Fprintf(e.w, "// --- handoff %d (%d lines) ---\n", e.handoffs, strings.Count(code, "\n")+1); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := io.WriteString(e.w, code); err != nil {
		return fmt.Errorf("failed to write code: %w", err)
	}
	if !strings.HasSuffix(code, "\n") {
		if _, err := io.WriteString(e.w, "\n"); err != nil {
			return fmt.Errorf("failed to write code: %w", err)
		}
	}
	return nil
}

// Evaluate writes an evaluate marker
func (e *WriterEngine) Evaluate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := fmt.Fprintf(e.w, "// --- evaluate %d ---\n", e.handoffs); err != nil {
		return fmt.Errorf("failed to write evaluate marker: %w", err)
	}
	return nil
}

// NewEngine creates an engine by name: memory, stdout or writer.
// stdout and writer both write to w.
func NewEngine(name string, w io.Writer) (Engine, error) {
	switch strings.ToLower(name) {
	case engineNameMemory:
		return NewMemoryEngine(), nil

	case engineNameStdout, engineNameWriter:
		if w == nil {
			return nil, fmt.Errorf("%s engine needs a writer", name)
		}
		return NewWriterEngine(strings.ToLower(name), w), nil

	default:
		return nil, fmt.Errorf("unknown engine: %s (allowed: memory, stdout, writer)", name)
	}
}
