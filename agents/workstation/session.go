package workstation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Conceptual-Machines/strudel-workstation-go/config"
	"github.com/Conceptual-Machines/strudel-workstation-go/engine"
	"github.com/Conceptual-Machines/strudel-workstation-go/metrics"
	"github.com/Conceptual-Machines/strudel-workstation-go/models"
	"github.com/Conceptual-Machines/strudel-workstation-go/preprocess"
	"github.com/Conceptual-Machines/strudel-workstation-go/tunes"
)

var (
	// ErrEmptyTune is returned when the rewritten script is blank; the
	// engine is left untouched
	ErrEmptyTune = errors.New("no code to evaluate: tune is empty")
	// ErrSuperseded is returned when a newer state was already handed to the engine
	ErrSuperseded = errors.New("rewrite superseded by a newer state")
)

// Session owns the canonical script and parameters of one workstation and
// hands the preprocessed script to the evaluation engine.
//
// Every state change bumps a generation counter. A handoff carrying an older
// generation than the last delivered one is dropped, so the engine always
// ends up with the latest state no matter how rewrites interleave.
type Session struct {
	cfg          *config.Config
	engine       engine.Engine
	preprocessor *preprocess.Preprocessor
	metrics      *metrics.SentryMetrics

	mu         sync.Mutex
	script     string
	params     *models.ParameterSet
	generation uint64
	timer      *time.Timer
	closed     bool
	pending    sync.WaitGroup

	handoffMu sync.Mutex
	delivered uint64
}

// NewSession creates a session around an explicit engine handle.
// An empty script falls back to the demo tune; nil params use the defaults.
func NewSession(cfg *config.Config, eng engine.Engine, script string, params *models.ParameterSet) (*Session, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	if params == nil {
		params = models.DefaultParameterSet()
	}

	var opts []preprocess.Option
	if cfg.SilenceCall != "" {
		opts = append(opts, preprocess.WithSilenceCall(cfg.SilenceCall))
	}

	s := &Session{
		cfg:          cfg,
		engine:       eng,
		preprocessor: preprocess.NewPreprocessor(opts...),
		metrics:      metrics.NewSentryMetrics(),
		script:       script,
		params:       params.Clone(),
	}

	log.Printf("🎛️  WORKSTATION SESSION INITIALIZED:")
	log.Printf("   Engine: %s", eng.Name())
	log.Printf("   Silence call: %s", s.preprocessor.SilenceCall())
	log.Printf("   Debounce: %v", cfg.DebounceOrDefault())

	return s, nil
}

// Script returns the canonical, unrewritten script
func (s *Session) Script() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.script
}

// Parameters returns a copy of the current parameters
func (s *Session) Parameters() *models.ParameterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.Clone()
}

// Generation returns the current state generation
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// update applies fn to the state under the lock and bumps the generation
func (s *Session) update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.generation++
}

// SetScript replaces the canonical script
func (s *Session) SetScript(script string) {
	s.update(func() { s.script = script })
}

// SetParameters replaces all parameters
func (s *Session) SetParameters(params *models.ParameterSet) {
	if params == nil {
		params = models.DefaultParameterSet()
	}
	s.update(func() { s.params = params.Clone() })
}

// SetVolume sets the master volume
func (s *Session) SetVolume(volume float64) {
	s.update(func() { s.params.Volume = volume })
}

// SetSpeed sets the tempo multiplier
func (s *Session) SetSpeed(speed float64) {
	s.update(func() { s.params.Speed = speed })
}

// SetInstrumentEnabled switches an instrument on or off
func (s *Session) SetInstrumentEnabled(id string, enabled bool) {
	s.update(func() { s.params.SetInstrumentEnabled(id, enabled) })
}

// SetTemplateValue sets a template value. name may be bare ("space") or a
// full token ("{{space}}").
func (s *Session) SetTemplateValue(name, value string) {
	token := name
	if !strings.HasPrefix(name, "{{") {
		token = models.Placeholder(name)
	}
	s.update(func() {
		if s.params.Templates == nil {
			s.params.Templates = make(map[string]string)
		}
		s.params.Templates[token] = value
	})
}

// snapshot copies the state needed for one rewrite
func (s *Session) snapshot() (string, *models.ParameterSet, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	script := s.script
	if script == "" {
		script = tunes.StrangerTune
	}
	return script, s.params.Clone(), s.generation
}

// Diagnose reports advisory diagnostics for the current state
func (s *Session) Diagnose() []preprocess.Diagnostic {
	script, params, _ := s.snapshot()
	return preprocess.Diagnose(script, params)
}

// Proc rewrites the current state and hands it to the engine, evaluating it
// when play is set.
func (s *Session) Proc(ctx context.Context, play bool) (*models.RewriteResult, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "workstation.proc")
	defer transaction.Finish()
	ctx = transaction.Context()

	transaction.SetTag("engine", s.engine.Name())
	transaction.SetTag("play", fmt.Sprintf("%t", play))

	script, params, gen := s.snapshot()
	result := s.preprocessor.RewriteWithReport(script, params)
	s.metrics.RecordRewrite(ctx, result, strings.Count(script, "\n")+1, time.Since(startTime))

	if strings.TrimSpace(result.Script) == "" {
		log.Printf("⚠️  No code to evaluate, tune is empty")
		transaction.SetTag("success", "false")
		return result, ErrEmptyTune
	}

	s.handoffMu.Lock()
	defer s.handoffMu.Unlock()

	if gen < s.delivered {
		log.Printf("⏭️  Dropping stale rewrite (generation %d, engine has %d)", gen, s.delivered)
		transaction.SetTag("success", "false")
		return result, ErrSuperseded
	}

	handoffStart := time.Now()
	if err := s.handoff(ctx, result.Script, play); err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		s.metrics.RecordHandoff(ctx, s.engine.Name(), time.Since(handoffStart), false)
		return result, err
	}
	s.delivered = gen

	transaction.SetTag("success", "true")
	s.metrics.RecordHandoff(ctx, s.engine.Name(), time.Since(handoffStart), true)

	if len(result.MutedBlocks) > 0 {
		ids := make([]string, 0, len(result.MutedBlocks))
		for _, b := range result.MutedBlocks {
			ids = append(ids, b.ID)
		}
		log.Printf("🔇 Muted: %s", strings.Join(ids, ", "))
	}
	log.Printf("✅ Handed generation %d to %s (play=%t, %v)", gen, s.engine.Name(), play, time.Since(startTime))

	return result, nil
}

// handoff sets the code on the engine and optionally evaluates it
func (s *Session) handoff(ctx context.Context, code string, play bool) error {
	if err := s.engine.SetCode(ctx, code); err != nil {
		return fmt.Errorf("engine %s: set code: %w", s.engine.Name(), err)
	}
	if play {
		if err := s.engine.Evaluate(ctx); err != nil {
			return fmt.Errorf("engine %s: evaluate: %w", s.engine.Name(), err)
		}
	}
	return nil
}

// Schedule queues a rewrite after the debounce delay. A newer Schedule
// replaces a pending one, so a burst of edits yields a single handoff of the
// latest state.
func (s *Session) Schedule(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.stopTimerLocked()

	s.pending.Add(1)
	s.timer = time.AfterFunc(s.cfg.DebounceOrDefault(), func() {
		defer s.pending.Done()
		if _, err := s.Proc(ctx, false); err != nil && !errors.Is(err, ErrSuperseded) {
			log.Printf("⚠️  Scheduled rewrite failed: %v", err)
		}
	})
}

// stopTimerLocked cancels the pending timer, if it has not fired yet
func (s *Session) stopTimerLocked() bool {
	if s.timer == nil {
		return false
	}
	stopped := s.timer.Stop()
	if stopped {
		s.pending.Done()
	}
	s.timer = nil
	return stopped
}

// Flush runs a pending scheduled rewrite now and waits for in-flight ones.
// It must not race with Schedule.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	run := s.stopTimerLocked()
	s.mu.Unlock()

	var err error
	if run {
		_, err = s.Proc(ctx, false)
	}
	s.pending.Wait()
	return err
}

// Close drops any pending rewrite and waits for in-flight ones
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopTimerLocked()
	s.mu.Unlock()

	s.pending.Wait()
}
