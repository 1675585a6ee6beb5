package metrics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Conceptual-Machines/strudel-workstation-go/config"
	"github.com/Conceptual-Machines/strudel-workstation-go/models"
)

// Init configures the Sentry client. Without a DSN nothing is sent and
// Init reports false.
func Init(cfg *config.Config) (bool, error) {
	if cfg == nil || cfg.SentryDSN == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize sentry: %w", err)
	}

	log.Printf("📈 Sentry metrics enabled (env=%s)", cfg.Environment)
	return true, nil
}

// Flush waits for buffered events to be delivered
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // spans are no-ops unless Sentry is initialized
	}
}

// RecordRewrite records what one preprocessing run changed
func (m *SentryMetrics) RecordRewrite(ctx context.Context, result *models.RewriteResult, lines int, duration time.Duration) {
	if !m.enabled || result == nil {
		return
	}

	span := sentry.StartSpan(ctx, "preprocess.rewrite")
	defer span.Finish()

	span.SetTag("muted_blocks", fmt.Sprintf("%d", len(result.MutedBlocks)))

	span.SetData("lines", lines)
	span.SetData("gain_rewrites", result.GainRewrites)
	span.SetData("tempo_rewrites", result.TempoRewrites)
	span.SetData("template_rewrites", result.TemplateRewrites)
	span.SetData("muted_blocks", len(result.MutedBlocks))
	span.SetData("duration_us", duration.Microseconds())

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Rewrite: %d lines, %d muted", lines, len(result.MutedBlocks))
}

// RecordHandoff records a script handoff to the evaluation engine
func (m *SentryMetrics) RecordHandoff(ctx context.Context, engineName string, duration time.Duration, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "engine.handoff")
	defer span.Finish()

	span.SetTag("engine", engineName)
	span.SetTag("success", fmt.Sprintf("%t", success))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("success", success)

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Engine Handoff: %s", engineName)
}
