// Package preprocess rewrites Strudel pattern scripts before they are handed
// to the evaluation engine: gain and tempo scaling, template substitution and
// muting of disabled instrument blocks.
//
// Every pass is a total function over arbitrary text. Nothing here returns an
// error, because the workstation re-runs the preprocessor on every keystroke
// and must never interrupt editing.
package preprocess

import (
	"regexp"
	"strings"

	"github.com/Conceptual-Machines/strudel-workstation-go/models"
)

// DefaultSilenceCall is appended to a disabled instrument's expression chain
const DefaultSilenceCall = ".hush()"

// Preprocessor rewrites pattern scripts. It holds no per-call state and is
// safe for concurrent use.
type Preprocessor struct {
	silenceCall string
	silencedRe  *regexp.Regexp
}

// Option configures a Preprocessor
type Option func(*Preprocessor)

// WithSilenceCall overrides the call used to mute disabled instruments
func WithSilenceCall(call string) Option {
	return func(p *Preprocessor) {
		if strings.TrimSpace(call) != "" {
			p.silenceCall = call
		}
	}
}

// NewPreprocessor creates a new preprocessor
func NewPreprocessor(opts ...Option) *Preprocessor {
	p := &Preprocessor{silenceCall: DefaultSilenceCall}
	for _, opt := range opts {
		opt(p)
	}
	p.silencedRe = silencedPattern(p.silenceCall)
	return p
}

// SilenceCall returns the call appended to muted blocks
func (p *Preprocessor) SilenceCall() string {
	return p.silenceCall
}

// silencedPattern matches a line that already ends in the silencing call.
// For call-style directives like .hush() the parens are optional, so a
// hand-written ".hush" is recognized too.
func silencedPattern(call string) *regexp.Regexp {
	if name, ok := strings.CutSuffix(call, "()"); ok && name != "" {
		return regexp.MustCompile(regexp.QuoteMeta(name) + `\s*\(?\s*\)?\s*$`)
	}
	return regexp.MustCompile(regexp.QuoteMeta(call) + `\s*$`)
}

var defaultPreprocessor = NewPreprocessor()

// Rewrite preprocesses script with the default silencing call
func Rewrite(script string, params *models.ParameterSet) string {
	return defaultPreprocessor.Rewrite(script, params)
}

// Rewrite returns script rewritten for params. The result always has the
// same number of lines as script.
func (p *Preprocessor) Rewrite(script string, params *models.ParameterSet) string {
	return p.RewriteWithReport(script, params).Script
}

// RewriteWithReport runs gain, tempo, template and muting passes in that
// order and reports what each one changed. A nil params leaves volume and
// speed at 1 with no toggles or templates.
func (p *Preprocessor) RewriteWithReport(script string, params *models.ParameterSet) *models.RewriteResult {
	volume, speed := 1.0, 1.0
	var templates map[string]string
	if params != nil {
		volume, speed = params.Volume, params.Speed
		templates = params.Templates
	}

	result := &models.RewriteResult{}

	code, n := scaleGain(script, volume)
	result.GainRewrites = n

	code, n = scaleTempo(code, speed)
	result.TempoRewrites = n

	code, n = substituteTemplates(code, templates)
	result.TemplateRewrites = n

	code, muted := p.muteBlocks(code, params)
	result.MutedBlocks = muted

	result.Script = code
	return result
}
