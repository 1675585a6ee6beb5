package preprocess

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Conceptual-Machines/strudel-workstation-go/models"
)

// DiagnosticKind classifies a Diagnostic
type DiagnosticKind string

const (
	// DiagnosticUnknownInstrument marks a toggle for an id the script never defines
	DiagnosticUnknownInstrument DiagnosticKind = "unknown_instrument"
	// DiagnosticUnresolvedPlaceholder marks a {{name}} token with no configured value
	DiagnosticUnresolvedPlaceholder DiagnosticKind = "unresolved_placeholder"
	// DiagnosticDisabledInstrument notes a defined instrument that is switched off
	DiagnosticDisabledInstrument DiagnosticKind = "disabled_instrument"
)

// Diagnostic is an advisory note about a script/parameter combination.
// Diagnostics never change what Rewrite produces.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"kind"`
	Subject    string         `json:"subject"`
	Line       int            `json:"line"` // 0-based, -1 when not tied to a line
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
}

func (d Diagnostic) String() string {
	msg := d.Message
	if d.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", d.Suggestion)
	}
	if d.Line >= 0 {
		return fmt.Sprintf("%d: %s", d.Line+1, msg)
	}
	return msg
}

var placeholderRe = regexp.MustCompile(`\{\{[A-Za-z_]\w*\}\}`)

// Definitions returns the instrument ids declared in script, first
// occurrence order, without duplicates
func Definitions(script string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, line := range strings.Split(script, "\n") {
		def, ok := detectDefinition(line)
		if !ok || seen[def.id] {
			continue
		}
		seen[def.id] = true
		ids = append(ids, def.id)
	}
	return ids
}

// Diagnose reports toggles that match no definition, placeholders with no
// configured value, and the instruments that will be muted.
func Diagnose(script string, params *models.ParameterSet) []Diagnostic {
	if params == nil {
		params = &models.ParameterSet{}
	}

	var diags []Diagnostic
	defs := Definitions(script)
	defLines := definitionLines(script)

	for _, ins := range params.Instruments {
		line, declared := defLines[ins.ID]
		switch {
		case !declared:
			diags = append(diags, Diagnostic{
				Kind:       DiagnosticUnknownInstrument,
				Subject:    ins.ID,
				Line:       -1,
				Message:    fmt.Sprintf("instrument %q is not defined in the script", ins.ID),
				Suggestion: closestMatch(ins.ID, defs),
			})
		case !ins.Enabled:
			diags = append(diags, Diagnostic{
				Kind:    DiagnosticDisabledInstrument,
				Subject: ins.ID,
				Line:    line,
				Message: fmt.Sprintf("instrument %q is muted", ins.ID),
			})
		}
	}

	configured := make([]string, 0, len(params.Templates))
	for token := range params.Templates {
		configured = append(configured, token)
	}
	sort.Strings(configured)

	reported := make(map[string]bool)
	for i, line := range strings.Split(script, "\n") {
		for _, token := range placeholderRe.FindAllString(line, -1) {
			if _, ok := params.Templates[token]; ok || reported[token] {
				continue
			}
			reported[token] = true
			diags = append(diags, Diagnostic{
				Kind:       DiagnosticUnresolvedPlaceholder,
				Subject:    token,
				Line:       i,
				Message:    fmt.Sprintf("placeholder %s has no configured value", token),
				Suggestion: closestMatch(token, configured),
			})
		}
	}

	return diags
}

// definitionLines maps each declared id to the line of its first definition
func definitionLines(script string) map[string]int {
	lines := make(map[string]int)
	for i, line := range strings.Split(script, "\n") {
		if def, ok := detectDefinition(line); ok {
			if _, seen := lines[def.id]; !seen {
				lines[def.id] = i
			}
		}
	}
	return lines
}

// closestMatch finds the closest candidate using fuzzy ranking, in either
// direction so both abbreviations and over-long names find a match
func closestMatch(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	for _, candidate := range candidates {
		if fuzzy.MatchFold(candidate, target) {
			return candidate
		}
	}

	return ""
}
