package preprocess

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Conceptual-Machines/strudel-workstation-go/models"
)

var (
	// drums:   or   drums: s("bd")...
	labelDefinitionRe = regexp.MustCompile(`^\s*([A-Za-z_]\w*)\s*:(.*)$`)
	// let drums = ...   or   const drums = ...
	bindingDefinitionRe = regexp.MustCompile(`^\s*(?:let|const)\s+([A-Za-z_]\w*)\s*=(.*)$`)
)

// definition is a line that declares an instrument
type definition struct {
	id      string
	hasExpr bool // something follows the label or '=' on the same line
}

// detectDefinition returns the instrument declared by line, if any
func detectDefinition(line string) (definition, bool) {
	m := labelDefinitionRe.FindStringSubmatch(line)
	if m == nil {
		m = bindingDefinitionRe.FindStringSubmatch(line)
	}
	if m == nil {
		return definition{}, false
	}
	return definition{id: m[1], hasExpr: strings.TrimSpace(m[2]) != ""}, true
}

// openBlock is the INSIDE state of the muting pass. A nil *openBlock is OUTSIDE.
type openBlock struct {
	id       string
	depth    int  // net '(' minus ')' since the definition line
	sawParen bool // any '(' seen in the block so far
	start    int  // index of the definition line
}

// update folds one more line of the block into the state
func (b *openBlock) update(opens, closes int) {
	b.depth += opens - closes
	if opens > 0 {
		b.sawParen = true
	}
}

// endsAt reports whether the block is complete after line idx.
//
// Block boundaries are a heuristic, not a parse: once a '(' has been seen the
// block ends when parens balance and the next line does not continue the
// chain with a leading '.'; a paren-free chain ends before a blank line, the
// next definition, or the end of the script.
func (b *openBlock) endsAt(lines []string, idx int) bool {
	if b.sawParen {
		return b.depth <= 0 && !continuesChain(lines, idx)
	}
	if idx+1 >= len(lines) || isBlank(lines[idx+1]) {
		return true
	}
	_, ok := detectDefinition(lines[idx+1])
	return ok
}

// muteBlocks appends the silencing call to the end of every disabled
// instrument block. Lines are never added or removed, and the text of
// enabled instruments is never touched.
func (p *Preprocessor) muteBlocks(script string, params *models.ParameterSet) (string, []models.InstrumentBlock) {
	if params == nil || len(params.DisabledIDs()) == 0 {
		return script, nil
	}

	lines := strings.Split(script, "\n")
	out := append([]string(nil), lines...)

	var muted []models.InstrumentBlock
	var block *openBlock

	finish := func(end int) {
		p.finalizeBlock(out, block.start, end)
		muted = append(muted, models.InstrumentBlock{
			ID:        block.id,
			StartLine: block.start,
			EndLine:   end,
			HasParens: block.sawParen,
			Enabled:   false,
		})
		block = nil
	}

	for idx, line := range lines {
		opens, closes := countParens(line)

		if block == nil {
			def, ok := detectDefinition(line)
			if !ok || !params.IsDisabled(def.id) {
				continue
			}
			if !def.hasExpr && !hasBody(lines, idx) {
				// an empty label has nothing to silence
				continue
			}
			block = &openBlock{id: def.id, start: idx}
			block.update(opens, closes)
			// a bare "drums:" label has no body yet, so it cannot end here
			if (block.sawParen || def.hasExpr) && block.endsAt(lines, idx) {
				finish(idx)
			}
			continue
		}

		block.update(opens, closes)
		if block.endsAt(lines, idx) {
			finish(idx)
		}
	}

	if block != nil {
		finish(len(lines) - 1)
	}

	return strings.Join(out, "\n"), muted
}

// finalizeBlock appends the silencing call to the last non-blank line in
// out[start:end+1], ahead of any trailing whitespace, commas or semicolons.
func (p *Preprocessor) finalizeBlock(out []string, start, end int) {
	for i := end; i >= start; i-- {
		if isBlank(out[i]) {
			continue
		}
		content, trail := splitTrailing(out[i])
		if p.silencedRe.MatchString(content) {
			return
		}
		out[i] = content + p.silenceCall + trail
		return
	}
}

// splitTrailing splits line into its content and the run of whitespace,
// commas and semicolons at its very end
func splitTrailing(line string) (string, string) {
	content := strings.TrimRightFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';'
	})
	return content, line[len(content):]
}

// continuesChain reports whether the line after idx starts with '.',
// i.e. the expression chain carries on
func continuesChain(lines []string, idx int) bool {
	return idx+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[idx+1]), ".")
}

func countParens(line string) (opens, closes int) {
	return strings.Count(line, "("), strings.Count(line, ")")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// hasBody reports whether a bare label at idx is followed by something other
// than the next definition or the end of the script
func hasBody(lines []string, idx int) bool {
	if idx+1 >= len(lines) {
		return false
	}
	_, ok := detectDefinition(lines[idx+1])
	return !ok
}
