package preprocess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/strudel-workstation-go/models"
)

func lines(ls ...string) string {
	return strings.Join(ls, "\n")
}

func TestMuteBlocks(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		disabled []string
		want     string
	}{
		{
			name:     "same-line block closes immediately",
			script:   `drums: s("bd").gain(1)`,
			disabled: []string{"drums"},
			want:     `drums: s("bd").gain(1).hush()`,
		},
		{
			name:     "trailing punctuation stays at the end",
			script:   `drums: s("bd").gain(1),  `,
			disabled: []string{"drums"},
			want:     `drums: s("bd").gain(1).hush(),  `,
		},
		{
			name: "multi-line paren block",
			script: lines(
				`drums:`,
				`  s("bd")`,
				`    .gain(1)`,
				`melody: note("c4")`,
			),
			disabled: []string{"drums"},
			want: lines(
				`drums:`,
				`  s("bd")`,
				`    .gain(1).hush()`,
				`melody: note("c4")`,
			),
		},
		{
			name: "stack spanning lines ends at the closing paren",
			script: lines(
				`drums: stack(`,
				`  s("bd*4"),`,
				`  s("hh*8")`,
				`);`,
				`bass: note("c2")`,
			),
			disabled: []string{"drums"},
			want: lines(
				`drums: stack(`,
				`  s("bd*4"),`,
				`  s("hh*8")`,
				`).hush();`,
				`bass: note("c2")`,
			),
		},
		{
			name: "chain continues after a balanced call",
			script: lines(
				`drums: stack(`,
				`  s("bd*4")`,
				`)`,
				`  .room(0.3)`,
				``,
				`bass: note("c2")`,
			),
			disabled: []string{"drums"},
			want: lines(
				`drums: stack(`,
				`  s("bd*4")`,
				`)`,
				`  .room(0.3).hush()`,
				``,
				`bass: note("c2")`,
			),
		},
		{
			name: "paren-free chain ends at a blank line",
			script: lines(
				`bass: "<c2 g1>"`,
				`  .sound`,
				``,
				`melody: note("c4")`,
			),
			disabled: []string{"bass"},
			want: lines(
				`bass: "<c2 g1>"`,
				`  .sound.hush()`,
				``,
				`melody: note("c4")`,
			),
		},
		{
			name: "paren-free chain ends at the next definition",
			script: lines(
				`bass: "<c2 g1>"`,
				`  .sound`,
				`melody: note("c4")`,
			),
			disabled: []string{"bass"},
			want: lines(
				`bass: "<c2 g1>"`,
				`  .sound.hush()`,
				`melody: note("c4")`,
			),
		},
		{
			name: "paren-free chain ends at end of script",
			script: lines(
				`bass: "<c2 g1>"`,
				`  .sound`,
			),
			disabled: []string{"bass"},
			want: lines(
				`bass: "<c2 g1>"`,
				`  .sound.hush()`,
			),
		},
		{
			name: "paren-free one-liner before another definition",
			script: lines(
				`bass: "c2"`,
				`melody: note("c4")`,
			),
			disabled: []string{"bass"},
			want: lines(
				`bass: "c2".hush()`,
				`melody: note("c4")`,
			),
		},
		{
			name: "call closing on the definition line continues into the chain",
			script: lines(
				`drums: s("bd")`,
				`  .gain(1)`,
				`melody: note("c4")`,
			),
			disabled: []string{"drums"},
			want: lines(
				`drums: s("bd")`,
				`  .gain(1).hush()`,
				`melody: note("c4")`,
			),
		},
		{
			name: "empty label does not swallow the next definition",
			script: lines(
				`drums:`,
				`melody: note("c4")`,
				`  .gain(1)`,
			),
			disabled: []string{"drums"},
			want: lines(
				`drums:`,
				`melody: note("c4")`,
				`  .gain(1)`,
			),
		},
		{
			name:     "empty label at end of script",
			script:   `drums:`,
			disabled: []string{"drums"},
			want:     `drums:`,
		},
		{
			name:     "binding form",
			script:   `let bass = note("c2").s("sawtooth")`,
			disabled: []string{"bass"},
			want:     `let bass = note("c2").s("sawtooth").hush()`,
		},
		{
			name:     "const binding with semicolon",
			script:   `const bass = note("c2");`,
			disabled: []string{"bass"},
			want:     `const bass = note("c2").hush();`,
		},
		{
			name:     "already silenced",
			script:   `drums: s("bd").hush()`,
			disabled: []string{"drums"},
			want:     `drums: s("bd").hush()`,
		},
		{
			name:     "already silenced before a comma",
			script:   `drums: s("bd").hush(),`,
			disabled: []string{"drums"},
			want:     `drums: s("bd").hush(),`,
		},
		{
			name: "only disabled blocks change",
			script: lines(
				`drums: s("bd")`,
				`melody: note("c4")`,
				`bass: note("c2")`,
			),
			disabled: []string{"drums", "bass"},
			want: lines(
				`drums: s("bd").hush()`,
				`melody: note("c4")`,
				`bass: note("c2").hush()`,
			),
		},
		{
			name:     "unknown instrument is a no-op",
			script:   `drums: s("bd")`,
			disabled: []string{"cowbell"},
			want:     `drums: s("bd")`,
		},
		{
			name: "unclosed block is muted at end of script",
			script: lines(
				`drums: stack(`,
				`  s("bd")`,
				``,
			),
			disabled: []string{"drums"},
			want: lines(
				`drums: stack(`,
				`  s("bd").hush()`,
				``,
			),
		},
		{
			name:     "carriage returns stay at the end",
			script:   "drums: s(\"bd\")\r\n",
			disabled: []string{"drums"},
			want:     "drums: s(\"bd\").hush()\r\n",
		},
	}

	p := NewPreprocessor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := p.muteBlocks(tt.script, testParams(1, 1, tt.disabled...))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMuteBlocks_Report(t *testing.T) {
	script := lines(
		`drums:`,
		`  s("bd")`,
		`    .gain(1)`,
		`melody: note("c4")`,
		``,
		`bass: "c2"`,
		`  .sound`,
	)

	_, muted := NewPreprocessor().muteBlocks(script, testParams(1, 1, "drums", "bass"))

	require.Len(t, muted, 2)
	assert.Equal(t, models.InstrumentBlock{ID: "drums", StartLine: 0, EndLine: 2, HasParens: true}, muted[0])
	assert.Equal(t, models.InstrumentBlock{ID: "bass", StartLine: 5, EndLine: 6, HasParens: false}, muted[1])
}

func TestMuteBlocks_Idempotent(t *testing.T) {
	scripts := []string{
		`drums: s("bd").gain(1)`,
		lines(`drums:`, `  s("bd")`, `    .gain(1)`, `melody: note("c4")`),
		lines(`bass: "<c2 g1>"`, `  .sound`, ``, `melody: note("c4")`),
		lines(`drums: stack(`, `  s("bd*4"),`, `);`),
		lines(`const bass = note("c2");`, `let drums = s("hh"),`),
	}

	params := testParams(1, 1, "drums", "bass")
	for _, script := range scripts {
		t.Run(script, func(t *testing.T) {
			once := Rewrite(script, params)
			twice := Rewrite(once, params)
			assert.Equal(t, once, twice)
			assert.NotContains(t, twice, ".hush().hush()")
		})
	}
}

func TestMuteBlocks_EnabledTextUntouched(t *testing.T) {
	script := lines(
		`drums: s("bd")`,
		`melody: note("c4")`,
	)
	params := testParams(1, 1)
	params.SetInstrumentEnabled("drums", true)

	got, muted := NewPreprocessor().muteBlocks(script, params)
	assert.Equal(t, script, got)
	assert.Empty(t, muted)
}

func TestDetectDefinition(t *testing.T) {
	tests := []struct {
		line    string
		wantID  string
		wantOK  bool
		hasExpr bool
	}{
		{`drums:`, "drums", true, false},
		{`  drums :  `, "drums", true, false},
		{`drums: s("bd")`, "drums", true, true},
		{`let bass = note("c")`, "bass", true, true},
		{`const _lead2 = n("0")`, "_lead2", true, true},
		{`  .gain(1)`, "", false, false},
		{`s("bd:3")`, "", false, false},
		{`// drums: off`, "", false, false},
		{`$: s("bd")`, "", false, false},
		{``, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			def, ok := detectDefinition(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, def.id)
			assert.Equal(t, tt.hasExpr, def.hasExpr)
		})
	}
}
