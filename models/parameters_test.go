package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParameterSet(t *testing.T) {
	p := DefaultParameterSet()

	assert.Equal(t, 0.5, p.Volume)
	assert.Equal(t, 1.0, p.Speed)
	assert.Empty(t, p.DisabledIDs())
	assert.Equal(t, map[string]bool{
		"melody": true,
		"drums":  true,
		"chords": true,
		"bass":   true,
		"extra":  true,
	}, p.Toggles())
	assert.Equal(t, "0.3", p.Templates["{{space}}"])
	assert.Len(t, p.Templates, 7)
}

func TestParameterSet_IsDisabled(t *testing.T) {
	p := &ParameterSet{Instruments: []Instrument{
		{ID: "drums", Enabled: false},
		{ID: "bass", Enabled: true},
	}}

	tests := []struct {
		id   string
		want bool
	}{
		{"drums", true},
		{"bass", false},
		{"melody", false}, // unknown ids stay enabled
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsDisabled(tt.id))
		})
	}

	var nilSet *ParameterSet
	assert.False(t, nilSet.IsDisabled("drums"))
	assert.Empty(t, nilSet.Toggles())
	assert.Nil(t, nilSet.DisabledIDs())
}

func TestParameterSet_SetInstrumentEnabled(t *testing.T) {
	p := DefaultParameterSet()

	p.SetInstrumentEnabled("drums", false)
	p.SetInstrumentEnabled("pads", false)

	assert.Equal(t, []string{"drums", "pads"}, p.DisabledIDs())
	assert.Len(t, p.Instruments, 6)

	p.SetInstrumentEnabled("drums", true)
	assert.Equal(t, []string{"pads"}, p.DisabledIDs())
}

func TestParameterSet_Clone(t *testing.T) {
	p := DefaultParameterSet()
	c := p.Clone()
	require.Equal(t, p, c)

	c.Volume = 1
	c.SetInstrumentEnabled("melody", false)
	c.Templates["{{space}}"] = "0.9"

	assert.Equal(t, 0.5, p.Volume)
	assert.False(t, p.IsDisabled("melody"))
	assert.Equal(t, "0.3", p.Templates["{{space}}"])

	var nilSet *ParameterSet
	assert.Nil(t, nilSet.Clone())
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "{{chordLen}}", Placeholder("chordLen"))
}
