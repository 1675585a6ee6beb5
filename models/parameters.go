package models

// Instrument is one entry of the instrument toggle list shown by the UI
type Instrument struct {
	ID      string `json:"id" yaml:"id"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// ParameterSet holds the performance parameters applied to a pattern script
type ParameterSet struct {
	Volume      float64           `json:"volume" yaml:"volume"`           // multiplies gain(...) literals
	Speed       float64           `json:"speed" yaml:"speed"`             // multiplies setcps(...) arguments
	Instruments []Instrument      `json:"instruments" yaml:"instruments"` // per-instrument mute switches
	Templates   map[string]string `json:"templates" yaml:"templates"`     // placeholder token -> value
}

// Placeholder returns the template token for a named value, e.g. {{space}}
func Placeholder(name string) string {
	return "{{" + name + "}}"
}

// DefaultParameterSet returns the initial state of the workstation controls
func DefaultParameterSet() *ParameterSet {
	return &ParameterSet{
		Volume: 0.5,
		Speed:  1,
		Instruments: []Instrument{
			{ID: "melody", Label: "Melody (Kalimba / Guitar)", Enabled: true},
			{ID: "drums", Label: "Drums", Enabled: true},
			{ID: "chords", Label: "Chords (E-Piano)", Enabled: true},
			{ID: "bass", Label: "Bass", Enabled: true},
			{ID: "extra", Label: "Extra (Organ + Arp)", Enabled: true},
		},
		Templates: map[string]string{
			Placeholder("space"):       "0.3",
			Placeholder("bright"):      "0.5",
			Placeholder("width"):       "0.5",
			Placeholder("chordLen"):    "0.7",
			Placeholder("drumKit"):     "0",
			Placeholder("melodyStyle"): "0",
			Placeholder("section"):     "0",
		},
	}
}

// Toggles returns the instrument id -> enabled mapping
func (p *ParameterSet) Toggles() map[string]bool {
	if p == nil {
		return map[string]bool{}
	}
	toggles := make(map[string]bool, len(p.Instruments))
	for _, ins := range p.Instruments {
		toggles[ins.ID] = ins.Enabled
	}
	return toggles
}

// IsDisabled reports whether id is listed and switched off.
// Ids that are not listed are always enabled.
func (p *ParameterSet) IsDisabled(id string) bool {
	if p == nil {
		return false
	}
	for _, ins := range p.Instruments {
		if ins.ID == id && !ins.Enabled {
			return true
		}
	}
	return false
}

// SetInstrumentEnabled updates the toggle for id, appending it if unknown
func (p *ParameterSet) SetInstrumentEnabled(id string, enabled bool) {
	for i := range p.Instruments {
		if p.Instruments[i].ID == id {
			p.Instruments[i].Enabled = enabled
			return
		}
	}
	p.Instruments = append(p.Instruments, Instrument{ID: id, Enabled: enabled})
}

// DisabledIDs lists the ids that are switched off, in list order
func (p *ParameterSet) DisabledIDs() []string {
	if p == nil {
		return nil
	}
	var ids []string
	for _, ins := range p.Instruments {
		if !ins.Enabled {
			ids = append(ids, ins.ID)
		}
	}
	return ids
}

// Clone returns a deep copy
func (p *ParameterSet) Clone() *ParameterSet {
	if p == nil {
		return nil
	}
	c := &ParameterSet{
		Volume:      p.Volume,
		Speed:       p.Speed,
		Instruments: append([]Instrument(nil), p.Instruments...),
	}
	if p.Templates != nil {
		c.Templates = make(map[string]string, len(p.Templates))
		for k, v := range p.Templates {
			c.Templates[k] = v
		}
	}
	return c
}
