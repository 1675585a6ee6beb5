// Package tunes holds the demo tune loaded into a fresh workstation.
package tunes

import (
	_ "embed"
)

// StrangerTune is the default pattern script. It uses every template
// placeholder of models.DefaultParameterSet and defines the instruments
// melody, drums, chords, bass and extra.
//
//go:embed stranger_tune.strudel
var StrangerTune string
