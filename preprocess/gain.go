package preprocess

import (
	"regexp"
	"strconv"
)

// gainCallRe matches <prefix>gain(<number>) where prefix is any run of letters
var gainCallRe = regexp.MustCompile(`([a-zA-Z]*)gain\(([0-9.]+)\)`)

// postGainPrefix marks a post-fader gain, which is never scaled by volume
const postGainPrefix = "post"

// scaleGain multiplies every gain literal by volume.
// Returns the rewritten script and the number of literals changed.
func scaleGain(script string, volume float64) (string, int) {
	count := 0
	out := gainCallRe.ReplaceAllStringFunc(script, func(call string) string {
		m := gainCallRe.FindStringSubmatch(call)
		prefix, literal := m[1], m[2]
		if prefix == postGainPrefix {
			return call
		}
		value, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			// "1.2.3" and friends pass through untouched
			return call
		}
		count++
		return prefix + "gain(" + formatNumber(value*volume) + ")"
	})
	return out, count
}

// formatNumber renders a float in its shortest round-trip form
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
