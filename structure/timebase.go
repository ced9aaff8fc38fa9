package structure

// Musical time conversions assume 4/4 throughout; the detectors have no
// notion of meter changes.

const beatsPerBar = 4.0

// BarsToSeconds converts a bar count to seconds at the given tempo.
func BarsToSeconds(bars, bpm float64) float64 {
	return bars * beatsPerBar / bpm * 60.0
}

// SecondsToBars converts seconds to bars at the given tempo. Exact
// inverse of BarsToSeconds for any bpm > 0.
func SecondsToBars(seconds, bpm float64) float64 {
	return seconds * bpm / 60.0 / beatsPerBar
}
