package structure

// FillType classifies a fill by the stems carrying it.
type FillType string

const (
	FillDrum       FillType = "drum_fill"
	FillBassSlide  FillType = "bass_slide"
	FillVocalAdlib FillType = "vocal_adlib"
	FillInstrument FillType = "instrument_fill"
	FillMultiStem  FillType = "multi_stem_fill"
)

// fillTypeByStem maps a single elevated stem to its fill label. More
// than one elevated stem is always FillMultiStem.
var fillTypeByStem = map[StemRole]FillType{
	StemDrums:       FillDrum,
	StemBass:        FillBassSlide,
	StemVocals:      FillVocalAdlib,
	StemInstruments: FillInstrument,
}

// FillTypeFor derives the fill type from the set of active stems.
func FillTypeFor(stems []StemRole) FillType {
	if len(stems) == 1 {
		if t, ok := fillTypeByStem[stems[0]]; ok {
			return t
		}
	}
	return FillMultiStem
}

// Fill is a transient burst just before a region boundary.
type Fill struct {
	ID         string     `json:"id"`
	Time       float64    `json:"time"` // seconds, peak-density timestamp
	Stems      []StemRole `json:"stem_roles"`
	RegionID   string     `json:"region_id"` // downstream region
	Confidence float64    `json:"confidence"`
	Type       FillType   `json:"fill_type,omitempty"`
}
