package detection

import "fmt"

// Polarity tells which verdict a reason supports
type Polarity int

const (
	PolarityNeutral Polarity = iota
	PolaritySynthetic
	PolarityNatural
)

func (p Polarity) String() string {
	switch p {
	case PolaritySynthetic:
		return "synthetic"
	case PolarityNatural:
		return "natural"
	default:
		return "neutral"
	}
}

// ReasonCode identifies a human-readable explanation produced by one of the
// synthetic-voice signals
type ReasonCode int

const (
	ReasonUnnaturalPitchConsistency ReasonCode = iota + 1
	ReasonBelowAveragePitchVariation
	ReasonNaturalPitchFluctuation
	ReasonNarrowPitchRange
	ReasonHealthyPitchRange
	ReasonConsistentEnergy
	ReasonNaturalEnergyDynamics
	ReasonHighSpectralFlatness
	ReasonMissingMicroVariation
	ReasonOrganicTemporalVariation
	ReasonRegularRhythm
	ReasonNaturalRhythm
	ReasonUniformPauses
	ReasonAuthenticPauses
	ReasonUnusualSilenceRatio
)

type reasonInfo struct {
	text     string
	polarity Polarity
}

var reasonTable = map[ReasonCode]reasonInfo{
	ReasonUnnaturalPitchConsistency:  {"Unnatural pitch consistency detected - very low pitch variation", PolaritySynthetic},
	ReasonBelowAveragePitchVariation: {"Below-average pitch variation", PolaritySynthetic},
	ReasonNaturalPitchFluctuation:    {"Natural pitch fluctuations detected", PolarityNatural},
	ReasonNarrowPitchRange:           {"Narrow pitch range suggests synthetic origin", PolaritySynthetic},
	ReasonHealthyPitchRange:          {"Healthy pitch range observed", PolarityNatural},
	ReasonConsistentEnergy:           {"Overly consistent energy levels - robotic pattern", PolaritySynthetic},
	ReasonNaturalEnergyDynamics:      {"Natural energy dynamics present", PolarityNatural},
	ReasonHighSpectralFlatness:       {"High spectral flatness indicates synthetic processing", PolaritySynthetic},
	ReasonMissingMicroVariation:      {"Lack of natural micro-variations in amplitude", PolaritySynthetic},
	ReasonOrganicTemporalVariation:   {"Organic temporal variations detected", PolarityNatural},
	ReasonRegularRhythm:              {"Artificially regular speech rhythm", PolaritySynthetic},
	ReasonNaturalRhythm:              {"Natural speech rhythm patterns", PolarityNatural},
	ReasonUniformPauses:              {"Uniform pause patterns unlike natural speech", PolaritySynthetic},
	ReasonAuthenticPauses:            {"Authentic pause patterns identified", PolarityNatural},
	ReasonUnusualSilenceRatio:        {"Unusual silence ratio in speech", PolarityNeutral},
}

func (r ReasonCode) String() string {
	if info, ok := reasonTable[r]; ok {
		return info.text
	}
	return fmt.Sprintf("ReasonCode(%d)", int(r))
}

// Polarity returns the verdict the reason supports
func (r ReasonCode) Polarity() Polarity {
	return reasonTable[r].polarity
}

// MarshalText renders the reason as its explanation text
func (r ReasonCode) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses an explanation text back into its code
func (r *ReasonCode) UnmarshalText(text []byte) error {
	for code, info := range reasonTable {
		if info.text == string(text) {
			*r = code
			return nil
		}
	}
	return fmt.Errorf("unknown reason %q", text)
}

// selectReasons keeps reasons supporting the verdict, in signal order, up to limit
func selectReasons(reasons []ReasonCode, isAI bool, limit int) []ReasonCode {
	want := PolarityNatural
	if isAI {
		want = PolaritySynthetic
	}

	selected := make([]ReasonCode, 0, limit)
	for _, r := range reasons {
		if len(selected) == limit {
			break
		}
		if r.Polarity() == want {
			selected = append(selected, r)
		}
	}
	return selected
}
