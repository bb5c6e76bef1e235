package extractors

import (
	"math"

	"github.com/RyanBlaney/voice-detector/pkg/audio/analyzers"
)

const (
	// energy peak must exceed this multiple of the mean frame energy
	peakFactor = 1.2

	// syllable onset and release thresholds relative to mean energy
	syllableOnsetFactor   = 0.7
	syllableReleaseFactor = 0.5

	vowelEnergyFactor  = 0.6
	vowelMinFrames     = 2
	defaultVowelLength = 0.1

	consonantFrameDuration = 0.01
	consonantMinZCR        = 0.1
	consonantEnergyLow     = 0.3
	consonantEnergyHigh    = 1.5

	intonationScale   = 500.0
	defaultIntonation = 0.3

	// rhythm CV is normalized against this spread
	rhythmSpread = 0.5

	neutralPattern = 0.5
)

// temporalVariation is the mean absolute change between consecutive frame
// energies
func temporalVariation(energy []float64) float64 {
	if len(energy) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(energy); i++ {
		d := energy[i] - energy[i-1]
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total / float64(len(energy)-1)
}

// energyPeaks returns indices of local maxima above peakFactor*mean
func energyPeaks(energy []float64) []float64 {
	threshold := analyzers.Mean(energy) * peakFactor
	var peaks []float64
	for i := 1; i < len(energy)-1; i++ {
		if energy[i] > threshold && energy[i] > energy[i-1] && energy[i] > energy[i+1] {
			peaks = append(peaks, float64(i))
		}
	}
	return peaks
}

// rhythmRegularity normalizes the dispersion of inter-peak intervals.
// Low values mean metronomic timing.
func rhythmRegularity(energy []float64) float64 {
	peaks := energyPeaks(energy)
	if len(peaks) < 3 {
		return neutralPattern
	}

	cv, ok := analyzers.DispersionIndex(analyzers.Diffs(peaks))
	if !ok {
		cv = 1
	}
	return min(1, cv/rhythmSpread)
}

// stressPattern is the raw inter-peak interval dispersion, capped at 1.
// Higher values point at stress-timed speech.
func stressPattern(energy []float64) float64 {
	peaks := energyPeaks(energy)
	if len(peaks) < 2 {
		return neutralPattern
	}

	cv, ok := analyzers.DispersionIndex(analyzers.Diffs(peaks))
	if !ok {
		return neutralPattern
	}
	return min(1, cv)
}

// pausePattern measures how varied the lengths of silent runs are. A run
// is only counted once a non-silent frame closes it.
func pausePattern(energy []float64, threshold float64) float64 {
	var runs []float64
	current := 0
	for _, e := range energy {
		if analyzers.IsSilent(e, threshold) {
			current++
		} else if current > 0 {
			runs = append(runs, float64(current))
			current = 0
		}
	}

	if len(runs) < 2 {
		return neutralPattern
	}

	cv, ok := analyzers.DispersionIndex(runs)
	if !ok {
		return 0
	}
	return min(1, cv)
}

// countSyllables counts entries into a high-energy state with hysteresis
func countSyllables(energy []float64, meanEnergy float64) int {
	onset := meanEnergy * syllableOnsetFactor
	release := onset * syllableReleaseFactor

	inSyllable := false
	count := 0
	for _, e := range energy {
		if e > onset && !inSyllable {
			inSyllable = true
			count++
		} else if e < release {
			inSyllable = false
		}
	}
	return max(1, count)
}

// syllableRate returns syllables per second
func syllableRate(energy []float64, meanEnergy, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(countSyllables(energy, meanEnergy)) / seconds
}

// vowelDuration averages the length of sustained high-energy runs longer
// than vowelMinFrames frames
func vowelDuration(energy []float64, sampleRate, frameSize int) float64 {
	threshold := analyzers.Mean(energy) * vowelEnergyFactor
	frameSeconds := float64(frameSize) / float64(sampleRate)

	var durations []float64
	current := 0
	for _, e := range energy {
		switch {
		case e > threshold:
			current++
		case current > vowelMinFrames:
			durations = append(durations, float64(current)*frameSeconds)
			current = 0
		default:
			current = 0
		}
	}

	if len(durations) == 0 {
		return defaultVowelLength
	}
	return analyzers.Mean(durations)
}

// consonantDensity is the fraction of 10 ms sub-frames that are noisy
// (high ZCR) at moderate energy
func consonantDensity(samples []float64, sampleRate int, meanEnergy float64) float64 {
	frameSize := int(float64(sampleRate) * consonantFrameDuration)
	if frameSize <= 1 {
		return 0
	}

	low := meanEnergy * consonantEnergyLow
	high := meanEnergy * consonantEnergyHigh

	consonantFrames := 0
	totalFrames := 0
	for i := 0; i < len(samples)-frameSize; i += frameSize {
		crossings := 0
		energy := 0.0
		for j := 1; j < frameSize; j++ {
			if (samples[i+j] >= 0) != (samples[i+j-1] >= 0) {
				crossings++
			}
			energy += samples[i+j] * samples[i+j]
		}

		zcr := float64(crossings) / float64(frameSize)
		rms := math.Sqrt(energy / float64(frameSize))
		if zcr > consonantMinZCR && rms > low && rms < high {
			consonantFrames++
		}
		totalFrames++
	}

	if totalFrames == 0 {
		return 0
	}
	return float64(consonantFrames) / float64(totalFrames)
}

// intonationPattern scales the variance of frame-to-frame pitch movement
func intonationPattern(contour []float64) float64 {
	if len(contour) < 3 {
		return defaultIntonation
	}
	return min(1, analyzers.PopVariance(analyzers.Diffs(contour))/intonationScale)
}
