// Package divergence quantifies how polarized a set of ratings is and
// how much two demographic segments agree.
//
// Spread is measured as mean absolute deviation (MAD) around the mean;
// cross-segment agreement as the Demographic Collaboration Index (DCI),
// a [0,1] score derived from the distance between two segment means.
// Both carry categorical interpretation bands for display.
//
// The package also exposes the k-anonymity gate guarding small
// segments. The gate is advisory here: these functions never redact,
// callers must check MeetsKAnonymity before exposing any segment-level
// statistic. The HTTP layer is the enforcement point.
package divergence

import (
	"math"
	"sort"
)

// MinSegmentSize is the k-anonymity floor: segment statistics computed
// from fewer users must not be exposed.
const MinSegmentSize = 5

// Summary holds the spread statistics of one group of ratings.
type Summary struct {
	MAD  float64 `json:"mad"`
	Mean float64 `json:"mean"`
	N    int     `json:"n"`
}

// Segment pairs a demographic value with the summary of its ratings.
type Segment struct {
	Value   string
	Summary Summary
}

// Pair is the agreement score between two segments' means.
type Pair struct {
	A   string  `json:"a"`
	B   string  `json:"b"`
	DCI float64 `json:"dci"`
}

// Band is a categorical interpretation of a numeric score.
type Band string

// Divergence bands, from consensus to polarization.
const (
	BandLow        Band = "low"
	BandMediumLow  Band = "medium-low"
	BandMediumHigh Band = "medium-high"
	BandHigh       Band = "high"
)

// DCI bands, from full agreement to opposition.
const (
	BandStrongAgreement Band = "strong-agreement"
	BandGoodAgreement   Band = "good-agreement"
	BandModerate        Band = "moderate"
	BandWeakAgreement   Band = "weak-agreement"
	BandOpposing        Band = "opposing"
)

// MadMean computes the mean and the mean absolute deviation of values.
// Zero values yield an all-zero summary; a single value has no spread.
func MadMean(values []float64) Summary {
	n := len(values)
	switch n {
	case 0:
		return Summary{}
	case 1:
		return Summary{Mean: values[0], N: 1}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var spread float64
	for _, v := range values {
		spread += math.Abs(v - mean)
	}
	return Summary{MAD: spread / float64(n), Mean: mean, N: n}
}

// DCI scores the agreement between two segment means in [-1,1]:
// 1 for identical means, 0 for maximally opposed ones. Symmetric.
func DCI(meanA, meanB float64) float64 {
	return 1 - math.Abs(meanA-meanB)/2
}

// MeetsKAnonymity reports whether a segment is large enough for its
// statistics to be exposed.
func MeetsKAnonymity(size int) bool {
	return size >= MinSegmentSize
}

// InterpretDivergence classifies a MAD value. Boundaries are inclusive
// on the lower band.
func InterpretDivergence(mad float64) Band {
	switch {
	case mad <= 0.2:
		return BandLow
	case mad <= 0.4:
		return BandMediumLow
	case mad <= 0.6:
		return BandMediumHigh
	default:
		return BandHigh
	}
}

// InterpretDCI classifies an agreement score.
func InterpretDCI(dci float64) Band {
	switch {
	case dci >= 0.8:
		return BandStrongAgreement
	case dci >= 0.6:
		return BandGoodAgreement
	case dci >= 0.4:
		return BandModerate
	case dci >= 0.2:
		return BandWeakAgreement
	default:
		return BandOpposing
	}
}

// BuildSegments summarizes each demographic group, ordered by segment
// value so repeated calls over the same input agree.
func BuildSegments(bySegment map[string][]float64) []Segment {
	segments := make([]Segment, 0, len(bySegment))
	for value, ratings := range bySegment {
		segments = append(segments, Segment{Value: value, Summary: MadMean(ratings)})
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i].Value < segments[j].Value })
	return segments
}

// PairwiseDCI scores every unordered segment pair, each reported once
// with A before B in the segments' given order. Callers gate
// sub-threshold segments out before calling.
func PairwiseDCI(segments []Segment) []Pair {
	if len(segments) < 2 {
		return nil
	}
	pairs := make([]Pair, 0, len(segments)*(len(segments)-1)/2)
	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			pairs = append(pairs, Pair{
				A:   segments[i].Value,
				B:   segments[j].Value,
				DCI: DCI(segments[i].Summary.Mean, segments[j].Summary.Mean),
			})
		}
	}
	return pairs
}
