// Package frecency implements the time-decayed usage score: score' =
// score * 2^(-Δdays/H), half-life H=7 days by default, +1.0 added
// post-decay on every successful execution. Used only for tie-breaking
// fuzzy search results and building the "Suggested" section — never as
// the primary sort key.
package frecency

import "math"

// DefaultHalfLifeDays is H.
const DefaultHalfLifeDays = 7.0

// Decay applies the half-life formula to a score that was last updated
// deltaDays ago. deltaDays must be >= 0; a negative value (clock skew)
// is treated as 0 (no decay).
func Decay(score, deltaDays, halfLifeDays float64) float64 {
	if deltaDays < 0 {
		deltaDays = 0
	}
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	return score * math.Pow(2, -deltaDays/halfLifeDays)
}

// Record is one command's frecency state.
type Record struct {
	Score      float64
	LastUsedMs int64
}

// Touch decays Record's score to nowMs and then adds 1.0 for the use
// being recorded.
func Touch(rec Record, nowMs int64, halfLifeDays float64) Record {
	deltaDays := float64(nowMs-rec.LastUsedMs) / float64(msPerDay)
	decayed := Decay(rec.Score, deltaDays, halfLifeDays)
	return Record{Score: decayed + 1.0, LastUsedMs: nowMs}
}

// ScoreAt returns a Record's score decayed to nowMs without recording a
// new use — the value fuzzysearch.FrecencyLookup and the Suggested
// section builder read.
func ScoreAt(rec Record, nowMs int64, halfLifeDays float64) float64 {
	deltaDays := float64(nowMs-rec.LastUsedMs) / float64(msPerDay)
	return Decay(rec.Score, deltaDays, halfLifeDays)
}

const msPerDay = 24 * 60 * 60 * 1000
