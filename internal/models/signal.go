// Package models defines the core domain types for the reentry engine.
package models

import "fmt"

// SignalType identifies the classified source of a trade signal.
type SignalType string

const (
	SignalEcoHigh         SignalType = "ECO_HIGH"
	SignalEcoMed          SignalType = "ECO_MED"
	SignalAnticipation1Hr SignalType = "ANTICIPATION_1HR"
	SignalAnticipation8Hr SignalType = "ANTICIPATION_8HR"
	SignalEquityOpenAsia  SignalType = "EQUITY_OPEN_ASIA"
	SignalEquityOpenEU    SignalType = "EQUITY_OPEN_EUROPE"
	SignalEquityOpenUSA   SignalType = "EQUITY_OPEN_USA"
	SignalAllIndicators   SignalType = "ALL_INDICATORS"
)

// AllSignalTypes lists every valid signal type.
var AllSignalTypes = []SignalType{
	SignalEcoHigh,
	SignalEcoMed,
	SignalAnticipation1Hr,
	SignalAnticipation8Hr,
	SignalEquityOpenAsia,
	SignalEquityOpenEU,
	SignalEquityOpenUSA,
	SignalAllIndicators,
}

// Valid reports whether s is a member of the closed signal set.
func (s SignalType) Valid() bool {
	for _, v := range AllSignalTypes {
		if s == v {
			return true
		}
	}
	return false
}

// DurationBearing reports whether the duration dimension applies to this
// signal type. Only the two economic-impact signals carry a duration
// segment in their combination keys.
func (s SignalType) DurationBearing() bool {
	return s == SignalEcoHigh || s == SignalEcoMed
}

// DurationCategory buckets how long a trade was held. It is meaningful
// only for duration-bearing signal types.
type DurationCategory string

const (
	DurationFlash    DurationCategory = "FLASH"
	DurationQuick    DurationCategory = "QUICK"
	DurationLong     DurationCategory = "LONG"
	DurationExtended DurationCategory = "EXTENDED"

	// DurationNone is the collapsed value for signal types that do not
	// carry the duration dimension. It never appears in a key.
	DurationNone DurationCategory = ""
)

// AllDurationCategories lists every valid duration category.
var AllDurationCategories = []DurationCategory{
	DurationFlash, DurationQuick, DurationLong, DurationExtended,
}

// Valid reports whether d is a member of the closed duration set.
// DurationNone is not a valid key segment.
func (d DurationCategory) Valid() bool {
	switch d {
	case DurationFlash, DurationQuick, DurationLong, DurationExtended:
		return true
	}
	return false
}

// Outcome is the classified result of a closed trade. It is assigned
// once by the external closure classifier and immutable thereafter.
type Outcome string

const (
	OutcomeWin       Outcome = "WIN"
	OutcomeLoss      Outcome = "LOSS"
	OutcomeBreakeven Outcome = "BE"
	OutcomeSkip      Outcome = "SKIP"
	OutcomeReject    Outcome = "REJECT"
	OutcomeCancel    Outcome = "CANCEL"
)

// AllOutcomes lists every valid outcome.
var AllOutcomes = []Outcome{
	OutcomeWin, OutcomeLoss, OutcomeBreakeven,
	OutcomeSkip, OutcomeReject, OutcomeCancel,
}

// Valid reports whether o is a member of the closed outcome set.
func (o Outcome) Valid() bool {
	for _, v := range AllOutcomes {
		if o == v {
			return true
		}
	}
	return false
}

// Proximity buckets minutes until the next relevant market event.
// The bucketing itself is done by the external calendar pipeline; the
// engine treats the value as opaque.
type Proximity string

const (
	ProximityImmediate Proximity = "IMMEDIATE" // 0-15 min
	ProximityShort     Proximity = "SHORT"     // 16-60 min
	ProximityLong      Proximity = "LONG"      // 61-480 min
	ProximityExtended  Proximity = "EXTENDED"  // 481-1440 min
)

// AllProximities lists every valid proximity bucket.
var AllProximities = []Proximity{
	ProximityImmediate, ProximityShort, ProximityLong, ProximityExtended,
}

// Valid reports whether p is a member of the closed proximity set.
func (p Proximity) Valid() bool {
	switch p {
	case ProximityImmediate, ProximityShort, ProximityLong, ProximityExtended:
		return true
	}
	return false
}

// MaxGeneration is the hard cap on re-entry depth. Generation 0 is the
// original trade; no generation beyond 2 may ever be constructed.
const MaxGeneration = 2

// Generation is the re-entry depth of a trade within its chain.
type Generation int

const (
	GenerationOriginal Generation = 0
	GenerationFirst    Generation = 1
	GenerationSecond   Generation = 2
)

// Valid reports whether g is within [0, MaxGeneration].
func (g Generation) Valid() bool {
	return g >= 0 && g <= MaxGeneration
}

// Tag returns the generation prefix used in combination keys.
func (g Generation) Tag() string {
	switch g {
	case GenerationOriginal:
		return "O"
	case GenerationFirst:
		return "R1"
	case GenerationSecond:
		return "R2"
	}
	return fmt.Sprintf("G%d", int(g))
}

// GenerationFromTag maps a key prefix back to its generation.
func GenerationFromTag(tag string) (Generation, bool) {
	switch tag {
	case "O":
		return GenerationOriginal, true
	case "R1":
		return GenerationFirst, true
	case "R2":
		return GenerationSecond, true
	}
	return 0, false
}
