// Package matrix implements the combination matrix: key grammar, cell
// storage, and decision resolution.
package matrix

import (
	"strings"

	"reentry-engine/internal/errors"
	"reentry-engine/internal/models"
)

// Key is the strongly typed form of a combination key. Its canonical
// string rendering is a pure function of the five semantic inputs:
//
//	gen_tag ":" SIGNAL [":" DURATION] ":" PROXIMITY ":" OUTCOME
//
// The duration segment is present iff the signal type is duration-bearing.
type Key struct {
	Generation models.Generation
	Signal     models.SignalType
	Duration   models.DurationCategory
	Proximity  models.Proximity
	Outcome    models.Outcome
}

// Build constructs a Key from a classified trade context, enforcing the
// conditional duration grammar. A duration supplied for a signal that
// does not carry one, or omitted for a signal that requires one, is a
// malformed context.
func Build(gen models.Generation, signal models.SignalType, duration models.DurationCategory,
	proximity models.Proximity, outcome models.Outcome) (Key, error) {

	if !gen.Valid() {
		return Key{}, errors.NewMalformedContextError(string(signal), "generation",
			"generation out of range [0,2]")
	}
	if !signal.Valid() {
		return Key{}, errors.NewMalformedContextError(string(signal), "signal",
			"unknown signal type")
	}
	if signal.DurationBearing() {
		if !duration.Valid() {
			return Key{}, errors.NewMalformedContextError(string(signal), "duration",
				"duration required for duration-bearing signal")
		}
	} else if duration != models.DurationNone {
		return Key{}, errors.NewMalformedContextError(string(signal), "duration",
			"duration supplied for non-duration signal")
	}
	if !proximity.Valid() {
		return Key{}, errors.NewMalformedContextError(string(signal), "proximity",
			"unknown proximity bucket")
	}
	if !outcome.Valid() {
		return Key{}, errors.NewMalformedContextError(string(signal), "outcome",
			"unknown outcome")
	}

	return Key{
		Generation: gen,
		Signal:     signal,
		Duration:   duration,
		Proximity:  proximity,
		Outcome:    outcome,
	}, nil
}

// BuildFromContext constructs a Key from a TradeContext.
func BuildFromContext(ctx models.TradeContext) (Key, error) {
	return Build(ctx.Generation, ctx.Signal, ctx.Duration, ctx.Proximity, ctx.Outcome)
}

// String renders the canonical key. Identical inputs always yield the
// byte-identical string.
func (k Key) String() string {
	parts := make([]string, 0, 5)
	parts = append(parts, k.Generation.Tag(), string(k.Signal))
	if k.Signal.DurationBearing() {
		parts = append(parts, string(k.Duration))
	}
	parts = append(parts, string(k.Proximity), string(k.Outcome))
	return strings.Join(parts, ":")
}

// Parse recovers the five semantic inputs from a canonical key string.
// A four-field key for a duration-bearing signal (or a five-field key
// for any other signal) is a data-entry error, never inferred around.
func Parse(s string) (Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 4 || len(parts) > 5 {
		return Key{}, errors.NewKeyParseError(s, "expected 4 or 5 segments")
	}

	gen, ok := models.GenerationFromTag(parts[0])
	if !ok {
		return Key{}, errors.NewKeyParseError(s, "unknown generation tag "+parts[0])
	}

	signal := models.SignalType(parts[1])
	if !signal.Valid() {
		return Key{}, errors.NewKeyParseError(s, "unknown signal type "+parts[1])
	}

	duration := models.DurationNone
	rest := parts[2:]
	if signal.DurationBearing() {
		if len(parts) != 5 {
			return Key{}, errors.NewKeyParseError(s, "duration segment missing for "+parts[1])
		}
		duration = models.DurationCategory(parts[2])
		if !duration.Valid() {
			return Key{}, errors.NewKeyParseError(s, "unknown duration "+parts[2])
		}
		rest = parts[3:]
	} else if len(parts) != 4 {
		return Key{}, errors.NewKeyParseError(s, "unexpected duration segment for "+parts[1])
	}

	proximity := models.Proximity(rest[0])
	if !proximity.Valid() {
		return Key{}, errors.NewKeyParseError(s, "unknown proximity "+rest[0])
	}
	outcome := models.Outcome(rest[1])
	if !outcome.Valid() {
		return Key{}, errors.NewKeyParseError(s, "unknown outcome "+rest[1])
	}

	return Key{
		Generation: gen,
		Signal:     signal,
		Duration:   duration,
		Proximity:  proximity,
		Outcome:    outcome,
	}, nil
}
