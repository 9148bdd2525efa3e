package matrix

import (
	"testing"

	"reentry-engine/internal/errors"
	"reentry-engine/internal/models"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		gen       models.Generation
		signal    models.SignalType
		duration  models.DurationCategory
		proximity models.Proximity
		outcome   models.Outcome
		want      string
		wantErr   bool
	}{
		{
			name:      "first reentry eco high flash loss",
			gen:       models.GenerationFirst,
			signal:    models.SignalEcoHigh,
			duration:  models.DurationFlash,
			proximity: models.ProximityImmediate,
			outcome:   models.OutcomeLoss,
			want:      "R1:ECO_HIGH:FLASH:IMMEDIATE:LOSS",
		},
		{
			name:      "original technical win",
			gen:       models.GenerationOriginal,
			signal:    models.SignalAllIndicators,
			duration:  models.DurationNone,
			proximity: models.ProximityLong,
			outcome:   models.OutcomeWin,
			want:      "O:ALL_INDICATORS:LONG:WIN",
		},
		{
			name:      "second reentry eco med extended",
			gen:       models.GenerationSecond,
			signal:    models.SignalEcoMed,
			duration:  models.DurationExtended,
			proximity: models.ProximityShort,
			outcome:   models.OutcomeBreakeven,
			want:      "R2:ECO_MED:EXTENDED:SHORT:BE",
		},
		{
			name:      "equity open without duration",
			gen:       models.GenerationOriginal,
			signal:    models.SignalEquityOpenAsia,
			duration:  models.DurationNone,
			proximity: models.ProximityExtended,
			outcome:   models.OutcomeSkip,
			want:      "O:EQUITY_OPEN_ASIA:EXTENDED:SKIP",
		},
		{
			name:      "duration on non-duration signal",
			gen:       models.GenerationOriginal,
			signal:    models.SignalAllIndicators,
			duration:  models.DurationLong,
			proximity: models.ProximityLong,
			outcome:   models.OutcomeLoss,
			wantErr:   true,
		},
		{
			name:      "duration omitted for eco high",
			gen:       models.GenerationOriginal,
			signal:    models.SignalEcoHigh,
			duration:  models.DurationNone,
			proximity: models.ProximityImmediate,
			outcome:   models.OutcomeLoss,
			wantErr:   true,
		},
		{
			name:      "generation out of range",
			gen:       models.Generation(3),
			signal:    models.SignalEcoHigh,
			duration:  models.DurationFlash,
			proximity: models.ProximityImmediate,
			outcome:   models.OutcomeLoss,
			wantErr:   true,
		},
		{
			name:      "unknown signal",
			gen:       models.GenerationOriginal,
			signal:    models.SignalType("MOON_PHASE"),
			duration:  models.DurationNone,
			proximity: models.ProximityImmediate,
			outcome:   models.OutcomeLoss,
			wantErr:   true,
		},
		{
			name:      "unknown outcome",
			gen:       models.GenerationOriginal,
			signal:    models.SignalAllIndicators,
			duration:  models.DurationNone,
			proximity: models.ProximityImmediate,
			outcome:   models.Outcome("DRAW"),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := Build(tt.gen, tt.signal, tt.duration, tt.proximity, tt.outcome)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Build() succeeded, want MalformedContext")
				}
				var malformed *errors.MalformedContextError
				if !errors.As(err, &malformed) {
					t.Fatalf("Build() error = %v, want MalformedContextError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if got := key.String(); got != tt.want {
				t.Errorf("Build().String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDeterminism(t *testing.T) {
	a, err := Build(models.GenerationFirst, models.SignalEcoHigh, models.DurationFlash,
		models.ProximityImmediate, models.OutcomeLoss)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	b, err := Build(models.GenerationFirst, models.SignalEcoHigh, models.DurationFlash,
		models.ProximityImmediate, models.OutcomeLoss)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if a.String() != b.String() {
		t.Errorf("identical inputs produced different keys: %q vs %q", a.String(), b.String())
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    Key
		wantErr bool
	}{
		{
			name: "five field eco high",
			key:  "R1:ECO_HIGH:FLASH:IMMEDIATE:LOSS",
			want: Key{
				Generation: models.GenerationFirst,
				Signal:     models.SignalEcoHigh,
				Duration:   models.DurationFlash,
				Proximity:  models.ProximityImmediate,
				Outcome:    models.OutcomeLoss,
			},
		},
		{
			name: "four field technical",
			key:  "O:ALL_INDICATORS:LONG:WIN",
			want: Key{
				Generation: models.GenerationOriginal,
				Signal:     models.SignalAllIndicators,
				Duration:   models.DurationNone,
				Proximity:  models.ProximityLong,
				Outcome:    models.OutcomeWin,
			},
		},
		{
			// Data-entry error observed in legacy matrices: a four-field
			// key for a duration-bearing signal must be rejected, not
			// inferred around.
			name:    "four field eco high",
			key:     "R1:ECO_HIGH:IMMEDIATE:LOSS",
			wantErr: true,
		},
		{
			name:    "five field technical",
			key:     "R1:ALL_INDICATORS:LONG:IMMEDIATE:LOSS",
			wantErr: true,
		},
		{
			name:    "bad generation tag",
			key:     "R3:ECO_HIGH:FLASH:IMMEDIATE:LOSS",
			wantErr: true,
		},
		{
			name:    "too few segments",
			key:     "O:ECO_HIGH:FLASH",
			wantErr: true,
		},
		{
			name:    "empty",
			key:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.key)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want error", tt.key)
				}
				var parseErr *errors.KeyParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("Parse(%q) error = %v, want KeyParseError", tt.key, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.key, got, tt.want)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, signal := range models.AllSignalTypes {
		durations := []models.DurationCategory{models.DurationNone}
		if signal.DurationBearing() {
			durations = models.AllDurationCategories
		}
		for _, duration := range durations {
			key, err := Build(models.GenerationSecond, signal, duration,
				models.ProximityShort, models.OutcomeCancel)
			if err != nil {
				t.Fatalf("Build(%s, %s) error = %v", signal, duration, err)
			}
			parsed, err := Parse(key.String())
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", key.String(), err)
			}
			if parsed != key {
				t.Errorf("round trip of %q: got %+v, want %+v", key.String(), parsed, key)
			}
		}
	}
}
