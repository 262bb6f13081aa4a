// Package minimums holds the per-training-level weather minimums table and
// the evaluation of observed conditions against it.
package minimums

import (
	"fmt"

	models "flightguard/internal"
)

// Minimums are the weather floors and tolerances for one training level.
// A nil CeilingFeet means the level requires clear skies: any reported
// ceiling below ClearSkiesFloor is a violation. That is distinct from
// "no ceiling floor", which is expressed by AllowIMC plus a low floor.
type Minimums struct {
	VisibilityMiles    float64
	CeilingFeet        *float64
	MaxWindSpeedKnots  float64
	AllowPrecipitation bool
	AllowThunderstorms bool
	AllowIcing         bool
	AllowIMC           bool
}

const (
	// ClearSkiesFloor is the ceiling below which "clear skies required"
	// levels may not fly.
	ClearSkiesFloor = 10000.0

	// IMC thresholds per the visual-flight definition.
	imcVisibilityMiles = 3.0
	imcCeilingFeet     = 1000.0
)

func floatPtr(v float64) *float64 { return &v }

var table = map[models.TrainingLevel]Minimums{
	models.LevelStudentPilot: {
		VisibilityMiles:   5,
		CeilingFeet:       nil, // clear skies required
		MaxWindSpeedKnots: 15,
	},
	models.LevelPrivatePilot: {
		VisibilityMiles:    3,
		CeilingFeet:        floatPtr(1500),
		MaxWindSpeedKnots:  25,
		AllowPrecipitation: true,
	},
	models.LevelInstrumentRated: {
		VisibilityMiles:    1,
		CeilingFeet:        floatPtr(200),
		MaxWindSpeedKnots:  35,
		AllowPrecipitation: true,
		AllowIMC:           true,
	},
}

// ForLevel returns the minimums for a training level. An unknown level gets
// the student-pilot table, the most restrictive one.
func ForLevel(level models.TrainingLevel) Minimums {
	if m, ok := table[level]; ok {
		return m
	}
	return table[models.LevelStudentPilot]
}

type Evaluation struct {
	Meets      bool
	Violations []string
}

// Evaluate checks conditions against the level's minimums. Every rule is
// evaluated so the caller gets the complete violation list; the IMC rule can
// therefore double-report with the visibility and ceiling rules. Violations
// is a display list, not a unique set.
func Evaluate(c models.WeatherConditions, level models.TrainingLevel) Evaluation {
	m := ForLevel(level)
	var violations []string

	if c.VisibilityMiles < m.VisibilityMiles {
		violations = append(violations, fmt.Sprintf(
			"Visibility %.1f sm is below the %.1f sm minimum",
			c.VisibilityMiles, m.VisibilityMiles))
	}

	if m.CeilingFeet != nil {
		if c.CeilingFeet != nil && *c.CeilingFeet < *m.CeilingFeet {
			violations = append(violations, fmt.Sprintf(
				"Ceiling %.0f ft is below the %.0f ft minimum",
				*c.CeilingFeet, *m.CeilingFeet))
		}
	} else if c.CeilingFeet != nil && *c.CeilingFeet < ClearSkiesFloor {
		violations = append(violations, fmt.Sprintf(
			"Ceiling %.0f ft reported where clear skies are required",
			*c.CeilingFeet))
	}

	if c.WindSpeedKnots > m.MaxWindSpeedKnots {
		violations = append(violations, fmt.Sprintf(
			"Wind %.0f kt exceeds the %.0f kt maximum",
			c.WindSpeedKnots, m.MaxWindSpeedKnots))
	}

	if c.Precipitation && !m.AllowPrecipitation {
		violations = append(violations, "Precipitation present and not permitted at this training level")
	}

	if c.Thunderstorms && !m.AllowThunderstorms {
		violations = append(violations, "Thunderstorms reported in the area")
	}

	if c.Icing && !m.AllowIcing {
		violations = append(violations, "Icing conditions reported")
	}

	if !m.AllowIMC && isIMC(c) {
		violations = append(violations, "Instrument meteorological conditions (IMC) present")
	}

	return Evaluation{Meets: len(violations) == 0, Violations: violations}
}

func isIMC(c models.WeatherConditions) bool {
	if c.VisibilityMiles < imcVisibilityMiles {
		return true
	}
	return c.CeilingFeet != nil && *c.CeilingFeet < imcCeilingFeet
}
