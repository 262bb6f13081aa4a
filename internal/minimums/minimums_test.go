package minimums_test

import (
	"testing"

	models "flightguard/internal"
	"flightguard/internal/minimums"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ceiling(v float64) *float64 { return &v }

func clearDay() models.WeatherConditions {
	return models.WeatherConditions{
		VisibilityMiles: 10,
		WindSpeedKnots:  5,
		TemperatureF:    72,
		HumidityPct:     40,
	}
}

func TestForLevelUnknownFallsBackToStudent(t *testing.T) {
	student := minimums.ForLevel(models.LevelStudentPilot)
	unknown := minimums.ForLevel(models.TrainingLevel("SPORT_PILOT"))
	assert.Equal(t, student, unknown)
}

func TestStudentPilotClearDayMeets(t *testing.T) {
	eval := minimums.Evaluate(clearDay(), models.LevelStudentPilot)
	assert.True(t, eval.Meets)
	assert.Empty(t, eval.Violations)
}

func TestStudentPilotLowVisibility(t *testing.T) {
	c := clearDay()
	c.VisibilityMiles = 3
	eval := minimums.Evaluate(c, models.LevelStudentPilot)
	assert.False(t, eval.Meets)
	require.Len(t, eval.Violations, 1)
	assert.Contains(t, eval.Violations[0], "Visibility")
}

func TestStudentPilotCeilingMeansNotClear(t *testing.T) {
	c := clearDay()
	c.CeilingFeet = ceiling(4500)
	eval := minimums.Evaluate(c, models.LevelStudentPilot)
	assert.False(t, eval.Meets)
	require.Len(t, eval.Violations, 1)
	assert.Contains(t, eval.Violations[0], "clear skies")
}

func TestInstrumentRatedFliesIMC(t *testing.T) {
	c := models.WeatherConditions{
		VisibilityMiles: 1,
		CeilingFeet:     ceiling(200),
		WindSpeedKnots:  25,
		Precipitation:   true,
	}
	eval := minimums.Evaluate(c, models.LevelInstrumentRated)
	assert.True(t, eval.Meets)
	assert.Empty(t, eval.Violations)
}

func TestThunderstormsAndIcingBlockEveryLevel(t *testing.T) {
	levels := []models.TrainingLevel{
		models.LevelStudentPilot,
		models.LevelPrivatePilot,
		models.LevelInstrumentRated,
	}
	for _, level := range levels {
		ts := clearDay()
		ts.Thunderstorms = true
		eval := minimums.Evaluate(ts, level)
		assert.False(t, eval.Meets, "thunderstorms should ground %s", level)

		ice := clearDay()
		ice.Icing = true
		eval = minimums.Evaluate(ice, level)
		assert.False(t, eval.Meets, "icing should ground %s", level)
	}
}

func TestPrivatePilotCeilingFloor(t *testing.T) {
	c := clearDay()
	c.CeilingFeet = ceiling(1200)
	eval := minimums.Evaluate(c, models.LevelPrivatePilot)
	assert.False(t, eval.Meets)
	require.Len(t, eval.Violations, 1)
	assert.Contains(t, eval.Violations[0], "Ceiling")
}

func TestIMCDoubleReportsWithVisibility(t *testing.T) {
	// Visibility below both the level minimum and the IMC threshold yields
	// two violations: the list is complete, not deduplicated.
	c := clearDay()
	c.VisibilityMiles = 2
	eval := minimums.Evaluate(c, models.LevelPrivatePilot)
	assert.False(t, eval.Meets)
	assert.Len(t, eval.Violations, 2)
	assert.Contains(t, eval.Violations[1], "IMC")
}

func TestFlippingAConditionNeverRemovesAViolation(t *testing.T) {
	base := clearDay()
	base.VisibilityMiles = 3 // already violating for student
	before := minimums.Evaluate(base, models.LevelStudentPilot)

	worse := base
	worse.Precipitation = true
	after := minimums.Evaluate(worse, models.LevelStudentPilot)

	require.False(t, after.Meets)
	for _, v := range before.Violations {
		assert.Contains(t, after.Violations, v)
	}
	assert.Greater(t, len(after.Violations), len(before.Violations))
}

func TestWindViolation(t *testing.T) {
	c := clearDay()
	c.WindSpeedKnots = 18
	eval := minimums.Evaluate(c, models.LevelStudentPilot)
	assert.False(t, eval.Meets)
	assert.Contains(t, eval.Violations[0], "Wind")

	eval = minimums.Evaluate(c, models.LevelPrivatePilot)
	assert.True(t, eval.Meets)
}
