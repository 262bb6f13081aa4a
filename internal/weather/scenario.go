package weather

import (
	"context"
	"sort"
	"time"

	models "flightguard/internal"
)

func ceil(v float64) *float64 { return &v }

// scenarios are the canned observations available in demo mode. They are
// deterministic apart from the observation timestamp.
var scenarios = map[string]models.WeatherConditions{
	"clear": {
		VisibilityMiles: 10,
		WindSpeedKnots:  6,
		TemperatureF:    72,
		HumidityPct:     35,
		Description:     "Clear skies, light winds",
	},
	"marginal-vfr": {
		VisibilityMiles: 4,
		CeilingFeet:     ceil(2200),
		WindSpeedKnots:  12,
		TemperatureF:    64,
		HumidityPct:     70,
		Description:     "Marginal VFR, scattered layer at 2,200 ft",
	},
	"ifr": {
		VisibilityMiles: 1.5,
		CeilingFeet:     ceil(600),
		WindSpeedKnots:  8,
		TemperatureF:    55,
		HumidityPct:     95,
		Precipitation:   true,
		Description:     "Low ceilings and mist, IFR conditions",
	},
	"thunderstorms": {
		VisibilityMiles: 3,
		CeilingFeet:     ceil(1800),
		WindSpeedKnots:  22,
		TemperatureF:    78,
		HumidityPct:     88,
		Precipitation:   true,
		Thunderstorms:   true,
		Description:     "Thunderstorms in the vicinity, gusty winds",
	},
	"icing": {
		VisibilityMiles: 5,
		CeilingFeet:     ceil(3500),
		WindSpeedKnots:  14,
		TemperatureF:    28,
		HumidityPct:     90,
		Precipitation:   true,
		Icing:           true,
		Description:     "Freezing precipitation, airframe icing reported",
	},
	"high-wind": {
		VisibilityMiles: 9,
		WindSpeedKnots:  32,
		TemperatureF:    60,
		HumidityPct:     40,
		Description:     "Clear but strong sustained winds",
	},
}

// ScenarioNames lists the known demo scenarios, sorted for stable display.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScenarioProvider serves a fixed scenario regardless of location. With no
// scenario pinned it serves clear skies.
type ScenarioProvider struct {
	scenario string
	nowFn    func() time.Time
}

func NewScenarioProvider(scenario string) (*ScenarioProvider, error) {
	if scenario == "" {
		scenario = "clear"
	}
	if _, ok := scenarios[scenario]; !ok {
		return nil, models.NewNotFoundError("unknown weather scenario %q", scenario)
	}
	return &ScenarioProvider{scenario: scenario, nowFn: time.Now}, nil
}

func (p *ScenarioProvider) FetchCurrent(_ context.Context, _ models.Location) (models.WeatherConditions, error) {
	c := scenarios[p.scenario]
	c.ObservedAt = p.nowFn().UTC()
	return c, nil
}
