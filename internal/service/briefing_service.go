package service

import (
	"context"
	"fmt"
	"time"

	models "flightguard/internal"
	"flightguard/internal/cache"
	"flightguard/internal/ports"
)

type briefingService struct {
	briefings *cache.BriefingCache
	provider  ports.WeatherProvider
	generator ports.BriefingGenerator
}

func NewBriefingService(briefings *cache.BriefingCache, provider ports.WeatherProvider, generator ports.BriefingGenerator) *briefingService {
	return &briefingService{
		briefings: briefings,
		provider:  provider,
		generator: generator,
	}
}

// GetBriefing serves a cached briefing when one is still fresh; otherwise it
// fetches current conditions, generates new text, and caches it for the TTL.
func (s *briefingService) GetBriefing(ctx context.Context, loc models.Location, at time.Time, level models.TrainingLevel) (string, error) {
	key := cache.NewKey(loc.Name, at, level)
	if text, ok := s.briefings.Get(key); ok {
		return text, nil
	}

	conditions, err := s.provider.FetchCurrent(ctx, loc)
	if err != nil {
		return "", fmt.Errorf("fetching conditions for briefing: %w", err)
	}

	text, err := s.generator.GenerateBriefing(ctx, loc, at, level, conditions)
	if err != nil {
		return "", err
	}

	s.briefings.Put(key, text)
	return text, nil
}
