// Package company provides the application-level services around company
// accounts: strength-profile aggregation for the prediction engine and
// credential-based authentication for the API layer.
package company

import (
	"context"
	"time"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	domainCompany "github.com/Allllisha/AI-Tender-Prediction/internal/domain/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/redis"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
)

// ProfileService aggregates a contractor's historical awards into a strength
// profile.  Aggregation is idempotent and an unknown contractor yields a
// zero-valued profile, never an error, so the prediction path can always
// proceed.
type ProfileService struct {
	awards tender.AwardRepository
	cache  redis.Cache
	ttl    time.Duration
	log    logging.Logger
}

// NewProfileService wires the aggregator.  cache may be nil; profiles are
// then rebuilt from the award store on every call.
func NewProfileService(awards tender.AwardRepository, cache redis.Cache, cfg config.PredictionConfig, log logging.Logger) *ProfileService {
	ttl := cfg.ProfileCacheTTL
	if ttl <= 0 {
		ttl = config.DefaultProfileCacheTTL
	}
	return &ProfileService{
		awards: awards,
		cache:  cache,
		ttl:    ttl,
		log:    log.Named("company"),
	}
}

// GetProfile returns the strength profile for the named contractor.  The
// cache, when configured, is a pure throughput optimisation: entries expire
// within the TTL and a cache failure falls through to direct aggregation.
func (s *ProfileService) GetProfile(ctx context.Context, contractor string) (domainCompany.Profile, error) {
	if contractor == "" {
		return domainCompany.BuildProfile("", nil), nil
	}
	if s.cache == nil {
		return s.aggregate(ctx, contractor)
	}

	var profile domainCompany.Profile
	err := s.cache.GetOrSet(ctx, "profile:"+contractor, &profile, s.ttl, func(ctx context.Context) (interface{}, error) {
		p, loadErr := s.aggregate(ctx, contractor)
		if loadErr != nil {
			return nil, loadErr
		}
		return p, nil
	})
	if err != nil {
		s.log.Warn("Profile cache lookup failed, aggregating directly",
			logging.Err(err), logging.String("contractor", contractor))
		return s.aggregate(ctx, contractor)
	}
	return profile, nil
}

func (s *ProfileService) aggregate(ctx context.Context, contractor string) (domainCompany.Profile, error) {
	awards, err := s.awards.FindByContractor(ctx, contractor)
	if err != nil {
		return domainCompany.Profile{}, err
	}
	return domainCompany.BuildProfile(contractor, awards), nil
}
