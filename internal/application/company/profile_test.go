package company

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/redis"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

type fakeAwardRepo struct {
	findByContractor func(ctx context.Context, contractor string) ([]tender.Award, error)
}

func (f *fakeAwardRepo) FindCandidates(context.Context, tender.CandidateQuery) ([]tender.Award, error) {
	return nil, nil
}

func (f *fakeAwardRepo) FindByContractor(ctx context.Context, contractor string) ([]tender.Award, error) {
	return f.findByContractor(ctx, contractor)
}

func (f *fakeAwardRepo) BulkInsert(context.Context, []tender.Award) error { return nil }

func contractorAwards() []tender.Award {
	return []tender.Award{
		{Contractor: "テスト建設", Prefecture: "高知県", UseType: "道路", Method: tender.MethodOpenBid, ContractAmount: 90_000_000, AwardDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Contractor: "テスト建設", Prefecture: "高知県", UseType: "学校", Method: tender.MethodOpenBid, ContractAmount: 120_000_000, AwardDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Contractor: "テスト建設", Prefecture: "愛媛県", UseType: "道路", Method: tender.MethodOpenBid, ContractAmount: 60_000_000, AwardDate: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestGetProfile_AggregatesAwards(t *testing.T) {
	t.Parallel()

	repo := &fakeAwardRepo{
		findByContractor: func(_ context.Context, contractor string) ([]tender.Award, error) {
			assert.Equal(t, "テスト建設", contractor)
			return contractorAwards(), nil
		},
	}
	svc := NewProfileService(repo, nil, config.PredictionConfig{}, logging.NewNopLogger())

	got, err := svc.GetProfile(context.Background(), "テスト建設")
	require.NoError(t, err)

	assert.Equal(t, "テスト建設", got.Contractor)
	assert.Equal(t, 3, got.TotalAwards)
	assert.Equal(t, int64(270_000_000), got.TotalAmount)
	assert.Equal(t, 2, got.RegionCount("高知県"))
	assert.Equal(t, 2, got.UseTypeCount("道路"))
}

func TestGetProfile_UnknownContractorIsZeroValued(t *testing.T) {
	t.Parallel()

	repo := &fakeAwardRepo{
		findByContractor: func(context.Context, string) ([]tender.Award, error) {
			return nil, nil
		},
	}
	svc := NewProfileService(repo, nil, config.PredictionConfig{}, logging.NewNopLogger())

	got, err := svc.GetProfile(context.Background(), "無名建設")
	require.NoError(t, err)
	assert.Equal(t, "無名建設", got.Contractor)
	assert.Zero(t, got.TotalAwards)
}

func TestGetProfile_EmptyNameSkipsLookup(t *testing.T) {
	t.Parallel()

	repo := &fakeAwardRepo{
		findByContractor: func(context.Context, string) ([]tender.Award, error) {
			t.Fatal("award store must not be queried for an empty contractor name")
			return nil, nil
		},
	}
	svc := NewProfileService(repo, nil, config.PredictionConfig{}, logging.NewNopLogger())

	got, err := svc.GetProfile(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, got.TotalAwards)
}

func TestGetProfile_CachedProfileSkipsAggregation(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	cache := redis.NewRedisCache(client, logging.NewNopLogger())

	var calls int
	repo := &fakeAwardRepo{
		findByContractor: func(context.Context, string) ([]tender.Award, error) {
			calls++
			return contractorAwards(), nil
		},
	}
	svc := NewProfileService(repo, cache, config.PredictionConfig{ProfileCacheTTL: time.Minute}, logging.NewNopLogger())

	first, err := svc.GetProfile(context.Background(), "テスト建設")
	require.NoError(t, err)
	second, err := svc.GetProfile(context.Background(), "テスト建設")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.TotalAwards, second.TotalAwards)
	assert.Equal(t, first.TotalAmount, second.TotalAmount)
}

func TestGetProfile_StoreFailurePropagates(t *testing.T) {
	t.Parallel()

	repo := &fakeAwardRepo{
		findByContractor: func(context.Context, string) ([]tender.Award, error) {
			return nil, errors.New(errors.CodeDatabaseError, "connection refused")
		},
	}
	svc := NewProfileService(repo, nil, config.PredictionConfig{}, logging.NewNopLogger())

	_, err := svc.GetProfile(context.Background(), "テスト建設")
	assert.True(t, errors.IsCode(err, errors.CodeDatabaseError))
}
