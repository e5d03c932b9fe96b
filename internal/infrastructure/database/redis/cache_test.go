package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/prometheus"
	pkgerrors "github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

type profilePayload struct {
	Contractor  string `json:"contractor"`
	TotalAwards int    `json:"total_awards"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Mock-backed tests (no TTL assertions; expirations carry jitter)
// ─────────────────────────────────────────────────────────────────────────────

type CacheMockTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheMockTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock

	client := &Client{
		rdb:    db,
		logger: logging.NewNopLogger(),
	}
	s.cache = NewRedisCache(client, logging.NewNopLogger(), WithPrefix("test:"))
}

func (s *CacheMockTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *CacheMockTestSuite) TestGet_CacheHit() {
	want := profilePayload{Contractor: "四国建設株式会社", TotalAwards: 12}
	raw, _ := json.Marshal(want)

	s.mock.ExpectGet("test:profile:四国建設株式会社").SetVal(string(raw))

	var got profilePayload
	err := s.cache.Get(context.Background(), "profile:四国建設株式会社", &got)
	s.NoError(err)
	s.Equal(want, got)
}

func (s *CacheMockTestSuite) TestGet_CacheMiss() {
	s.mock.ExpectGet("test:missing").RedisNil()

	var got profilePayload
	err := s.cache.Get(context.Background(), "missing", &got)
	s.ErrorIs(err, ErrCacheMiss)
}

func (s *CacheMockTestSuite) TestGet_NullSentinelIsMiss() {
	s.mock.ExpectGet("test:tombstone").SetVal(nullSentinel)

	var got profilePayload
	err := s.cache.Get(context.Background(), "tombstone", &got)
	s.ErrorIs(err, ErrCacheMiss)
}

func (s *CacheMockTestSuite) TestGet_RedisError() {
	s.mock.ExpectGet("test:broken").SetErr(assert.AnError)

	var got profilePayload
	err := s.cache.Get(context.Background(), "broken", &got)
	s.True(pkgerrors.IsCode(err, pkgerrors.CodeCacheError))
}

func (s *CacheMockTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "a", "b"))
}

func (s *CacheMockTestSuite) TestDelete_EmptyIsNoop() {
	s.NoError(s.cache.Delete(context.Background()))
}

func TestCacheMockTestSuite(t *testing.T) {
	suite.Run(t, new(CacheMockTestSuite))
}

// ─────────────────────────────────────────────────────────────────────────────
// miniredis-backed tests (round trips and loader behavior)
// ─────────────────────────────────────────────────────────────────────────────

func newMiniredisCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client, logging.NewNopLogger(), WithPrefix("test:")), mr
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	cache, _ := newMiniredisCache(t)
	ctx := context.Background()

	want := profilePayload{Contractor: "伊予工務店", TotalAwards: 3}
	require.NoError(t, cache.Set(ctx, "profile:伊予工務店", want, time.Minute))

	var got profilePayload
	require.NoError(t, cache.Get(ctx, "profile:伊予工務店", &got))
	assert.Equal(t, want, got)
}

func TestCache_GetOrSet_LoadsOnceAndCaches(t *testing.T) {
	cache, _ := newMiniredisCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return profilePayload{Contractor: "高知組", TotalAwards: 7}, nil
	}

	var got profilePayload
	require.NoError(t, cache.GetOrSet(ctx, "profile:高知組", &got, time.Minute, loader))
	assert.Equal(t, 7, got.TotalAwards)

	var again profilePayload
	require.NoError(t, cache.GetOrSet(ctx, "profile:高知組", &again, time.Minute, loader))
	assert.Equal(t, got, again)
	assert.Equal(t, 1, calls)
}

func TestCache_GetOrSet_LoaderError(t *testing.T) {
	cache, _ := newMiniredisCache(t)

	var got profilePayload
	err := cache.GetOrSet(context.Background(), "profile:x", &got, time.Minute,
		func(context.Context) (interface{}, error) { return nil, assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCache_GetOrSet_NilValueCachesTombstone(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := context.Background()

	var got profilePayload
	err := cache.GetOrSet(ctx, "profile:none", &got, time.Minute,
		func(context.Context) (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrCacheMiss)

	stored, err := mr.Get("test:profile:none")
	require.NoError(t, err)
	assert.Equal(t, nullSentinel, stored)
}

type countingCounterVec struct{ counts map[string]int }

func (v *countingCounterVec) WithLabelValues(lvs ...string) prometheus.Counter {
	return &countingCounter{vec: v, key: lvs[0]}
}

type countingCounter struct {
	vec *countingCounterVec
	key string
}

func (c *countingCounter) Inc()          { c.vec.counts[c.key]++ }
func (c *countingCounter) Add(d float64) { c.vec.counts[c.key] += int(d) }

func TestCache_CountsHitsAndMisses(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	hits := &countingCounterVec{counts: map[string]int{}}
	misses := &countingCounterVec{counts: map[string]int{}}
	cache := NewRedisCache(client, logging.NewNopLogger(),
		WithPrefix("test:"),
		WithMetrics(&prometheus.AppMetrics{CacheHitsTotal: hits, CacheMissesTotal: misses}))
	ctx := context.Background()

	var got profilePayload
	assert.ErrorIs(t, cache.Get(ctx, "profile:土佐建設", &got), ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "profile:土佐建設", profilePayload{Contractor: "土佐建設"}, time.Minute))
	require.NoError(t, cache.Get(ctx, "profile:土佐建設", &got))

	assert.Equal(t, 1, misses.counts["redis"])
	assert.Equal(t, 1, hits.counts["redis"])
}

func TestCache_DeleteByPrefix(t *testing.T) {
	cache, _ := newMiniredisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "opts:a", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "opts:b", 2, time.Minute))
	require.NoError(t, cache.Set(ctx, "profile:c", 3, time.Minute))

	deleted, err := cache.DeleteByPrefix(ctx, "opts:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	ok, err := cache.Exists(ctx, "profile:c")
	require.NoError(t, err)
	assert.True(t, ok)
}
