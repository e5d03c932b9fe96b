package company

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
)

func award(contractor, prefecture, useType, method string, amount int64, tech *float64) tender.Award {
	return tender.Award{
		Contractor:     contractor,
		Prefecture:     prefecture,
		UseType:        useType,
		Method:         method,
		ContractAmount: amount,
		AwardDate:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		TechnicalScore: tech,
	}
}

func f64(v float64) *float64 { return &v }

func TestBuildProfile_EmptyHistory(t *testing.T) {
	p := BuildProfile("無実績建設", nil)

	assert.Equal(t, "無実績建設", p.Contractor)
	assert.Zero(t, p.TotalAwards)
	assert.Zero(t, p.TotalAmount)
	assert.Zero(t, p.AvgAmount)
	assert.Zero(t, p.AvgTechScore)
	assert.Empty(t, p.Prefectures)
	assert.Empty(t, p.UseTypes)
}

func TestBuildProfile_CountsReconcile(t *testing.T) {
	awards := []tender.Award{
		award("X", "高知県", "学校", tender.MethodOpenBid, 100, nil),
		award("X", "高知県", "学校", tender.MethodOpenBid, 200, nil),
		award("X", "愛媛県", "道路", tender.MethodComprehensiveEvaluation, 300, f64(85)),
		award("X", "高知県", "庁舎", tender.MethodComprehensiveEvaluation, 400, f64(75)),
		award("X", "香川県", "学校", tender.MethodOpenBid, 500, nil),
	}

	p := BuildProfile("X", awards)

	assert.Equal(t, 5, p.TotalAwards)
	assert.Equal(t, int64(1500), p.TotalAmount)
	assert.Equal(t, 300.0, p.AvgAmount)

	// Region counts sum to the total.
	sum := 0
	for _, c := range p.Prefectures {
		sum += c
	}
	assert.Equal(t, p.TotalAwards, sum)
	assert.Equal(t, 3, p.RegionCount("高知県"))
	assert.Equal(t, 1, p.RegionCount("愛媛県"))
	assert.Equal(t, 0, p.RegionCount("徳島県"))

	assert.Equal(t, 3, p.UseTypeCount("学校"))
	assert.Equal(t, 2, p.BidMethods[tender.MethodComprehensiveEvaluation])
}

func TestBuildProfile_AvgTechScoreOverNonNilOnly(t *testing.T) {
	awards := []tender.Award{
		award("X", "高知県", "学校", tender.MethodComprehensiveEvaluation, 100, f64(80)),
		award("X", "高知県", "学校", tender.MethodComprehensiveEvaluation, 100, f64(90)),
		award("X", "高知県", "学校", tender.MethodOpenBid, 100, nil),
	}

	p := BuildProfile("X", awards)

	assert.Equal(t, 85.0, p.AvgTechScore)
	assert.Equal(t, 2, p.TechScoreSamples)
}

func TestBuildProfile_Idempotent(t *testing.T) {
	awards := []tender.Award{
		award("X", "高知県", "学校", tender.MethodOpenBid, 100, f64(70)),
		award("X", "愛媛県", "道路", tender.MethodOpenBid, 200, nil),
	}

	p1 := BuildProfile("X", awards)
	p2 := BuildProfile("X", awards)

	assert.Equal(t, p1, p2, "same award set must yield identical profiles")
}

func TestTopPrefectures_OrderedAndCapped(t *testing.T) {
	awards := []tender.Award{
		award("X", "高知県", "学校", tender.MethodOpenBid, 1, nil),
		award("X", "高知県", "学校", tender.MethodOpenBid, 1, nil),
		award("X", "高知県", "学校", tender.MethodOpenBid, 1, nil),
		award("X", "愛媛県", "学校", tender.MethodOpenBid, 1, nil),
		award("X", "愛媛県", "学校", tender.MethodOpenBid, 1, nil),
		award("X", "香川県", "学校", tender.MethodOpenBid, 1, nil),
		award("X", "徳島県", "学校", tender.MethodOpenBid, 1, nil),
	}

	p := BuildProfile("X", awards)
	top := p.TopPrefectures(3)

	require.Len(t, top, 3)
	assert.Equal(t, "高知県", top[0].Prefecture)
	assert.Equal(t, 3, top[0].Count)
	assert.Equal(t, "愛媛県", top[1].Prefecture)
	// Tiebreak between 香川県 and 徳島県 (both 1) is lexicographic.
	assert.Equal(t, 1, top[2].Count)
}

func TestTopPrefectures_ZeroNMeansAll(t *testing.T) {
	awards := []tender.Award{
		award("X", "高知県", "学校", tender.MethodOpenBid, 1, nil),
		award("X", "愛媛県", "学校", tender.MethodOpenBid, 1, nil),
	}
	p := BuildProfile("X", awards)
	assert.Len(t, p.TopPrefectures(0), 2)
}
