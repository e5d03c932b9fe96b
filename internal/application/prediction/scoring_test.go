package prediction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/prediction"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
)

func scoringTender(estimated int64) *tender.Tender {
	return &tender.Tender{
		ID:             "T-1",
		Title:          "市道改良工事",
		Prefecture:     "高知県",
		UseType:        "道路",
		BidMethod:      tender.MethodOpenBid,
		EstimatedPrice: estimated,
		BidDate:        time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
	}
}

func emptyProfile() *company.Profile {
	p := company.BuildProfile("テスト建設", nil)
	return &p
}

func comparablesWithAmounts(amounts ...int64) []Comparable {
	out := make([]Comparable, len(amounts))
	for i, amt := range amounts {
		out[i] = Comparable{Award: tender.Award{
			Contractor:     "業者" + string(rune('A'+i)),
			ContractAmount: amt,
		}}
	}
	return out
}

func TestComputeScore_RatioBuckets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		bid      int64
		wantProb float64
		wantRank prediction.Rank
	}{
		{74_999_999, 0.90, prediction.RankA},
		{75_000_000, 0.75, prediction.RankA}, // ratio 0.75 exactly falls into the next bucket
		{81_999_999, 0.75, prediction.RankA},
		{85_000_000, 0.65, prediction.RankB},
		{90_000_000, 0.55, prediction.RankB},
		{95_000_000, 0.45, prediction.RankC},
		{98_000_000, 0.35, prediction.RankC},
		{100_000_000, 0.25, prediction.RankD},
		{104_000_000, 0.15, prediction.RankD},
		{105_000_000, 0.08, prediction.RankE},
		{120_000_000, 0.08, prediction.RankE},
	}
	for _, tc := range cases {
		s := ComputeScore(ScoreInput{
			BidAmount: tc.bid,
			Tender:    scoringTender(100_000_000),
			Profile:   emptyProfile(),
		})
		assert.InDelta(t, tc.wantProb, s.BaseProbability, 1e-9, "bid %d", tc.bid)
		assert.Equal(t, tc.wantRank, prediction.RankFromProbability(s.BaseProbability), "bid %d", tc.bid)
	}
}

func TestComputeScore_ReferencePriceFallback(t *testing.T) {
	t.Parallel()

	noComparables := ComputeScore(ScoreInput{
		BidAmount: 90_000_000,
		Tender:    scoringTender(100_000_000),
		Profile:   emptyProfile(),
	})
	assert.InDelta(t, 90_000_000, noComparables.ReferencePrice, 1e-9)

	withComparables := ComputeScore(ScoreInput{
		BidAmount:   90_000_000,
		Tender:      scoringTender(100_000_000),
		Comparables: comparablesWithAmounts(80_000_000, 95_000_000, 100_000_000),
		Profile:     emptyProfile(),
	})
	assert.InDelta(t, 95_000_000, withComparables.ReferencePrice, 1e-9)
}

func TestComputeScore_RegionAndUseTypeAdjustments(t *testing.T) {
	t.Parallel()

	awards := make([]tender.Award, 0, 30)
	for i := 0; i < 11; i++ {
		awards = append(awards, tender.Award{Prefecture: "高知県", UseType: "学校", ContractAmount: 1})
	}
	for i := 0; i < 16; i++ {
		awards = append(awards, tender.Award{Prefecture: "愛媛県", UseType: "道路", ContractAmount: 1})
	}
	profile := company.BuildProfile("テスト建設", awards)

	s := ComputeScore(ScoreInput{
		BidAmount: 90_000_000, // base 0.55
		Tender:    scoringTender(100_000_000),
		Profile:   &profile,
	})
	// +0.10 for >10 regional awards, +0.08 for >15 use-type awards.
	assert.InDelta(t, 0.73, s.WinProbability, 1e-9)
	assert.Equal(t, prediction.RankA, s.Rank)
	assert.Equal(t, prediction.RankB, s.ProvisionalRank)
}

func TestComputeScore_WeakAdjustments(t *testing.T) {
	t.Parallel()

	awards := make([]tender.Award, 0, 15)
	for i := 0; i < 6; i++ {
		awards = append(awards, tender.Award{Prefecture: "高知県", UseType: "道路", ContractAmount: 1})
	}
	for i := 0; i < 3; i++ {
		awards = append(awards, tender.Award{Prefecture: "徳島県", UseType: "道路", ContractAmount: 1})
	}
	profile := company.BuildProfile("テスト建設", awards)

	s := ComputeScore(ScoreInput{
		BidAmount: 90_000_000,
		Tender:    scoringTender(100_000_000),
		Profile:   &profile,
	})
	// +0.05 for >5 regional awards, +0.04 for >8 use-type awards.
	assert.InDelta(t, 0.64, s.WinProbability, 1e-9)
}

func TestComputeScore_TechScoreBonusOnlyForComprehensiveEvaluation(t *testing.T) {
	t.Parallel()

	score := 85.0
	profile := company.BuildProfile("テスト建設", []tender.Award{
		{ContractAmount: 1, TechnicalScore: &score},
	})

	open := ComputeScore(ScoreInput{
		BidAmount: 90_000_000,
		Tender:    scoringTender(100_000_000),
		Profile:   &profile,
	})
	assert.InDelta(t, 0.55, open.WinProbability, 1e-9)

	comprehensive := scoringTender(100_000_000)
	comprehensive.BidMethod = tender.MethodComprehensiveEvaluation
	evaluated := ComputeScore(ScoreInput{
		BidAmount: 90_000_000,
		Tender:    comprehensive,
		Profile:   &profile,
	})
	assert.InDelta(t, 0.67, evaluated.WinProbability, 1e-9)
}

func TestComputeScore_DisqualificationOverridesEverything(t *testing.T) {
	t.Parallel()

	minPrice := int64(450_000_000)
	strong := make([]tender.Award, 0, 20)
	for i := 0; i < 20; i++ {
		strong = append(strong, tender.Award{Prefecture: "高知県", UseType: "道路", ContractAmount: 1})
	}
	profile := company.BuildProfile("テスト建設", strong)

	dt := scoringTender(500_000_000)
	dt.MinimumPrice = &minPrice

	s := ComputeScore(ScoreInput{
		BidAmount:           400_000_000, // ratio 0.80, otherwise strong
		Tender:              dt,
		Profile:             &profile,
		AnnotatorAdjustment: 0.2,
	})
	assert.True(t, s.Disqualified)
	assert.Zero(t, s.WinProbability)
	assert.Equal(t, prediction.RankE, s.Rank)
}

func TestComputeScore_SpecifiedScenario(t *testing.T) {
	t.Parallel()

	s := ComputeScore(ScoreInput{
		BidAmount: 400_000_000,
		Tender:    scoringTender(500_000_000),
		Profile:   emptyProfile(),
	})
	assert.InDelta(t, 0.75, s.BaseProbability, 1e-9)
	assert.Equal(t, prediction.RankA, s.ProvisionalRank)
	assert.InDelta(t, 0.75, s.WinProbability, 1e-9)
}

func TestComputeScore_ClampWithAnnotatorDelta(t *testing.T) {
	t.Parallel()

	boosted := ComputeScore(ScoreInput{
		BidAmount:           70_000_000, // base 0.90
		Tender:              scoringTender(100_000_000),
		Profile:             emptyProfile(),
		AnnotatorAdjustment: 0.2,
	})
	assert.InDelta(t, 1.0, boosted.WinProbability, 1e-9)

	lowered := ComputeScore(ScoreInput{
		BidAmount:           120_000_000, // base 0.08
		Tender:              scoringTender(100_000_000),
		Profile:             emptyProfile(),
		AnnotatorAdjustment: -0.2,
	})
	assert.Zero(t, lowered.WinProbability)
}

func TestComputeScore_RankRederivedAfterAdjustments(t *testing.T) {
	t.Parallel()

	s := ComputeScore(ScoreInput{
		BidAmount:           95_000_000, // base 0.45, provisional C
		Tender:              scoringTender(100_000_000),
		Profile:             emptyProfile(),
		AnnotatorAdjustment: 0.1,
	})
	assert.Equal(t, prediction.RankC, s.ProvisionalRank)
	assert.Equal(t, prediction.RankB, s.Rank)
	assert.InDelta(t, 0.55, s.WinProbability, 1e-9)
}

func TestComputeScore_ConfidenceFromSampleSize(t *testing.T) {
	t.Parallel()

	none := ComputeScore(ScoreInput{
		BidAmount: 90_000_000,
		Tender:    scoringTender(100_000_000),
		Profile:   emptyProfile(),
	})
	assert.Equal(t, prediction.ConfidenceLow, none.Confidence)

	amounts := make([]int64, 15)
	for i := range amounts {
		amounts[i] = 90_000_000
	}
	many := ComputeScore(ScoreInput{
		BidAmount:   90_000_000,
		Tender:      scoringTender(100_000_000),
		Comparables: comparablesWithAmounts(amounts...),
		Profile:     emptyProfile(),
	})
	assert.Equal(t, prediction.ConfidenceHigh, many.Confidence)
}

func TestMedianAmount(t *testing.T) {
	t.Parallel()

	odd := medianAmount(comparablesWithAmounts(300, 100, 200))
	assert.InDelta(t, 200, odd, 1e-9)

	even := medianAmount(comparablesWithAmounts(100, 400, 200, 300))
	assert.InDelta(t, 250, even, 1e-9)
}
