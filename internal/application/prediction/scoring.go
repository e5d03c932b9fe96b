package prediction

import (
	"math"
	"sort"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/prediction"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
)

// Company-strength adjustments.  Bounded nudges so the price signal stays
// dominant.
const (
	regionStrongBonus = 0.10
	regionWeakBonus   = 0.05
	regionStrongCount = 10
	regionWeakCount   = 5

	useTypeStrongBonus = 0.08
	useTypeWeakBonus   = 0.04
	useTypeStrongCount = 15
	useTypeWeakCount   = 8

	techScoreBonus     = 0.12
	techScoreThreshold = 80.0
)

// ratioBucket maps one estimated-ratio interval to its base probability and
// provisional rank.
type ratioBucket struct {
	upperBound  float64
	probability float64
	rank        prediction.Rank
}

// ratioBuckets is the monotonically decreasing step function from
// bid/estimate ratio to base win probability.  Buckets are finest in the
// 0.75-1.05 range where competitive dynamics matter most.
var ratioBuckets = []ratioBucket{
	{0.75, 0.90, prediction.RankA},
	{0.82, 0.75, prediction.RankA},
	{0.88, 0.65, prediction.RankB},
	{0.92, 0.55, prediction.RankB},
	{0.96, 0.45, prediction.RankC},
	{0.99, 0.35, prediction.RankC},
	{1.02, 0.25, prediction.RankD},
	{1.05, 0.15, prediction.RankD},
}

// floorBucket applies at a ratio of 1.05 and above.
var floorBucket = ratioBucket{math.Inf(1), 0.08, prediction.RankE}

// ScoreInput is everything the scoring model consumes for one evaluation.
type ScoreInput struct {
	BidAmount   int64
	Tender      *tender.Tender
	Comparables []Comparable
	Profile     *company.Profile

	// AnnotatorAdjustment is the model's probability delta, already clamped
	// to [-0.2, +0.2].  Zero when the annotator is disabled or failed.
	AnnotatorAdjustment float64
}

// Score is the scoring model's full output, including the intermediates the
// narrative generator cites.
type Score struct {
	Rank           prediction.Rank
	WinProbability float64
	Confidence     prediction.Confidence

	// ProvisionalRank is the price-bucket rank before adjustments.  The
	// final Rank is always re-derived from the final probability.
	ProvisionalRank prediction.Rank
	BaseProbability float64

	// EstimatedRatio is bid / estimated price (1.0 when no estimate).
	EstimatedRatio float64

	// ReferencePrice is the comparable median, or 90% of the estimate when
	// no comparables exist.
	ReferencePrice float64

	Disqualified bool
}

// ComputeScore runs the full scoring model: reference price, ratio bucket,
// company-strength adjustments, annotator delta, disqualification override,
// rank re-derivation, clamping, and confidence.
func ComputeScore(in ScoreInput) Score {
	s := Score{
		ReferencePrice: referencePrice(in.Tender, in.Comparables),
		EstimatedRatio: estimatedRatio(in.BidAmount, in.Tender),
	}

	bucket := floorBucket
	for _, b := range ratioBuckets {
		if s.EstimatedRatio < b.upperBound {
			bucket = b
			break
		}
	}
	s.BaseProbability = bucket.probability
	s.ProvisionalRank = bucket.rank

	p := s.BaseProbability
	p += regionAdjustment(in.Profile, in.Tender.Prefecture)
	p += useTypeAdjustment(in.Profile, in.Tender.UseType)
	p += techScoreAdjustment(in.Profile, in.Tender.BidMethod)
	p += in.AnnotatorAdjustment

	// A below-floor bid is disqualified by procurement rule, overriding
	// every adjustment above.
	if in.Tender.Disqualifies(in.BidAmount) {
		p = 0.0
		s.Disqualified = true
	}

	p = prediction.Clamp(p)
	s.WinProbability = round3(p)
	s.Rank = prediction.RankFromProbability(s.WinProbability)
	s.Confidence = prediction.ConfidenceFromSampleSize(len(in.Comparables))
	return s
}

// referencePrice is the comparable median, falling back to 90% of the
// estimate because award prices typically land near, not at, the estimate.
func referencePrice(t *tender.Tender, comparables []Comparable) float64 {
	if len(comparables) > 0 {
		return medianAmount(comparables)
	}
	return float64(t.EstimatedPrice) * priceAnchorRatio
}

func estimatedRatio(bidAmount int64, t *tender.Tender) float64 {
	if t.EstimatedPrice <= 0 {
		return 1.0
	}
	return float64(bidAmount) / float64(t.EstimatedPrice)
}

func regionAdjustment(p *company.Profile, prefecture string) float64 {
	switch count := p.RegionCount(prefecture); {
	case count > regionStrongCount:
		return regionStrongBonus
	case count > regionWeakCount:
		return regionWeakBonus
	default:
		return 0
	}
}

func useTypeAdjustment(p *company.Profile, useType string) float64 {
	switch count := p.UseTypeCount(useType); {
	case count > useTypeStrongCount:
		return useTypeStrongBonus
	case count > useTypeWeakCount:
		return useTypeWeakBonus
	default:
		return 0
	}
}

func techScoreAdjustment(p *company.Profile, bidMethod string) float64 {
	if bidMethod == tender.MethodComprehensiveEvaluation &&
		p.TechScoreSamples > 0 && p.AvgTechScore > techScoreThreshold {
		return techScoreBonus
	}
	return 0
}

// medianAmount returns the median comparable contract amount.
func medianAmount(comparables []Comparable) float64 {
	amounts := make([]int64, len(comparables))
	for i, c := range comparables {
		amounts[i] = c.ContractAmount
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })

	n := len(amounts)
	if n%2 == 1 {
		return float64(amounts[n/2])
	}
	return float64(amounts[n/2-1]+amounts[n/2]) / 2
}

func round3(p float64) float64 {
	return math.Round(p*1000) / 1000
}
