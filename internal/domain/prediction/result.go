// Package prediction defines the win-probability prediction value objects:
// ranks, confidence levels, the basis record, and the full prediction result.
// The scoring rules that produce these values live in
// internal/application/prediction; this package only carries the types and
// the threshold functions that tie rank and confidence to computed values.
package prediction

// Rank is a discretized win-likelihood tier, A best, E worst/disqualified.
type Rank string

const (
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
	RankD Rank = "D"
	RankE Rank = "E"
)

// RankFromProbability derives the final rank from a win probability.  The
// rank is always re-derived from the final probability after all adjustments;
// the provisional rank assigned by the price-ratio buckets never survives.
func RankFromProbability(p float64) Rank {
	switch {
	case p >= 0.70:
		return RankA
	case p >= 0.50:
		return RankB
	case p >= 0.35:
		return RankC
	case p >= 0.20:
		return RankD
	default:
		return RankE
	}
}

// Confidence is a qualitative measure of how much comparable evidence backs a
// probability estimate.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceFromSampleSize maps the comparable-sample size to a confidence
// level.
func ConfidenceFromSampleSize(n int) Confidence {
	switch {
	case n >= 15:
		return ConfidenceHigh
	case n >= 5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Basis records the comparable-sample statistics and price ratios underlying
// a prediction.  Amounts are in JPY.
type Basis struct {
	NSimilar      int   `json:"n_similar"`
	SimilarMedian int64 `json:"similar_median"`
	SimilarMin    int64 `json:"similar_min"`
	SimilarMax    int64 `json:"similar_max"`

	// PriceGap is the bid amount minus the comparable median.
	PriceGap int64 `json:"price_gap"`

	EstimatedPrice int64  `json:"estimated_price"`
	MinimumPrice   *int64 `json:"minimum_price"`

	// BidVsEstimatedRatio is the bid as a percentage of the estimated price,
	// rounded to one decimal place.
	BidVsEstimatedRatio float64 `json:"bid_vs_estimated_ratio"`
}

// ComparableCase is a display summary of one comparable award.
type ComparableCase struct {
	Contractor            string `json:"contractor"`
	ContractAmount        int64  `json:"contract_amount"`
	ContractAmountDisplay string `json:"contract_amount_display"`
	Prefecture            string `json:"prefecture"`
	UseType               string `json:"use_type"`
	BidMethod             string `json:"bid_method"`
	AwardDate             string `json:"award_date"`
	ParticipantsCount     *int   `json:"participants_count"`
}

// Factor is one contributing factor in a prediction, with its direction and
// relative impact.
type Factor struct {
	Name      string  `json:"name"`
	Direction string  `json:"direction"` // "+" | "-"
	Impact    float64 `json:"impact"`
}

// Result is the full outcome of a single-tender prediction.  Results are
// ephemeral: computed fresh on every request and never persisted.
type Result struct {
	TenderID       string           `json:"tender_id"`
	Title          string           `json:"title"`
	Rank           Rank             `json:"rank"`
	WinProbability float64          `json:"win_probability"`
	Confidence     Confidence       `json:"confidence"`
	Basis          Basis            `json:"basis"`
	JudgmentReason string           `json:"judgment_reason"`
	RiskNotes      []string         `json:"risk_notes"`
	SimilarCases   []ComparableCase `json:"similar_cases"`
	Recommendation string           `json:"recommendation"`
	TopFactors     []Factor         `json:"top_factors"`
}

// Clamp bounds p to [0, 1].
func Clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
