// Package annotator provides the optional LLM annotation layer for
// predictions.  When configured with Azure OpenAI credentials it enriches the
// heuristic result with qualitative risk factors, opportunities, strategic
// advice, and a bounded confidence adjustment.  When unconfigured, or when
// the model call fails, callers fall back to the heuristic-only result; the
// annotator never blocks a prediction.
package annotator

import (
	"context"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/prediction"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
)

// AdjustmentBound caps the influence the model may exert on the final win
// probability, in either direction.
const AdjustmentBound = 0.2

// Analysis is the structured annotation returned by the model.
type Analysis struct {
	RiskFactors          []string `json:"risk_factors"`
	Opportunities        []string `json:"opportunities"`
	StrategicAdvice      string   `json:"strategic_advice"`
	ConfidenceAdjustment float64  `json:"confidence_adjustment"`
}

// NeutralAnalysis returns an analysis that leaves the heuristic result
// untouched.  It is the fallback for every annotator failure mode.
func NeutralAnalysis() *Analysis {
	return &Analysis{
		RiskFactors:   []string{},
		Opportunities: []string{},
	}
}

// SampleStats summarizes the comparable sample handed to the model.
type SampleStats struct {
	Count           int
	Median          int64
	Min             int64
	Max             int64
	AvgParticipants float64
}

// AnalysisInput carries everything the risk-analysis prompt needs.
type AnalysisInput struct {
	Tender    *tender.Tender
	BidAmount int64
	Sample    SampleStats
	Profile   *company.Profile
}

// RecommendationInput carries everything the recommendation prompt needs.
type RecommendationInput struct {
	Tender   *tender.Tender
	Rank     prediction.Rank
	WinProb  float64
	Basis    prediction.Basis
	Analysis *Analysis
	Profile  *company.Profile
}

// Annotator is the LLM annotation contract.  Implementations must return
// quickly relative to the prediction budget; callers treat any error as a
// signal to continue heuristic-only.
type Annotator interface {
	// Enabled reports whether the annotator will actually call a model.
	Enabled() bool

	// AnalyzeRisks asks the model for risk factors, opportunities, advice,
	// and a probability adjustment.  The returned adjustment is already
	// clamped to [-AdjustmentBound, +AdjustmentBound].
	AnalyzeRisks(ctx context.Context, in *AnalysisInput) (*Analysis, error)

	// DetailedRecommendation generates the long-form recommendation text.
	DetailedRecommendation(ctx context.Context, in *RecommendationInput) (string, error)
}

// FallbackRecommendation returns the static recommendation used when no
// model is available or the model call fails.
func FallbackRecommendation(rank prediction.Rank) string {
	switch rank {
	case prediction.RankA, prediction.RankB:
		return "有望な案件です。技術提案書の充実と、過去実績のアピールを重視して入札準備を進めてください。"
	case prediction.RankC:
		return "妥当な価格設定ですが、競合分析を強化し、差別化ポイントを明確にすることを推奨します。"
	default:
		return "リスクが高い案件です。価格戦略の見直しか、他案件への注力を検討してください。"
	}
}

// disabledAnnotator is returned when the Azure OpenAI configuration is
// incomplete.  Every call succeeds with the neutral fallback.
type disabledAnnotator struct{}

// NewDisabled returns an annotator that always yields neutral results.
func NewDisabled() Annotator { return disabledAnnotator{} }

func (disabledAnnotator) Enabled() bool { return false }

func (disabledAnnotator) AnalyzeRisks(context.Context, *AnalysisInput) (*Analysis, error) {
	return NeutralAnalysis(), nil
}

func (disabledAnnotator) DetailedRecommendation(_ context.Context, in *RecommendationInput) (string, error) {
	return FallbackRecommendation(in.Rank), nil
}
