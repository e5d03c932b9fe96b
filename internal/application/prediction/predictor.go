package prediction

import (
	"context"
	"time"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/prediction"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/messaging/kafka"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/prometheus"
	"github.com/Allllisha/AI-Tender-Prediction/internal/intelligence/annotator"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

// ProfileProvider supplies the bidder's strength profile.  Implementations
// must return a zero-valued profile, not an error, for unknown contractors.
type ProfileProvider interface {
	GetProfile(ctx context.Context, contractor string) (company.Profile, error)
}

// EventPublisher emits domain events without ever blocking or failing the
// prediction path.
type EventPublisher interface {
	PublishAsync(env *kafka.EventEnvelope)
}

// Service orchestrates single and bulk win-probability evaluations.
type Service struct {
	tenders   tender.TenderRepository
	retriever *Retriever
	profiles  ProfileProvider
	annotator annotator.Annotator
	events    EventPublisher
	metrics   *prometheus.AppMetrics
	log       logging.Logger
	cfg       config.PredictionConfig
}

// NewService wires the prediction service.  events and metrics may be nil;
// the service then skips event publication and metric recording.
func NewService(
	tenders tender.TenderRepository,
	retriever *Retriever,
	profiles ProfileProvider,
	ann annotator.Annotator,
	events EventPublisher,
	metrics *prometheus.AppMetrics,
	log logging.Logger,
	cfg config.PredictionConfig,
) *Service {
	return &Service{
		tenders:   tenders,
		retriever: retriever,
		profiles:  profiles,
		annotator: ann,
		events:    events,
		metrics:   metrics,
		log:       log.Named("prediction"),
		cfg:       cfg,
	}
}

// excludedContractor names the bidder whose awards are removed from the
// market set.  A configured self company wins over the request's company
// name, which still drives the strength profile.
func (s *Service) excludedContractor(companyName string) string {
	if s.cfg.SelfCompany != "" {
		return s.cfg.SelfCompany
	}
	return companyName
}

// PredictSingle evaluates one bid against one tender.  An unknown tender ID
// is the only client-visible error; every upstream degradation (empty
// comparables, missing profile, annotator failure) lowers confidence or
// falls back instead of failing.
func (s *Service) PredictSingle(ctx context.Context, tenderID string, bidAmount int64, companyName string) (*prediction.Result, error) {
	start := time.Now()

	if bidAmount <= 0 {
		return nil, errors.New(errors.ErrCodePredictionInputInvalid, "bid_amount must be positive")
	}
	if companyName == "" {
		return nil, errors.New(errors.ErrCodePredictionInputInvalid, "company_name must not be empty")
	}

	t, err := s.tenders.GetByID(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	comparables, stage := s.retriever.FindComparables(ctx, ComparableQuery{
		Prefecture:        t.Prefecture,
		UseType:           t.UseType,
		BidMethod:         t.BidMethod,
		FloorAreaM2:       t.FloorAreaM2,
		EstimatedPrice:    t.EstimatedPrice,
		ExcludeContractor: s.excludedContractor(companyName),
	})

	profile := s.fetchProfile(ctx, companyName)
	analysis := s.analyzeRisks(ctx, t, bidAmount, comparables, &profile)

	score := ComputeScore(ScoreInput{
		BidAmount:           bidAmount,
		Tender:              t,
		Comparables:         comparables,
		Profile:             &profile,
		AnnotatorAdjustment: analysis.ConfidenceAdjustment,
	})

	basis := buildBasis(bidAmount, t, comparables)

	riskNotes := analysis.RiskFactors
	if len(riskNotes) == 0 {
		riskNotes = fallbackRiskNotes(bidAmount, t, comparables)
	}

	result := &prediction.Result{
		TenderID:       t.ID,
		Title:          t.Title,
		Rank:           score.Rank,
		WinProbability: score.WinProbability,
		Confidence:     score.Confidence,
		Basis:          basis,
		JudgmentReason: judgmentReason(score, bidAmount, t, comparables, &profile),
		RiskNotes:      riskNotes,
		SimilarCases:   similarCaseSummaries(comparables),
		Recommendation: s.recommendation(ctx, t, score, basis, analysis, &profile),
		TopFactors:     topFactors(score.Rank, &profile),
	}

	s.recordSingle(result, stage, len(comparables), time.Since(start))
	s.publishCompleted(result, bidAmount)
	return result, nil
}

// fetchProfile degrades an aggregation failure to an empty profile so the
// evaluation proceeds without strength adjustments.
func (s *Service) fetchProfile(ctx context.Context, companyName string) company.Profile {
	profile, err := s.profiles.GetProfile(ctx, companyName)
	if err != nil {
		s.log.Warn("Profile aggregation failed, scoring without company strengths",
			logging.Err(err), logging.String("company", companyName))
		return company.BuildProfile(companyName, nil)
	}
	return profile
}

// analyzeRisks runs the annotator when enabled.  Every failure mode yields
// the neutral analysis; the caller never sees an error from this step.
func (s *Service) analyzeRisks(ctx context.Context, t *tender.Tender, bidAmount int64, comparables []Comparable, profile *company.Profile) *annotator.Analysis {
	if !s.annotator.Enabled() {
		return annotator.NeutralAnalysis()
	}

	stats := annotator.SampleStats{Count: len(comparables)}
	if len(comparables) > 0 {
		stats.Median = int64(medianAmount(comparables))
		stats.Min, stats.Max = amountRange(comparables)
		stats.AvgParticipants = avgParticipants(comparables)
	}

	start := time.Now()
	analysis, err := s.annotator.AnalyzeRisks(ctx, &annotator.AnalysisInput{
		Tender:    t,
		BidAmount: bidAmount,
		Sample:    stats,
		Profile:   profile,
	})
	s.recordAnnotator(err, time.Since(start))
	if err != nil {
		s.log.Warn("Annotator analysis failed, continuing heuristic-only",
			logging.Err(err), logging.String("tender_id", t.ID))
		return annotator.NeutralAnalysis()
	}
	return analysis
}

// recommendation prefers the model-generated text when an annotator is
// configured, falling back to the rank-keyed template on failure and to the
// minimal probability template when no annotator exists at all.
func (s *Service) recommendation(ctx context.Context, t *tender.Tender, score Score, basis prediction.Basis, analysis *annotator.Analysis, profile *company.Profile) string {
	if !s.annotator.Enabled() {
		return simpleRecommendation(score.WinProbability)
	}

	text, err := s.annotator.DetailedRecommendation(ctx, &annotator.RecommendationInput{
		Tender:   t,
		Rank:     score.Rank,
		WinProb:  score.WinProbability,
		Basis:    basis,
		Analysis: analysis,
		Profile:  profile,
	})
	if err != nil {
		s.log.Warn("Annotator recommendation failed, using template",
			logging.Err(err), logging.String("tender_id", t.ID))
		return annotator.FallbackRecommendation(score.Rank)
	}
	return text
}

func (s *Service) recordSingle(result *prediction.Result, stage string, sampleSize int, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.PredictionsTotal.WithLabelValues("single", string(result.Rank), string(result.Confidence)).Inc()
	s.metrics.PredictionDuration.WithLabelValues("single").Observe(elapsed.Seconds())
	s.metrics.ComparableSampleSize.WithLabelValues().Observe(float64(sampleSize))
	s.metrics.RetrievalStageReached.WithLabelValues(stage).Inc()
}

func (s *Service) recordAnnotator(err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	s.metrics.AnnotatorRequestsTotal.WithLabelValues(status).Inc()
	s.metrics.AnnotatorDuration.WithLabelValues().Observe(elapsed.Seconds())
}

func (s *Service) publishCompleted(result *prediction.Result, bidAmount int64) {
	if s.events == nil {
		return
	}
	env, err := kafka.NewEnvelope(kafka.EventPredictionCompleted, kafka.PredictionCompletedPayload{
		TenderID:       result.TenderID,
		BidAmount:      bidAmount,
		WinProbability: result.WinProbability,
		Rank:           string(result.Rank),
		Confidence:     string(result.Confidence),
	})
	if err != nil {
		s.log.Warn("Failed to build prediction event", logging.Err(err))
		return
	}
	s.events.PublishAsync(env)
}

func avgParticipants(comparables []Comparable) float64 {
	var sum, n int
	for _, c := range comparables {
		if c.ParticipantsCount != nil {
			sum += *c.ParticipantsCount
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
