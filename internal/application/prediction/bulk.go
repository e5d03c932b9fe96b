package prediction

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/prediction"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/messaging/kafka"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

// BulkRequest fans one pricing scenario out across the tenders matching the
// filter.  When UseRatio is set, BidAmount is a percentage of each tender's
// estimated price instead of a literal amount.
type BulkRequest struct {
	Filter      tender.Filter
	BidAmount   int64
	CompanyName string
	UseRatio    bool

	// MinPrice / MaxPrice drop candidates whose effective bid falls outside
	// the bounds.  Zero means unbounded on that side.
	MinPrice int64
	MaxPrice int64
}

// bulkCandidate is one tender surviving the cap and price filters, paired
// with its effective bid amount.
type bulkCandidate struct {
	tenderID  string
	bidAmount int64
}

// PredictBulk evaluates the pricing scenario against at most the configured
// number of candidate tenders concurrently and returns the results ordered
// by descending win probability.  A single candidate's failure drops that
// candidate, never the batch.
func (s *Service) PredictBulk(ctx context.Context, req BulkRequest) ([]prediction.Result, error) {
	start := time.Now()

	if req.BidAmount <= 0 {
		return nil, errors.New(errors.ErrCodeBulkRequestInvalid, "bid_amount must be positive")
	}
	if req.CompanyName == "" {
		return nil, errors.New(errors.ErrCodeBulkRequestInvalid, "company_name must not be empty")
	}

	tenders, err := s.tenders.Search(ctx, req.Filter)
	if err != nil {
		return nil, err
	}

	candidates := s.selectCandidates(tenders, req)
	if len(candidates) == 0 {
		return []prediction.Result{}, nil
	}

	results, failed := s.evaluateConcurrently(ctx, candidates, req.CompanyName)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].WinProbability > results[j].WinProbability
	})

	s.recordBulk(len(candidates), failed)
	s.publishBulkCompleted(len(candidates), len(results), failed)

	s.log.Info("Bulk evaluation completed",
		logging.Int("candidates", len(candidates)),
		logging.Int("evaluated", len(results)),
		logging.Int("failed", failed),
		logging.Duration("elapsed", time.Since(start)))
	return results, nil
}

// selectCandidates caps the tender list, resolves each effective bid, and
// applies the optional price-range filter.
func (s *Service) selectCandidates(tenders []tender.Tender, req BulkRequest) []bulkCandidate {
	maxCandidates := s.cfg.BulkMaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = config.DefaultBulkMaxCandidates
	}
	if len(tenders) > maxCandidates {
		tenders = tenders[:maxCandidates]
	}

	candidates := make([]bulkCandidate, 0, len(tenders))
	for _, t := range tenders {
		bid := req.BidAmount
		if req.UseRatio {
			bid = t.EstimatedPrice * req.BidAmount / 100
		}
		if req.MinPrice > 0 && bid < req.MinPrice {
			continue
		}
		if req.MaxPrice > 0 && bid > req.MaxPrice {
			continue
		}
		candidates = append(candidates, bulkCandidate{tenderID: t.ID, bidAmount: bid})
	}
	return candidates
}

// evaluateConcurrently runs the single-tender prediction for every candidate
// under a bounded worker pool, each task with its own timeout so one slow
// comparable query cannot stall the whole batch.
func (s *Service) evaluateConcurrently(ctx context.Context, candidates []bulkCandidate, companyName string) ([]prediction.Result, int) {
	concurrency := s.cfg.BulkConcurrency
	if concurrency <= 0 {
		concurrency = config.DefaultBulkConcurrency
	}
	if concurrency > len(candidates) {
		concurrency = len(candidates)
	}
	taskTimeout := s.cfg.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = config.DefaultTaskTimeout
	}

	var (
		mu      sync.Mutex
		results = make([]prediction.Result, 0, len(candidates))
		failed  int
		wg      sync.WaitGroup
		sem     = make(chan struct{}, concurrency)
	)

	for _, c := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(c bulkCandidate) {
			defer wg.Done()
			defer func() { <-sem }()

			taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
			defer cancel()

			result, err := s.PredictSingle(taskCtx, c.tenderID, c.bidAmount, companyName)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				s.log.Warn("Bulk candidate evaluation failed, dropping candidate",
					logging.Err(err), logging.String("tender_id", c.tenderID))
				return
			}
			results = append(results, *result)
		}(c)
	}
	wg.Wait()

	return results, failed
}

func (s *Service) recordBulk(candidates, failed int) {
	if s.metrics == nil {
		return
	}
	s.metrics.BulkCandidatesEvaluated.WithLabelValues().Observe(float64(candidates))
	if failed > 0 {
		s.metrics.BulkTaskFailures.WithLabelValues().Add(float64(failed))
	}
}

func (s *Service) publishBulkCompleted(requested, evaluated, failed int) {
	if s.events == nil {
		return
	}
	env, err := kafka.NewEnvelope(kafka.EventBulkPredictionCompleted, kafka.BulkPredictionCompletedPayload{
		Requested: requested,
		Evaluated: evaluated,
		Failed:    failed,
	})
	if err != nil {
		s.log.Warn("Failed to build bulk prediction event", logging.Err(err))
		return
	}
	s.events.PublishAsync(env)
}
