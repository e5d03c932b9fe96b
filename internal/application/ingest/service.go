// Package ingest loads historical award records and open tenders from the
// upstream batch exports into the database.  Loading is idempotent at the
// repository level; re-running an import skips rows that already exist.
package ingest

import (
	"context"
	"io"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/messaging/kafka"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
)

const (
	awardBatchSize  = 100
	tenderBatchSize = 1000
)

// EventPublisher publishes import lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, env *kafka.EventEnvelope) error
}

// Service streams parsed records into the repositories in fixed-size batches.
type Service struct {
	tenders tender.TenderRepository
	awards  tender.AwardRepository
	events  EventPublisher
	log     logging.Logger
}

// NewService wires the import service.  events may be nil when no broker is
// configured.
func NewService(tenders tender.TenderRepository, awards tender.AwardRepository, events EventPublisher, log logging.Logger) *Service {
	return &Service{
		tenders: tenders,
		awards:  awards,
		events:  events,
		log:     log.Named("application.ingest"),
	}
}

// ImportAwards parses the CSV stream and inserts the award records.  It
// returns the number of rows handed to the repository.
func (s *Service) ImportAwards(ctx context.Context, r io.Reader, source string) (int, error) {
	awards, err := ReadAwardsCSV(r)
	if err != nil {
		return 0, err
	}

	total := 0
	for start := 0; start < len(awards); start += awardBatchSize {
		end := start + awardBatchSize
		if end > len(awards) {
			end = len(awards)
		}
		if err := s.awards.BulkInsert(ctx, awards[start:end]); err != nil {
			return total, err
		}
		total = end
		s.log.Debug("Inserted award batch", logging.Int("rows", total))
	}

	s.log.Info("Award import finished",
		logging.String("source", source),
		logging.Int("rows", total))
	s.publish(ctx, kafka.EventAwardsImported, source, total)
	return total, nil
}

// ImportTenders parses the stream and upserts the open tenders.  asCSV
// selects the CSV reader; otherwise the stream is decoded as the JSON export.
func (s *Service) ImportTenders(ctx context.Context, r io.Reader, source string, asCSV bool) (int, error) {
	var (
		tenders []tender.Tender
		err     error
	)
	if asCSV {
		tenders, err = ReadTendersCSV(r)
	} else {
		tenders, err = ReadTendersJSON(r)
	}
	if err != nil {
		return 0, err
	}

	total := 0
	for start := 0; start < len(tenders); start += tenderBatchSize {
		end := start + tenderBatchSize
		if end > len(tenders) {
			end = len(tenders)
		}
		if err := s.tenders.BulkUpsert(ctx, tenders[start:end]); err != nil {
			return total, err
		}
		total = end
		s.log.Debug("Upserted tender batch", logging.Int("rows", total))
	}

	s.log.Info("Tender import finished",
		logging.String("source", source),
		logging.Int("rows", total))
	s.publish(ctx, kafka.EventTendersImported, source, total)
	return total, nil
}

func (s *Service) publish(ctx context.Context, eventType, source string, rows int) {
	if s.events == nil {
		return
	}
	env, err := kafka.NewEnvelope(eventType, kafka.ImportCompletedPayload{Source: source, Rows: rows})
	if err != nil {
		s.log.Warn("Building import event failed", logging.Err(err))
		return
	}
	if err := s.events.Publish(ctx, env); err != nil {
		s.log.Warn("Publishing import event failed", logging.Err(err))
	}
}
