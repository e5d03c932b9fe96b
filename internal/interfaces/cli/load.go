package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Allllisha/AI-Tender-Prediction/internal/application/ingest"
	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/postgres"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/postgres/repositories"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/messaging/kafka"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
)

// newImportService opens the database (and optionally Kafka) and builds the
// import service.  The returned cleanup closes both.
func newImportService(cfg *config.Config, log logging.Logger) (*ingest.Service, func(), error) {
	conn, err := postgres.NewConnection(cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	var events ingest.EventPublisher
	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafka.NewProducer(cfg.Kafka, nil, log)
		if err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("connecting to kafka: %w", err)
		}
		events = producer
	}

	svc := ingest.NewService(
		repositories.NewPostgresTenderRepo(conn, log),
		repositories.NewPostgresAwardRepo(conn, log),
		events,
		log,
	)
	cleanup := func() {
		if producer != nil {
			producer.Close()
		}
		conn.Close()
	}
	return svc, cleanup, nil
}

func newLoadAwardsCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load-awards <file.csv>",
		Short: "Load historical award records from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}

			svc, cleanup, err := newImportService(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			rows, err := svc.ImportAwards(cmd.Context(), f, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d award records\n", rows)
			return nil
		},
	}
}

func newLoadTendersCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load-tenders <file.json|file.csv>",
		Short: "Load open tenders from a JSON or CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}

			svc, cleanup, err := newImportService(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			asCSV := strings.EqualFold(filepath.Ext(args[0]), ".csv")
			rows, err := svc.ImportTenders(cmd.Context(), f, filepath.Base(args[0]), asCSV)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d tenders\n", rows)
			return nil
		},
	}
}
