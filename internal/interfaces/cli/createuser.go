package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	appCompany "github.com/Allllisha/AI-Tender-Prediction/internal/application/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/auth"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/postgres"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/postgres/repositories"
)

func newCreateUserCmd(opts *RootOptions) *cobra.Command {
	var (
		code     string
		name     string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a company account for API access",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}

			conn, err := postgres.NewConnection(cfg.Database, log)
			if err != nil {
				return fmt.Errorf("connecting to postgres: %w", err)
			}
			defer conn.Close()

			tokens, err := auth.NewTokenManager(cfg.Auth)
			if err != nil {
				return fmt.Errorf("building token manager: %w", err)
			}

			accounts := repositories.NewPostgresAccountRepo(conn, log)
			svc := appCompany.NewAuthService(accounts, tokens, log)

			account, err := svc.Register(cmd.Context(), code, name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created account %d (%s)\n", account.ID, account.Email)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&code, "code", "", "company code (e.g. DEMO001)")
	f.StringVar(&name, "name", "", "company name")
	f.StringVar(&email, "email", "", "login email")
	f.StringVar(&password, "password", "", "login password")
	cmd.MarkFlagRequired("code")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}
