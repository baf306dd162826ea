package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hrdocs/internal/domain/compensation"
	"hrdocs/internal/domain/employees"
	"hrdocs/internal/domain/letters"
	"hrdocs/internal/platform/auth"
	"hrdocs/internal/platform/config"
	"hrdocs/internal/platform/db"
	"hrdocs/internal/platform/logger"
	"hrdocs/internal/platform/money"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hrctl",
		Short:         "Operator tools for the HR letter desk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newImportCmd(), newHashPasswordCmd(), newTokenCmd(), newPreviewCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if dir == "" {
				dir = cfg.MigrationsDir
			}
			pool, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()

			applied, err := db.Migrate(cmd.Context(), pool, dir)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default MIGRATIONS_DIR)")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Bulk import employees from an .xlsx or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logger.New(cfg.Environment, cfg.LogLevel)

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			pool, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()

			svc := employees.NewService(employees.NewStore(pool), calculator(cfg), log)
			res, err := svc.Import(cmd.Context(), filepath.Base(args[0]), file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d employee(s)\n", res.Imported)
			for _, msg := range res.Messages() {
				fmt.Fprintln(cmd.OutOrStdout(), "  "+msg)
			}
			return nil
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password PASSWORD",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token EMAIL",
		Short: "Issue an API token signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := auth.GenerateToken(cfg.JWTSecret, auth.Claims{
				Email: strings.ToLower(strings.TrimSpace(args[0])),
				Role:  auth.RoleHR,
			}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", auth.TokenTTL, "token lifetime")
	return cmd
}

// newPreviewCmd renders a template letter offline, without the database or
// the remote generator.
func newPreviewCmd() *cobra.Command {
	var (
		name, role, department, employment, joining string
		cost                                        float64
	)
	cmd := &cobra.Command{
		Use:   "preview TYPE",
		Short: "Render a template letter for sample employee data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := compensation.Validate(cost); err != nil {
				return err
			}
			cfg := config.Load()
			engine, err := letters.NewEngine()
			if err != nil {
				return err
			}
			b := calculator(cfg).Decompose(cost)
			format := func(v float64) string { return money.Format(cfg.CurrencyCode, v) }
			if joining == "" {
				joining = time.Now().Format("2006-01-02")
			}

			text, err := engine.Render(args[0], letters.DocumentContext{
				Name:           name,
				Role:           role,
				Department:     department,
				JoiningDate:    joining,
				EmploymentType: employment,
				Today:          time.Now().Format("2006-01-02"),
				CompanyName:    cfg.CompanyName,
				CompanyAddress: cfg.CompanyAddress,
				CompanyContact: cfg.CompanyContact,
				AnnualCost:     b.AnnualCost,
				CTC:            format(b.AnnualCost),
				Basic:          format(b.Basic),
				HRA:            format(b.HRA),
				Allowance:      format(b.SpecialAllowance),
				ProvidentFund:  format(b.ProvidentFund),
				Deductions:     format(b.Deductions),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Asha Rao", "employee name")
	cmd.Flags().StringVar(&role, "role", "Software Engineer", "designation")
	cmd.Flags().StringVar(&department, "department", "Engineering", "department")
	cmd.Flags().StringVar(&employment, "employment-type", "Full-time", "employment type")
	cmd.Flags().StringVar(&joining, "joining-date", "", "joining date, YYYY-MM-DD (default today)")
	cmd.Flags().Float64Var(&cost, "cost", 600000, "annual cost to company")
	return cmd
}

func calculator(cfg config.Config) *compensation.Calculator {
	policy := compensation.DefaultPolicy()
	policy.ProfessionalTax = cfg.ProfessionalTax
	return compensation.NewCalculator(policy)
}
