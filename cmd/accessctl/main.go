package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"saeta-access/internal/adapters/persistence/models"
	"saeta-access/internal/adapters/persistence/repositories"
	"saeta-access/internal/config"
	"saeta-access/internal/core/domain"
	"saeta-access/internal/core/services"
	"saeta-access/internal/pkg/clock"
	"saeta-access/internal/pkg/jwt"
	"saeta-access/internal/pkg/logger"
	"saeta-access/internal/pkg/password"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env holds what every subcommand needs once PersistentPreRunE ran
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func (e *env) connect() error {
	if e.db != nil {
		return nil
	}
	db, err := config.ConnectDatabase(e.cfg, e.log)
	if err != nil {
		return err
	}
	e.db = db
	return nil
}

func (e *env) services() (*services.Container, error) {
	if err := e.connect(); err != nil {
		return nil, err
	}
	return services.NewContainer(repositories.NewStore(e.db), e.cfg.Access, clock.Real(), e.log), nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func main() {
	e := &env{}
	var logLevel string

	root := &cobra.Command{
		Use:           "accessctl",
		Short:         "Operator CLI for the access control service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel == "" {
				logLevel = cfg.LogLevel
			}
			e.cfg = cfg
			e.log = logger.New(cfg.AppMode, logLevel)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.db != nil {
				_ = config.CloseDatabase()
			}
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (env LOG_LEVEL)")

	// migrate
	var seed bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.connect(); err != nil {
				return err
			}
			if err := models.AutoMigrate(e.db); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			fmt.Println("migration completed")
			if !seed {
				return nil
			}
			if err := config.NewSeeder(e.db, e.cfg, e.log).Run(); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Println("seed completed")
			return nil
		},
	}
	migrateCmd.Flags().BoolVar(&seed, "seed", false, "Also seed zones, profiles and, in dev mode, sample users")

	// sweep
	var job string
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the expiry sweeps once",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services()
			if err != nil {
				return err
			}
			ctx := context.Background()

			var reports []services.SweepReport
			switch job {
			case "all", "":
				reports = svc.Sweeps.RunExpirySweeps(ctx)
			case services.JobDemotion:
				reports = []services.SweepReport{svc.Sweeps.RunDemotionSweep(ctx)}
			case services.JobExpiryWarning:
				reports = []services.SweepReport{svc.Sweeps.RunExpiryWarningSweep(ctx)}
			default:
				return fmt.Errorf("unknown --job %q (all|%s|%s)", job, services.JobDemotion, services.JobExpiryWarning)
			}
			return printJSON(reports)
		},
	}
	sweepCmd.Flags().StringVar(&job, "job", "all", "Sweep to run: all|demotion|expiry_warning")

	// operator-token
	var (
		tokUserID   uint
		tokUsername string
		tokRole     string
		tokMinutes  int
	)
	tokenCmd := &cobra.Command{
		Use:   "operator-token",
		Short: "Sign an operator access token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			role := domain.Role(strings.ToUpper(tokRole))
			switch role {
			case domain.RoleAdmin, domain.RoleOperator, domain.RoleUser:
			default:
				return fmt.Errorf("--role must be ADMIN, OPERATOR or USER")
			}
			if tokUserID == 0 {
				return fmt.Errorf("--user-id is required")
			}
			if tokMinutes <= 0 {
				tokMinutes = e.cfg.JWT.AccessTokenMins
			}
			token, err := jwt.GenerateAccessToken(tokUserID, tokUsername, string(role), e.cfg.JWT.Secret, tokMinutes)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().UintVar(&tokUserID, "user-id", 0, "User ID carried in the token")
	tokenCmd.Flags().StringVar(&tokUsername, "username", "", "Username carried in the token")
	tokenCmd.Flags().StringVar(&tokRole, "role", string(domain.RoleOperator), "ADMIN|OPERATOR|USER")
	tokenCmd.Flags().IntVar(&tokMinutes, "minutes", 0, "Lifetime in minutes (env ACCESS_TOKEN_MINUTES)")

	// scanner add
	scannerCmd := &cobra.Command{
		Use:   "scanner",
		Short: "Manage checkpoint scanners",
	}
	var scLocation, scKey string
	scannerAddCmd := &cobra.Command{
		Use:   "add <scanner-id>",
		Short: "Register a scanner and print its key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services()
			if err != nil {
				return err
			}
			key := scKey
			if key == "" {
				if key, err = password.GenerateKey(24); err != nil {
					return err
				}
			}
			scanner, err := svc.Scanners.Register(context.Background(), args[0], scLocation, key)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"scanner_id": scanner.ID,
				"location":   scanner.Location,
				"key":        key,
			})
		},
	}
	scannerAddCmd.Flags().StringVar(&scLocation, "location", "", "Where the scanner is installed")
	scannerAddCmd.Flags().StringVar(&scKey, "key", "", "Scanner key (generated when empty)")
	scannerCmd.AddCommand(scannerAddCmd)

	root.AddCommand(migrateCmd, sweepCmd, tokenCmd, scannerCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
