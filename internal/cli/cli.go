// internal/cli/cli.go
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/larderline/larder-backend/internal/config"
	"github.com/larderline/larder-backend/internal/logging"
	"github.com/larderline/larder-backend/internal/repository"
	"github.com/larderline/larder-backend/internal/services"
	"github.com/larderline/larder-backend/internal/utils"
)

type app struct {
	cfg    *config.Config
	driver string
	store  *repository.Store
}

// NewRootCommand builds the larderctl command tree. Configuration comes from the same
// environment as the API server; --driver overrides DB_DRIVER.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "larderctl",
		Short:         "Operate the larder inventory backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if a.driver != "" {
				cfg.Database.Driver = a.driver
			}
			logging.Configure(logrus.StandardLogger(), cfg.Log, cmd.ErrOrStderr())
			a.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.store != nil {
				a.store.Close()
				a.store = nil
			}
		},
	}
	root.PersistentFlags().StringVar(&a.driver, "driver", "", "storage driver: postgres|sqlite|memory")

	root.AddCommand(
		a.migrateCommand(),
		a.seedCommand(),
		a.summaryCommand(),
		a.analysisCommand(),
		a.reorderCommand(),
		a.tokenCommand(),
		a.auditCommand(),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	store, err := repository.Open(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	a.store = store
	return nil
}

func (a *app) requireSQL() error {
	if a.cfg.Database.Driver == "memory" {
		return fmt.Errorf("the memory driver has no schema to manage")
	}
	return nil
}

func (a *app) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSQL(); err != nil {
				return err
			}
			a.cfg.Database.AutoMigrate = true
			a.cfg.Database.Seed = false
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			logrus.WithField("driver", a.cfg.Database.Driver).Info("Migrations applied")
			return writeJSON(cmd.OutOrStdout(), map[string]string{"status": "migrated"})
		},
	}
}

func (a *app) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo house items and vendor selections into empty tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSQL(); err != nil {
				return err
			}
			a.cfg.Database.AutoMigrate = true
			a.cfg.Database.Seed = true
			if err := a.open(cmd.Context()); err != nil {
				return err
			}

			products, err := a.store.Products.FindAll(cmd.Context())
			if err != nil {
				return err
			}
			selections, err := a.store.Selections.FindAll(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]int{
				"house_items":       len(products),
				"vendor_selections": len(selections),
			})
		},
	}
}

func (a *app) summaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the inventory summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			summary, err := services.NewProductService(a.store.Products, nil).GetInventorySummary(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func (a *app) analysisCommand() *cobra.Command {
	var withRecommendations bool
	cmd := &cobra.Command{
		Use:   "analysis",
		Short: "Print the vendor selection analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			svc := services.NewVendorSelectionService(a.store.Selections, nil)

			analysis, err := svc.GetVendorSelectionAnalysis(cmd.Context())
			if err != nil {
				return err
			}
			if !withRecommendations {
				return writeJSON(cmd.OutOrStdout(), analysis)
			}

			recommendations, err := svc.GetSelectionRecommendations(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"analysis":        analysis,
				"recommendations": recommendations,
			})
		},
	}
	cmd.Flags().BoolVar(&withRecommendations, "recommendations", false, "include selection recommendations")
	return cmd
}

func (a *app) reorderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder",
		Short: "Print the reorder list for active items below par",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			list, err := services.NewProductService(a.store.Products, nil).GetReorderList(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), list)
		},
	}
}

func (a *app) tokenCommand() *cobra.Command {
	var (
		subject string
		email   string
		name    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for the override endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			if ttl <= 0 {
				ttl = a.cfg.AccessTokenTTL()
			}

			utils.SetJWTSecret(a.cfg.JWT.SecretKey)
			utils.SetJWTIssuer(a.cfg.JWT.Issuer)
			token, err := utils.GenerateJWT(subject, email, name, ttl)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"access_token": token,
				"token_type":   "Bearer",
				"expires_in":   int64(ttl.Seconds()),
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "user id placed in the sub claim")
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&name, "name", "", "display name recorded as the override author")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_ACCESS_TTL_MINUTES)")
	return cmd
}

func (a *app) auditCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Print the most recent audited API mutations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSQL(); err != nil {
				return err
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			entries, err := a.store.Audit.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries, newest first")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
