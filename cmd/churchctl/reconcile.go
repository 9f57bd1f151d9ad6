package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/church-admin-api/internal/app"
	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/pkg/config"
	"github.com/noah-isme/church-admin-api/pkg/logger"
)

func reconcileCmd() *cobra.Command {
	var (
		userID     string
		maxAgeDays int
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Poll the PSP for pending PIX charges and apply their final status",
		Long: `Runs one reconciliation batch on behalf of an existing user.
The user must hold offerings:write. The report is printed as JSON.
Requires PIX_PROVIDER=http: simulated charges live inside the API process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runReconcile(ctx, userID, maxAgeDays)
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "id of the user triggering the run")
	cmd.Flags().IntVar(&maxAgeDays, "max-age-days", 0, "only charges created within this many days (0 uses RECONCILE_MAX_AGE_DAYS)")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func runReconcile(ctx context.Context, userID string, maxAgeDays int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := requireRemoteProvider(cfg); err != nil {
		return err
	}

	application, err := app.New(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer application.Close() //nolint:errcheck

	user, err := application.Users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %s: %w", userID, err)
	}
	if !user.Active {
		return fmt.Errorf("user %s is inactive", userID)
	}
	actor := &authz.Actor{UserID: user.ID, Email: user.Email, Role: user.Role}

	application.Notifications.Start(ctx)
	defer func() {
		if err := application.Notifications.Stop(context.Background()); err != nil {
			logr.Warn("notification drain", zap.Error(err))
		}
	}()

	report, err := application.Reconciliation.Run(ctx, actor, maxAgeDays)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// requireRemoteProvider rejects the in-memory simulator, whose charges exist
// only in the API process that issued them.
func requireRemoteProvider(cfg *config.Config) error {
	if cfg.Pix.Provider != config.PixProviderHTTP {
		return fmt.Errorf("reconcile requires PIX_PROVIDER=%s, got %q", config.PixProviderHTTP, cfg.Pix.Provider)
	}
	return nil
}
