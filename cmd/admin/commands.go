package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ventas/internal/common"
	"github.com/dmitrijs2005/ventas/internal/server"
	"github.com/dmitrijs2005/ventas/internal/server/config"
	"github.com/dmitrijs2005/ventas/internal/server/lockout"
	"github.com/dmitrijs2005/ventas/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ventas/internal/server/services"
	"github.com/spf13/cobra"
)

// openAdmin loads configuration and builds the admin service. The lockout
// store is opened only when withStore is set. The returned func releases
// every resource it opened.
func openAdmin(ctx context.Context, flags *rootFlags, withStore bool) (*services.AdminService, func(), error) {
	cfg, err := config.Load(flags.args())
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	db, err := server.OpenDB(ctx, cfg.DatabaseDSN, cfg.ExternalCallTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}

	var (
		store      lockout.Store
		closeStore = func() {}
	)
	// postgres state is read and cleared inside the service's own queries
	if withStore && cfg.LockoutBackend != config.LockoutBackendPostgres {
		store, closeStore, err = server.OpenLockoutStore(ctx, cfg, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, explainStoreError(err, cfg)
		}
	}

	svc := services.NewAdminService(db, repomanager.NewPostgresRepositoryManager(), store)
	return svc, func() {
		closeStore()
		_ = db.Close()
	}, nil
}

// explainStoreError tells the operator what to do when the bolt file is
// still held by the running server.
func explainStoreError(err error, cfg *config.Config) error {
	if errors.Is(err, common.ErrLockoutStoreInUse) {
		return fmt.Errorf("lockout store: %s is locked by the running server; "+
			"stop the server before using the admin commands with the bolt backend: %w", cfg.BoltPath, err)
	}
	return fmt.Errorf("lockout store: %w", err)
}

func migrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openAdmin(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := svc.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func statusCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status <vendedor>",
		Short: "Show the lockout state of a salesperson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openAdmin(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer closeFn()

			st, err := svc.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printStatus(cmd, args[0], st, asJSON)
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

func printStatus(cmd *cobra.Command, seller string, st *services.SellerStatus, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Fprintf(out, "Vendedor:          %s\n", seller)
	fmt.Fprintf(out, "Failed attempts:   %d\n", st.Lockout.FailedAttempts)
	fmt.Fprintf(out, "Blocked:           %t\n", st.Lockout.IsBlocked)
	if st.Lockout.LastFailureAt != nil {
		fmt.Fprintf(out, "Last failure:      %s\n", st.Lockout.LastFailureAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(out, "On blocked list:   %t\n", st.ListBlocked)
	return nil
}

func unblockCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <vendedor>",
		Short: "Clear the failure counter and remove the salesperson from the blocked list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openAdmin(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := svc.Unblock(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("unblock %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s unblocked\n", args[0])
			return nil
		},
	}
}
