// Command admin is the operator tool for the ventas service: it applies
// migrations, inspects a salesperson's lockout and lifts a block.
package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/ventas/internal/buildinfo"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath     string
	dsn            string
	lockoutBackend string
}

// args turns the set flags into the argument list config.Load understands.
func (f *rootFlags) args() []string {
	var out []string
	if f.configPath != "" {
		out = append(out, "-c", f.configPath)
	}
	if f.dsn != "" {
		out = append(out, "-d", f.dsn)
	}
	if f.lockoutBackend != "" {
		out = append(out, "-l", f.lockoutBackend)
	}
	return out
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "Operator tool for the ventas service",
		Version:       buildinfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "JSON config file")
	pf.StringVarP(&flags.dsn, "dsn", "d", "", "PostgreSQL DSN (overrides DATABASE_URL)")
	pf.StringVarP(&flags.lockoutBackend, "lockout-backend", "l", "", "lockout backend: postgres, redis or bolt")

	rootCmd.AddCommand(migrateCmd(flags))
	rootCmd.AddCommand(statusCmd(flags))
	rootCmd.AddCommand(unblockCmd(flags))

	return rootCmd
}
