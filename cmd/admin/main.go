// Command agora-admin runs maintenance tasks against the Agora database:
// schema migrations, demo seeding, permission groups and admin accounts.
package main

import (
	"context"
	"fmt"
	"os"

	"agora/internal/bootstrap"
	"agora/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agora-admin",
		Short:         "Agora maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newGroupsCmd(),
		newPromoteCmd(true),
		newPromoteCmd(false),
		newListAdminsCmd(),
	)
	return root
}

// withRuntime loads configuration, opens the database and runs fn.
func withRuntime(ctx context.Context, opts bootstrap.Options, fn func(*config.Config, *bootstrap.Runtime) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts.SkipRedis = true
	rt, err := bootstrap.InitRuntime(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(cfg, rt)
}
