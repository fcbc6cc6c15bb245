package main

import (
	"fmt"
	"strconv"

	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/repository"
	"agora/internal/seed"
	"agora/internal/service"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply schema changes according to DB_SCHEMA_MODE",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), bootstrap.Options{}, func(cfg *config.Config, rt *bootstrap.Runtime) error {
				if err := database.ApplySchema(cmd.Context(), rt.DB, cfg); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ schema applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema policy and pending SQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), bootstrap.Options{}, func(cfg *config.Config, rt *bootstrap.Runtime) error {
				status, err := database.GetSchemaStatus(cmd.Context(), rt.DB, cfg)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
					status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
					len(status.AppliedVersions), len(status.PendingMigrations))
				for _, m := range status.PendingMigrations {
					fmt.Fprintf(out, "pending: %s\n", m.String())
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down <version>",
		Short: "Roll back one SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return withRuntime(cmd.Context(), bootstrap.Options{}, func(_ *config.Config, rt *bootstrap.Runtime) error {
				if err := database.RollbackMigration(cmd.Context(), rt.DB, version); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ rolled back migration %d\n", version)
				return nil
			})
		},
	})
	return cmd
}

func newSeedCmd() *cobra.Command {
	opts := seed.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), bootstrap.Options{ApplySchema: true}, func(_ *config.Config, rt *bootstrap.Runtime) error {
				sum, err := seed.Seed(cmd.Context(), rt.DB, opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ seeded %d users, %d posts, %d books, %d libraries\n",
					sum.Users, sum.Posts, sum.Books, sum.Libraries)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.NumUsers, "users", opts.NumUsers, "number of users")
	f.IntVar(&opts.NumPosts, "posts", opts.NumPosts, "number of posts")
	f.IntVar(&opts.NumAuthors, "authors", opts.NumAuthors, "number of authors")
	f.IntVar(&opts.BooksPerAuthor, "books-per-author", opts.BooksPerAuthor, "books written by each author")
	f.IntVar(&opts.NumLibraries, "libraries", opts.NumLibraries, "number of libraries")
	f.IntVar(&opts.MaxDays, "max-days", opts.MaxDays, "spread post dates over this many days")
	f.BoolVar(&opts.ShouldClean, "clean", false, "delete existing rows first")
	f.BoolVar(&opts.SkipBcrypt, "fast", false, "hash passwords with the minimum bcrypt cost")
	f.BoolVar(&opts.DryRun, "dry-run", false, "build everything without writing")
	f.Int64Var(&opts.RandSeed, "rand-seed", 0, "random seed; 0 uses the clock")
	return cmd
}

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage permission groups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Write the built-in permission groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), bootstrap.Options{SyncGroups: true}, func(_ *config.Config, _ *bootstrap.Runtime) error {
				fmt.Fprintln(cmd.OutOrStdout(), "✓ permission groups synced")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List permission groups and their codenames",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), bootstrap.Options{}, func(_ *config.Config, rt *bootstrap.Runtime) error {
				perms := service.NewPermissionService(repository.NewUserRepository(rt.DB, nil), repository.NewGroupRepository(rt.DB))
				groups, err := perms.ListGroups(cmd.Context())
				if err != nil {
					return err
				}
				for _, g := range groups {
					codes := make([]string, 0, len(g.Permissions))
					for _, p := range g.Permissions {
						codes = append(codes, p.Codename)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", g.Name, codes)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <group> <user_id>",
		Short: "Add a user to a permission group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[1])
			if err != nil {
				return err
			}
			return withRuntime(cmd.Context(), bootstrap.Options{}, func(_ *config.Config, rt *bootstrap.Runtime) error {
				perms := service.NewPermissionService(repository.NewUserRepository(rt.DB, nil), repository.NewGroupRepository(rt.DB))
				if err := perms.AddMember(cmd.Context(), args[0], userID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ user %d added to %s\n", userID, args[0])
				return nil
			})
		},
	})
	return cmd
}

func newPromoteCmd(promote bool) *cobra.Command {
	use, short, verb := "demote <user_id>", "Revoke admin rights", "demoted from"
	if promote {
		use, short, verb = "promote <user_id>", "Grant admin rights", "promoted to"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withRuntime(cmd.Context(), bootstrap.Options{}, func(_ *config.Config, rt *bootstrap.Runtime) error {
				users := service.NewUserService(repository.NewUserRepository(rt.DB, nil))
				user, err := users.SetAdmin(cmd.Context(), userID, promote)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ %s (ID: %d) %s admin\n", user.Username, user.ID, verb)
				return nil
			})
		},
	}
}

func newListAdminsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-admins",
		Short: "List admin accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), bootstrap.Options{}, func(_ *config.Config, rt *bootstrap.Runtime) error {
				admins, err := service.NewUserService(repository.NewUserRepository(rt.DB, nil)).ListAdmins(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(admins) == 0 {
					fmt.Fprintln(out, "No admins found")
					return nil
				}
				for _, a := range admins {
					fmt.Fprintf(out, "ID: %d | Username: %s | Email: %s\n", a.ID, a.Username, a.Email)
				}
				return nil
			})
		},
	}
}

func parseUserID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", arg)
	}
	return uint(id), nil
}
