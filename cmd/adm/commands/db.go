// Package commands provides CLI commands for the admin tool
package commands

import (
	"fmt"
	"slices"

	"triviaapi/internal/database"
	contextutils "triviaapi/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(rt *Runtime) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the trivia API.

Available commands:
  migrate   - Apply or roll back schema migrations
  seed      - Load categories and questions from a YAML file
  stats     - Show question and category counts
  reset     - Delete every question and category`,
	}

	dbCmd.AddCommand(migrateCmd(rt))
	dbCmd.AddCommand(seedCmd(rt))
	dbCmd.AddCommand(statsCmd(rt))
	dbCmd.AddCommand(resetCmd(rt))

	return dbCmd
}

// migrateCmd returns the migrate command
func migrateCmd(rt *Runtime) *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		Long: `Apply every pending schema migration.

Use --down N to roll back N migrations instead; --down -1 rolls back everything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := rt.DB(ctx, false)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("down") {
				steps := down
				if steps < 0 {
					steps = 0
				}
				if err := rt.DBManager.MigrateDown(ctx, db, steps); err != nil {
					return err
				}
			} else if err := rt.DBManager.RunMigrations(ctx, db); err != nil {
				return err
			}

			version, dirty, applied, err := rt.DBManager.MigrationVersion(ctx, db)
			if err != nil {
				return err
			}
			if !applied {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema version: none")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}

	cmd.Flags().IntVar(&down, "down", 0, "Roll back this many migrations (-1 for all)")

	return cmd
}

// seedCmd returns the seed command
func seedCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file.yaml]",
		Short: "Load categories and questions",
		Long: `Upsert categories and questions from a YAML seed file.

Without a file the bundled data set of six categories and nineteen questions is loaded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			seed := database.DefaultSeed()
			source := "bundled"
			if len(args) == 1 {
				loaded, err := database.LoadSeedFile(args[0])
				if err != nil {
					return err
				}
				seed = loaded
				source = args[0]
			}

			db, err := rt.DB(ctx, true)
			if err != nil {
				return err
			}
			if err := rt.DBManager.Seed(ctx, db, seed); err != nil {
				return err
			}

			rt.Logger.Info(ctx, "Seed data loaded", map[string]interface{}{"source": source})
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories and %d questions from %s\n",
				len(seed.Categories), len(seed.Questions), source)
			return nil
		},
	}
}

// statsCmd returns the stats command
func statsCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long:  `Show category and question counts, questions per category and pool usage.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := rt.DB(ctx, false)
			if err != nil {
				return err
			}

			rt.Logger.Info(ctx, "Diagnostic info", map[string]interface{}{"database": getDatabaseInfo(ctx, db)})

			stats, err := rt.DBManager.Stats(ctx, db)
			if err != nil {
				return contextutils.WrapError(err, "failed to get database statistics")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Categories: %d\n", stats.Categories)
			fmt.Fprintf(out, "Questions:  %d\n", stats.Questions)

			categoryIDs := make([]int, 0, len(stats.QuestionsByCategory))
			for id := range stats.QuestionsByCategory {
				categoryIDs = append(categoryIDs, id)
			}
			slices.Sort(categoryIDs)
			for _, id := range categoryIDs {
				fmt.Fprintf(out, "  category %-4d %d\n", id, stats.QuestionsByCategory[id])
			}
			if stats.Uncategorized > 0 {
				fmt.Fprintf(out, "  uncategorized %d\n", stats.Uncategorized)
			}
			fmt.Fprintf(out, "Open connections: %d (in use %d)\n", stats.Pool.OpenConnections, stats.Pool.InUse)
			return nil
		},
	}
}

// resetCmd returns the reset command
func resetCmd(rt *Runtime) *cobra.Command {
	var yes, reseed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every question and category",
		Long: `Truncate both trivia tables and restart their id sequences.

Asks for confirmation unless --yes is given. Use --seed to load the bundled data set afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !yes {
				ok, err := rt.confirm(cmd.OutOrStdout(),
					fmt.Sprintf("Delete all trivia data in %s?", contextutils.MaskDatabaseURL(rt.Config.Database.URL)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			db, err := rt.DB(ctx, true)
			if err != nil {
				return err
			}
			if err := rt.DBManager.Reset(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Trivia tables reset")

			if reseed {
				if err := rt.DBManager.Seed(ctx, db, database.DefaultSeed()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Bundled seed data loaded")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().BoolVar(&reseed, "seed", false, "Load the bundled seed data after the reset")

	return cmd
}
