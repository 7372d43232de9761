package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/leo-Leon1d/gantt-chart/internal/config"
	"github.com/leo-Leon1d/gantt-chart/internal/live"
	"github.com/leo-Leon1d/gantt-chart/internal/loader"
	"github.com/leo-Leon1d/gantt-chart/internal/project"
	"github.com/leo-Leon1d/gantt-chart/internal/reporter"
	"github.com/leo-Leon1d/gantt-chart/internal/store"
	"github.com/leo-Leon1d/gantt-chart/internal/ui"
)

var (
	flagConfig string
	flagJSON   bool
	flagStart  string
)

func main() {
	// A .env file is optional; environment wins either way.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gantt",
		Short: "Calendar-aware project scheduling from a task dependency graph",
		Long: `Gantt reads a project description (tasks, dependencies, resources and
working calendars), orders the tasks topologically, and projects start
and end dates that respect work hours, weekends, holidays and resource
availability.`,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default .gantt/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(treeCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		return config.LoadFile(flagConfig)
	}
	return config.Load()
}

// loadProject is shared logic for all commands taking a project file.
func loadProject(path string, cfg *config.Config) (*project.Project, error) {
	p, err := loader.LoadWith(path, loader.Defaults{
		StartHour: cfg.WorkStartHour,
		EndHour:   cfg.WorkEndHour,
		Weekends:  cfg.Weekends,
	})
	if err != nil {
		return nil, err
	}

	if flagStart != "" {
		at, err := time.Parse(time.RFC3339, flagStart)
		if err != nil {
			return nil, fmt.Errorf("parse --start: %w", err)
		}
		p.SetEstimatedStart(at)
	}
	return p, nil
}

func scheduleCmd() *cobra.Command {
	var flagArchive bool

	cmd := &cobra.Command{
		Use:   "schedule <project.json>",
		Short: "Compute and display the project schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := loadProject(args[0], cfg)
			if err != nil {
				return err
			}

			if err := p.CalculateSchedule(); err != nil {
				if errors.Is(err, project.ErrNoAnchor) {
					return fmt.Errorf("%w (set startDate in the project file or pass --start)", err)
				}
				return err
			}

			rpt := reporter.New(p)
			if flagJSON {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else if err := rpt.PrintSchedule(os.Stdout); err != nil {
				return err
			}

			if flagArchive {
				if cfg.DatabaseURL == "" {
					return fmt.Errorf("--archive needs a database: set database_url or GANTT_DATABASE_URL")
				}
				id := uuid.NewString()
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				st, err := store.Open(ctx, cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.Archive(ctx, id, p); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "📦 Archived schedule %s\n", ui.Dim(id))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagStart, "start", "", "Schedule anchor (RFC 3339), overrides the project file")
	cmd.Flags().BoolVar(&flagArchive, "archive", false, "Archive the schedule to PostgreSQL")

	return cmd
}

func treeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <project.json>",
		Short: "Display the task hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := loadProject(args[0], cfg)
			if err != nil {
				return err
			}
			reporter.New(p).PrintTree(os.Stdout)
			return nil
		},
	}
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <project.json>",
		Short: "Check a project file for structural problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := loadProject(args[0], cfg)
			if err != nil {
				return err
			}

			sorted, err := p.SortedTasks()
			if err != nil {
				return err
			}

			unassigned := 0
			for _, t := range sorted {
				if t.Resource() == nil {
					unassigned++
				}
			}

			fmt.Printf("%s %s: %d tasks, %d resources",
				ui.Green("✓"), ui.Bold(p.Name), len(sorted), len(p.Resources()))
			if unassigned > 0 {
				fmt.Printf(", %s", ui.Yellow(fmt.Sprintf("%d unassigned", unassigned)))
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Args = cobra.ExactArgs(1)
	return cmd
}

func historyCmd() *cobra.Command {
	var flagLimit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List schedules archived with schedule --archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("history needs a database: set database_url or GANTT_DATABASE_URL")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			st, err := store.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.History(ctx, flagLimit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println(ui.Dim("No archived schedules."))
				return nil
			}

			for _, r := range runs {
				anchor := "-"
				if r.Anchor != nil {
					anchor = r.Anchor.Format("Mon 02 Jan 15:04")
				}
				fmt.Printf("%s  %-20s %s  [%s]  %s\n",
					ui.Dim(r.ID), ui.Bold(r.Project), anchor,
					r.Span, ui.Dim(r.CreatedAt.Format(time.RFC3339)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum number of runs to list")

	return cmd
}

func runCmd() *cobra.Command {
	var flagSpeedup float64
	var flagQuiet bool

	cmd := &cobra.Command{
		Use:   "run <project.json>",
		Short: "Replay the schedule with simulated execution",
		Long: `Computes the schedule, then drives every task through its lifecycle
against a compressed clock: tasks start when their dependencies complete
and their resource frees up. Progress is persisted to .gantt/state.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := loadProject(args[0], cfg)
			if err != nil {
				return err
			}
			if err := p.CalculateSchedule(); err != nil {
				return err
			}

			speedup := cfg.Speedup
			if flagSpeedup > 0 {
				speedup = flagSpeedup
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Fprintf(os.Stderr, "\n🛑 %s\n", ui.Yellow("Received interrupt, cancelling..."))
				cancel()
			}()

			if !flagJSON {
				ui.PrintLogo()
			}

			out := os.Stderr
			runner := live.New(p, speedup, out)
			if flagQuiet {
				runner = live.New(p, speedup, nil)
			}

			rpt := reporter.New(p)
			if err := runner.Run(ctx); err != nil {
				fmt.Fprintln(os.Stderr, rpt.Summary())
				return err
			}
			fmt.Println(rpt.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&flagStart, "start", "", "Schedule anchor (RFC 3339), overrides the project file")
	cmd.Flags().Float64Var(&flagSpeedup, "speedup", 0, "Scheduled seconds per wall second (overrides config)")
	cmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress per-task progress output")

	return cmd
}
