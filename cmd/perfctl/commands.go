package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-performance/internal/api/middleware"
	"github.com/ndewijer/portfolio-performance/internal/api/request"
	"github.com/ndewijer/portfolio-performance/internal/app"
	"github.com/ndewijer/portfolio-performance/internal/config"
	"github.com/ndewijer/portfolio-performance/internal/database"
	"github.com/ndewijer/portfolio-performance/internal/logging"
	"github.com/ndewijer/portfolio-performance/internal/model"
	"github.com/ndewijer/portfolio-performance/internal/performance"
	"github.com/ndewijer/portfolio-performance/internal/scheduler"
	"github.com/ndewijer/portfolio-performance/internal/version"
)

// cli carries the state shared by all commands of one invocation.
type cli struct {
	cfg    *config.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "perfctl",
		Short:         "Portfolio performance and return attribution",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
				cfg.Database.Path = dbPath
			}
			level := cfg.Log.Level
			if override, _ := cmd.Flags().GetString("log-level"); override != "" {
				level = override
			}
			c.cfg = cfg
			c.logger = logging.New(level, "console")
			return nil
		},
	}

	root.PersistentFlags().String("db", "", "database path (default: DB_PATH)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		c.versionCmd(),
		c.migrateCmd(),
		c.portfolioCmd(),
		c.holdingCmd(),
		c.factorCmd(),
		c.reportCmd(),
		c.tokenCmd(),
	)
	return root
}

func (c *cli) open() (*app.App, error) {
	return app.New(c.cfg, c.logger)
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "perfctl %s\n", version.Version)
			return err
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := database.Version(a.DB)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return err
		},
	}
}

// periodFlags registers the flags shared by the calculation commands.
func periodFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "start date, exclusive (default: one month before --to)")
	cmd.Flags().String("to", "", "end date, inclusive (default: today)")
	cmd.Flags().String("currency", "", "valuation currency (default: BASE_CURRENCY)")
	cmd.Flags().String("source", "", "price source (default: PRICE_SOURCE)")
	cmd.Flags().Bool("csv", false, "write CSV instead of a summary")
	cmd.Flags().Bool("daily", false, "write one CSV row per date of the total return")
}

func parseQuery(cmd *cobra.Command) (model.PerformanceQuery, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	currency, _ := cmd.Flags().GetString("currency")
	source, _ := cmd.Flags().GetString("source")
	return request.ParsePerformanceQuery(from, to, currency, source, time.Now())
}

type output struct {
	csv   bool
	daily bool
}

func outputFlags(cmd *cobra.Command) output {
	csv, _ := cmd.Flags().GetBool("csv")
	daily, _ := cmd.Flags().GetBool("daily")
	return output{csv: csv, daily: daily}
}

func (c *cli) portfolioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio <name>",
		Short: "Calculate the performance of a portfolio and its holdings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuery(cmd)
			if err != nil {
				return err
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			perf, err := a.PerformanceService.PortfolioPerformanceByName(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch out := outputFlags(cmd); {
			case out.daily:
				return performance.WriteReturnsCSV(w, &perf.Total)
			case out.csv:
				return perf.WriteCSV(w)
			}
			return writeLines(w, perf.String(), holdingLines(perf.Holdings)...)
		},
	}
	periodFlags(cmd)
	return cmd
}

func (c *cli) holdingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holding <fund-id>",
		Short: "Calculate the performance of one unit of a fund",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuery(cmd)
			if err != nil {
				return err
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			perf, err := a.PerformanceService.HoldingPerformance(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch out := outputFlags(cmd); {
			case out.daily:
				return performance.WriteReturnsCSV(w, &perf.Total)
			case out.csv:
				return perf.WriteCSV(w)
			}
			return writeLines(w, perf.String())
		},
	}
	periodFlags(cmd)
	return cmd
}

func (c *cli) factorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factor <name>",
		Short: "Compound the daily returns of a risk factor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuery(cmd)
			if err != nil {
				return err
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			perf, err := a.PerformanceService.FactorPerformance(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out := outputFlags(cmd); out.csv || out.daily {
				return performance.WriteReturnsCSV(w, perf)
			}
			return writeLines(w, args[0]+": "+perf.String())
		},
	}
	periodFlags(cmd)
	return cmd
}

func (c *cli) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Run the trailing-performance report once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			defer a.Close()

			job := scheduler.NewReportJob(a.PortfolioService, a.PerformanceService, c.cfg.Report.LookbackDays, c.logger)
			report, err := job.Run(cmd.Context())
			if err != nil {
				return err
			}

			lines := make([]string, len(report.Lines))
			for i, l := range report.Lines {
				lines[i] = l.Summary
				if l.Error != "" {
					lines[i] = l.Portfolio + ": " + l.Error
				}
			}
			header := fmt.Sprintf("%s to %s", report.From.Format(time.DateOnly), report.To.Format(time.DateOnly))
			if err := writeLines(cmd.OutOrStdout(), header, lines...); err != nil {
				return err
			}
			if n := report.Failed(); n > 0 {
				return fmt.Errorf("%d of %d portfolios failed", n, len(report.Lines))
			}
			return nil
		},
	}
}

func (c *cli) tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a time token for the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Auth.InternalAPIKey == "" {
				return errors.New("INTERNAL_API_KEY is not set")
			}
			return writeLines(cmd.OutOrStdout(), middleware.GenerateTimeToken(c.cfg.Auth.InternalAPIKey))
		},
	}
}

func holdingLines(holdings []*performance.HoldingPerformance) []string {
	lines := make([]string, len(holdings))
	for i, h := range holdings {
		lines[i] = "  " + h.String()
	}
	return lines
}

func writeLines(w io.Writer, first string, rest ...string) error {
	if _, err := fmt.Fprintln(w, first); err != nil {
		return err
	}
	for _, l := range rest {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
