// Command bikereport prints dashboard figures and writes exports from a daily
// bike-sharing CSV without starting the web server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bikepulse/internal/config"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/services"
	"bikepulse/internal/validation"
	"bikepulse/pkg/contracts"
	api "bikepulse/pkg/contracts/api/v1"
	"bikepulse/pkg/contracts/domain"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// report holds the state shared by every subcommand
type report struct {
	dataPath string
	asJSON   bool
	verbose  bool

	selection api.SelectionRequest
	year      int

	cfg     *config.Config
	logger  *slog.Logger
	service *services.DashboardService
	files   *validation.FileValidator
}

func newRootCmd() *cobra.Command {
	r := &report{}

	root := &cobra.Command{
		Use:   "bikereport",
		Short: "Bike-sharing dashboard figures from the command line",
		Long: `bikereport loads the daily bike-sharing CSV and prints the same figures the
web dashboard shows.

  bikereport --data day.csv summary --season Summer --workingday "Working Day"
  bikereport --data day.csv export --format csv,xlsx --out exports
  bikereport --data day.csv cluster --k 4 --seed 7`,
		Version:           contracts.GetFullVersionString(),
		SilenceUsage:      true,
		PersistentPreRunE: r.load,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&r.dataPath, "data", "", "daily CSV file (defaults to the configured dataset)")
	flags.BoolVar(&r.asJSON, "json", false, "print JSON instead of text")
	flags.BoolVarP(&r.verbose, "verbose", "v", false, "log progress to stderr")

	flags.IntVar(&r.year, "year", 0, "calendar year")
	flags.StringVar(&r.selection.Start, "start", "", "first day, YYYY-MM-DD")
	flags.StringVar(&r.selection.End, "end", "", "last day, YYYY-MM-DD")
	flags.StringSliceVar(&r.selection.Seasons, "season", nil, "seasons to keep (repeat or comma-separate)")
	flags.StringSliceVar(&r.selection.WorkingDays, "workingday", nil, `day types to keep: WorkingDay, WeekendOrHoliday (or "Working Day", "Weekend/Holiday")`)

	root.AddCommand(
		newSummaryCmd(r),
		newExportCmd(r),
		newClusterCmd(r),
		newElbowCmd(r),
	)
	return root
}

// load reads the configuration and the dataset before any subcommand runs
func (r *report) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if r.dataPath != "" {
		cfg.Dataset.File = r.dataPath
	}
	r.cfg = cfg

	level := "warn"
	if r.verbose {
		level = "debug"
	}
	r.logger = infrastructure.NewLogger(cmd.ErrOrStderr(), config.LoggingConfig{Level: level, Format: "text"})

	r.files = validation.NewFileValidator(r.logger)
	if err := r.files.ValidateDatasetFile(cfg.Dataset.File); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "bikereport: cannot load %s: %v\n", cfg.Dataset.File, err)
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	opts := services.DashboardOptionsFromConfig(cfg)
	opts.Logger = r.logger
	r.service = services.NewDashboardService(opts)

	summary, err := r.service.Load(newContext(cmd))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "bikereport: cannot load %s: %v\n", cfg.Dataset.File, err)
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	r.logger.Debug("dataset loaded",
		slog.String("source", summary.Source),
		slog.Int("rows", summary.Rows))
	return nil
}

// filterSelection builds the selection from the persistent flags. Flags that
// were not given leave their constraint inactive.
func (r *report) filterSelection(cmd *cobra.Command) (domain.FilterSelection, error) {
	req := r.selection
	if !cmd.Flags().Changed("season") {
		req.Seasons = nil
	} else if req.Seasons == nil {
		req.Seasons = []string{}
	}
	if !cmd.Flags().Changed("workingday") {
		req.WorkingDays = nil
	} else if req.WorkingDays == nil {
		req.WorkingDays = []string{}
	}
	if cmd.Flags().Changed("year") {
		year := r.year
		req.Year = &year
	}
	return req.ToSelection()
}

// seed returns the --seed flag when it was given
func seed(cmd *cobra.Command, value int64) *int64 {
	if !cmd.Flags().Changed("seed") {
		return nil
	}
	return &value
}

func (r *report) writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func joinFields(fields []domain.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ",")
}
