package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bikepulse/internal/exporter"
	api "bikepulse/pkg/contracts/api/v1"
	"bikepulse/pkg/contracts/domain"
)

func newSummaryCmd(r *report) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print KPIs, group means and insights for the selection",
		Example: `  bikereport --data day.csv summary
  bikereport --data day.csv summary --year 2012 --season Summer,Fall`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := r.filterSelection(cmd)
			if err != nil {
				return err
			}
			view, err := r.service.Overview(newContext(cmd), sel)
			if err != nil {
				return err
			}
			if r.asJSON {
				return r.writeJSON(cmd.OutOrStdout(), view)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Days\t%d\n", view.KPIs.Count)
			fmt.Fprintf(w, "Total rentals\t%d\n", view.KPIs.Total)
			if view.KPIs.Mean != nil {
				fmt.Fprintf(w, "Mean per day\t%d\n", view.KPIs.MeanRounded)
			} else {
				fmt.Fprintf(w, "Mean per day\tn/a\n")
			}
			fmt.Fprintln(w)
			for _, s := range view.SeasonMeans.Stats {
				fmt.Fprintf(w, "%s\t%.1f\t(%d days)\n", s.Label, s.Value, s.Rows)
			}
			for _, s := range view.DayTypeMeans.Stats {
				fmt.Fprintf(w, "%s\t%.1f\t(%d days)\n", s.Label, s.Value, s.Rows)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout())
			for _, in := range view.Insights {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", strings.ReplaceAll(in.Text, "**", ""))
			}
			return nil
		},
	}
}

func newExportCmd(r *report) *cobra.Command {
	var (
		formats string
		outDir  string
		name    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the selected rows as CSV, Excel or parquet files",
		Example: `  bikereport --data day.csv export --format csv,xlsx,parquet --out exports
  bikereport --data day.csv export --workingday "Working Day" --name working_days`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := exporter.ParseFormats(formats)
			if err != nil {
				return err
			}
			sel, err := r.filterSelection(cmd)
			if err != nil {
				return err
			}
			if outDir != "" {
				if err := r.files.ValidateOutputDirectory(outDir); err != nil {
					return err
				}
			}

			results, err := r.service.ExportFiles(newContext(cmd), sel, list, outDir, name)
			for _, res := range results {
				if !r.asJSON {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rows\t%d bytes\n", res.Path, res.Rows, res.Bytes)
				}
			}
			if err != nil {
				return err
			}
			if r.asJSON {
				return r.writeJSON(cmd.OutOrStdout(), results)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&formats, "format", string(exporter.FormatCSV), "comma-separated formats: csv, xlsx, parquet")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (defaults to the configured exports directory)")
	cmd.Flags().StringVar(&name, "name", "", "file name without extension")
	return cmd
}

func newClusterCmd(r *report) *cobra.Command {
	var (
		k        int
		seedVal  int64
		features []string
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Run k-means over the selected days",
		Example: `  bikereport --data day.csv cluster --k 4
  bikereport --data day.csv cluster --k 3 --seed 7 --features temp,hum,cnt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := api.ClusteringRequest{Features: features}.FeatureFields()
			if err != nil {
				return err
			}
			sel, err := r.filterSelection(cmd)
			if err != nil {
				return err
			}

			res, err := r.service.Cluster(newContext(cmd), sel, k, seed(cmd, seedVal), fields)
			if err != nil {
				return err
			}
			if r.asJSON {
				return r.writeJSON(cmd.OutOrStdout(), res)
			}
			if res.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "Clustering skipped: %s\n", res.Reason)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "k=%d seed=%d features=%s inertia=%.4f iterations=%d\n",
				res.K, res.Seed, joinFields(res.Features), res.Inertia, res.Iterations)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "cluster\tdays\tmean rentals\tcentroid")
			for i := range res.Centroids {
				fmt.Fprintf(w, "%d\t%d\t%.1f\t%s\n", i, res.Sizes[i], res.MeanCount[i], formatVector(res.Centroids[i]))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&k, "k", 0, "number of clusters, 2 to 6 (defaults to the configured k)")
	cmd.Flags().Int64Var(&seedVal, "seed", 0, "random seed (defaults to the configured seed)")
	cmd.Flags().StringSliceVar(&features, "features", nil, "feature columns (defaults to temperature, humidity, windspeed, count)")
	return cmd
}

func newElbowCmd(r *report) *cobra.Command {
	var (
		kMin     int
		kMax     int
		seedVal  int64
		features []string
	)

	cmd := &cobra.Command{
		Use:     "elbow",
		Short:   "Print the k-means inertia for a range of k",
		Example: `  bikereport --data day.csv elbow --kmin 2 --kmax 6`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if kMin > 0 && kMax > 0 && kMin > kMax {
				return fmt.Errorf("%w: kmin %d is greater than kmax %d", domain.ErrInvalidSelection, kMin, kMax)
			}
			fields, err := api.ClusteringRequest{Features: features}.FeatureFields()
			if err != nil {
				return err
			}
			sel, err := r.filterSelection(cmd)
			if err != nil {
				return err
			}

			res, err := r.service.Elbow(newContext(cmd), sel, kMin, kMax, seed(cmd, seedVal), fields)
			if err != nil {
				return err
			}
			if r.asJSON {
				return r.writeJSON(cmd.OutOrStdout(), res)
			}
			if res.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "Elbow skipped: %s\n", res.Reason)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "k\tinertia")
			for _, p := range res.Points {
				fmt.Fprintf(w, "%d\t%.4f\n", p.K, p.Inertia)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&kMin, "kmin", 0, "smallest k")
	cmd.Flags().IntVar(&kMax, "kmax", 0, "largest k")
	cmd.Flags().Int64Var(&seedVal, "seed", 0, "random seed")
	cmd.Flags().StringSliceVar(&features, "features", nil, "feature columns")
	return cmd
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.3f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
