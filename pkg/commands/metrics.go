package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/beam-cloud/unpacker/pkg/metrics"
)

func NewMetricsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show counters for the operations run in this process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch format {
			case "prometheus":
				metricsData := metrics.GlobalMetrics.GetPrometheusMetrics()
				keys := make([]string, 0, len(metricsData))
				for key := range metricsData {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				for _, key := range keys {
					fmt.Fprintf(out, "%s %v\n", key, metricsData[key])
				}
			case "summary":
				metrics.LogMetricsSummary()
			case "json":
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(metrics.GlobalMetrics.GetPrometheusMetrics())
			default:
				return fmt.Errorf("unknown format %q: must be one of: json, prometheus, summary", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format (json, prometheus, summary)")
	return cmd
}
