package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/camera-coverage/internal/analysis"
	"github.com/sells-group/camera-coverage/internal/report"
)

var summaryYAML bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Describe the dataset: status, boroughs, extent and timeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		rep := &report.Report{
			GeneratedAt: now(),
			Source:      inputPath,
			Dataset:     analysis.Summarize(ds),
		}
		if summaryYAML {
			return report.WriteYAML(os.Stdout, rep)
		}
		return report.WriteText(os.Stdout, rep)
	},
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryYAML, "yaml", false, "print the summary as YAML")
	rootCmd.AddCommand(summaryCmd)
}
