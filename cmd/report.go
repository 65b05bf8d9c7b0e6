package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/camera-coverage/internal/pipeline"
	"github.com/sells-group/camera-coverage/internal/report"
)

var (
	reportOut  string
	reportYAML bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the full analysis and print the report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		p, err := analysisParams(cmd)
		if err != nil {
			return err
		}
		ds, err := loadDataset(ctx)
		if err != nil {
			return err
		}
		res, err := pipeline.Run(ctx, ds, p)
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if reportOut != "" {
			f, err := os.Create(reportOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", reportOut)
			}
			defer f.Close() //nolint:errcheck
			w = f
		}

		rep := res.Report(now())
		if reportYAML {
			return report.WriteYAML(w, rep)
		}
		return report.WriteText(w, rep)
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write the report to a file instead of stdout")
	reportCmd.Flags().BoolVar(&reportYAML, "yaml", false, "render the report as YAML")
	rootCmd.AddCommand(reportCmd)
}
