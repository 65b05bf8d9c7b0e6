package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/camera-coverage/internal/export"
	"github.com/sells-group/camera-coverage/internal/pipeline"
)

var runExportDir string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis and record it in run history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		p, err := analysisParams(cmd)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ds, err := loadDataset(ctx)
		if err != nil {
			return err
		}

		res, run, err := pipeline.NewRunner(st).Execute(ctx, ds, p)
		if err != nil {
			return err
		}

		if runExportDir != "" {
			formats, err := export.ParseFormats(cfg.Export.Formats)
			if err != nil {
				return err
			}
			if _, err := export.WriteAll(runExportDir, res.Layers(), formats); err != nil {
				return err
			}
		}

		zap.L().Info("analysis run complete",
			zap.String("run_id", run.ID),
			zap.Int("cameras", ds.Len()),
			zap.Int("gaps", len(res.Gaps)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			RunID   string              `json:"run_id"`
			Summary pipeline.RunSummary `json:"summary"`
		}{run.ID, res.RunSummary()})
	},
}

func init() {
	runCmd.Flags().StringVar(&runExportDir, "export", "", "also write exports in the configured formats to this directory")
	rootCmd.AddCommand(runCmd)
}
