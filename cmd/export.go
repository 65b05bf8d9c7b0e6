package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/camera-coverage/internal/export"
	"github.com/sells-group/camera-coverage/internal/pipeline"
)

var (
	exportDir     string
	exportFormats []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the analysis and write GIS and tabular files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		p, err := analysisParams(cmd)
		if err != nil {
			return err
		}

		dir := cfg.Export.Dir
		if cmd.Flags().Changed("dir") {
			dir = exportDir
		}
		names := cfg.Export.Formats
		if cmd.Flags().Changed("format") {
			names = exportFormats
		}
		formats, err := export.ParseFormats(names)
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

		files, err := export.WriteAll(dir, res.Layers(), formats)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default from config)")
	exportCmd.Flags().StringSliceVar(&exportFormats, "format", nil, "formats: geojson, kml, shapefile, csv, xlsx (default from config)")
	rootCmd.AddCommand(exportCmd)
}
