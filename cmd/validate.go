package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/camera-coverage/internal/camera"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a camera CSV for structural and value errors",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tbl, err := loadTable(cmd.Context())
		if err != nil {
			return err
		}

		rep := camera.Validate(tbl, now())
		if validateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return eris.Wrap(err, "encode validation report")
			}
		} else {
			writeValidation(os.Stdout, rep)
		}

		if !rep.OK() {
			return eris.Wrapf(camera.ErrInvalidRecord, "%d validation errors", len(rep.Errors))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(validateCmd)
}
