package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"credit-risk/internal/termui"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List the input fields of the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadSettings()
		if err != nil {
			return err
		}
		return runSchema(cmd.Context(), newBackend(c, serverURL != ""), jsonOutput, cmd.OutOrStdout())
	},
}

func runSchema(ctx context.Context, b backend, asJSON bool, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	specs, state, err := b.Fields(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"fields":        specs,
			"model_loaded":  state.Loaded,
			"model_corrupt": state.Corrupt,
			"load_error":    state.Error,
		})
	}
	_, err = fmt.Fprint(out, termui.Fields(specs, state))
	return err
}
