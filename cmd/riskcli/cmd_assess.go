package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"credit-risk/internal/form"
	"credit-risk/internal/termui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	assessSet     []string
	assessNoInput bool
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Predict the default risk of one customer",
	Long: `Collect the customer fields, predict the default probability and show
the risk tier with the features that raised or lowered it.

Fields given with --set are not prompted for. With --no-input the remaining
fields take their default values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadSettings()
		if err != nil {
			return err
		}
		opts := assessOptions{
			Set:     assessSet,
			NoInput: assessNoInput,
			JSON:    jsonOutput,
			Prompt:  promptFields,
		}
		return runAssess(cmd.Context(), newBackend(c, serverURL != ""), opts, cmd.OutOrStdout())
	},
}

func init() {
	assessCmd.Flags().StringArrayVar(&assessSet, "set", nil, "set a field, as FEATURE=VALUE (repeatable)")
	assessCmd.Flags().BoolVar(&assessNoInput, "no-input", false, "do not prompt; unset fields use their defaults")
}

type assessOptions struct {
	Set     []string
	NoInput bool
	JSON    bool
	Prompt  func(specs []form.FieldSpec, values url.Values) error
}

func runAssess(ctx context.Context, b backend, opts assessOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	specs, state, err := b.Fields(ctx)
	if err != nil {
		return err
	}
	if !state.Loaded {
		if state.Corrupt {
			return state.Err()
		}
		return fmt.Errorf("%w. Check that the model and feature list files are in the artifact directory", state.Err())
	}

	values, err := parseSetFlags(specs, opts.Set)
	if err != nil {
		return err
	}

	if opts.NoInput || opts.Prompt == nil {
		for _, s := range specs {
			if values.Get(s.Feature) == "" {
				values.Set(s.Feature, s.DefaultAttr())
			}
		}
	} else if err := opts.Prompt(specs, values); err != nil {
		return err
	}

	vec, err := form.Parse(specs, values)
	if err != nil {
		return err
	}

	result, err := b.Assess(ctx, specs, vec)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err = fmt.Fprint(out, termui.Assessment(result))
	return err
}

// parseSetFlags turns FEATURE=VALUE pairs into form values. Features must
// be part of the schema.
func parseSetFlags(specs []form.FieldSpec, pairs []string) (url.Values, error) {
	known := make(map[string]bool, len(specs))
	for _, s := range specs {
		known[s.Feature] = true
	}

	values := url.Values{}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, expected FEATURE=VALUE", p)
		}
		if !known[name] {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
		values.Set(name, strings.TrimSpace(value))
	}
	return values, nil
}

// promptFields asks for every field not already in values, pre-filled with
// its default.
func promptFields(specs []form.FieldSpec, values url.Values) error {
	inputs := make([]string, len(specs))
	prompted := make([]bool, len(specs))
	var fields []huh.Field

	for i, spec := range specs {
		if values.Get(spec.Feature) != "" {
			continue
		}
		inputs[i] = spec.DefaultAttr()
		prompted[i] = true
		fields = append(fields, huh.NewInput().
			Title(spec.Label).
			Description(spec.Describe()).
			Value(&inputs[i]).
			Validate(spec.Validate))
	}
	if len(fields) == 0 {
		return nil
	}

	err := huh.NewForm(huh.NewGroup(fields...)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return errors.New("assessment canceled")
	}
	if err != nil {
		return err
	}

	for i, spec := range specs {
		if prompted[i] {
			values.Set(spec.Feature, inputs[i])
		}
	}
	return nil
}
