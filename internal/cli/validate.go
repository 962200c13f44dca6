package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/pkg/validation"
)

func newValidateCommand(g *globalOptions) *cobra.Command {
	var (
		dataPath string
		field    string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "validate <spec>",
		Short: "Validate a data snapshot against a form specification",
		Long: `Validate checks a data snapshot and prints its findings. The command exits
with status 1 when at least one finding has error severity; warnings are
reported without failing.`,
		Example: `  formstate validate application.yaml --data answers.json
  formstate validate application.yaml --data answers.json --field email`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, spec, err := g.load(cmd, args[0])
			if err != nil {
				return err
			}
			data, err := readData(cmd, dataPath)
			if err != nil {
				return err
			}

			var res validation.Result
			if field != "" {
				if _, ok := spec.Field(field); !ok {
					return usageError(fmt.Sprintf("unknown field %q", field), nil)
				}
				res = orch.ValidateSingleField(field, data, spec)
			} else {
				res = orch.Validate(data, spec)
			}

			if output == "text" {
				for _, fe := range res.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s: %s\n", fe.Severity, fe.Path, fe.Message)
				}
			} else if err := writeOutput(cmd.OutOrStdout(), res, output); err != nil {
				return err
			}
			if !res.Valid {
				return &ExitError{Code: ExitInvalid}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Data snapshot (JSON or YAML, - for stdin)")
	cmd.Flags().StringVar(&field, "field", "", "Validate a single field path")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}
