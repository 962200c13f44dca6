package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/pkg/orchestrator"
)

func newResolveCommand(g *globalOptions) *cobra.Command {
	var (
		dataPath      string
		output        string
		values        bool
		includeHidden bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <spec>",
		Short: "Print the dynamic state of a form for a data snapshot",
		Example: `  # Full snapshot as JSON
  formstate resolve application.yaml --data answers.json

  # Submitted values with hidden fields dropped, as YAML
  formstate resolve application.yaml --data answers.yaml --values --output yaml`,
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
			if values {
				current := orch.CurrentValues(data, spec, orchestrator.ValuesOptions{
					IncludeHidden:   includeHidden,
					IncludeComputed: true,
				})
				return writeOutput(cmd.OutOrStdout(), current, output)
			}
			return writeOutput(cmd.OutOrStdout(), orch.Resolve(data, spec), output)
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Data snapshot (JSON or YAML, - for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	cmd.Flags().BoolVar(&values, "values", false, "Print the submitted values instead of the state snapshot")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "Keep values of hidden fields with --values")
	return cmd
}
