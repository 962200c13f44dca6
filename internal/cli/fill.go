package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/pkg/prompt"
)

func newFillCommand(g *globalOptions) *cobra.Command {
	var (
		dataPath string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "fill <spec>",
		Short: "Fill a form interactively in the terminal",
		Long: `Fill asks for each field in order. The form state is re-resolved after
every answer, so hidden, disabled and readonly fields are not asked and
validation findings are shown as soon as an answer is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, spec, err := g.load(cmd, args[0])
			if err != nil {
				return err
			}
			initial, err := readData(cmd, dataPath)
			if err != nil {
				return err
			}
			filler, err := prompt.New(orch,
				prompt.WithPrompter(prompt.NewSurveyPrompter(cmd.ErrOrStderr())),
				prompt.WithLogger(g.logger(cmd)),
			)
			if err != nil {
				return err
			}
			res, err := filler.Fill(cmd.Context(), spec, initial)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), res.Values, output); err != nil {
				return err
			}
			if !res.Snapshot.Validation.Valid {
				return &ExitError{Code: ExitInvalid}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Initial values (JSON or YAML)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	return cmd
}
