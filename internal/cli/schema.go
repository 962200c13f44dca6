package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/openapi"
)

func newSchemaCommand(g *globalOptions) *cobra.Command {
	var (
		component   string
		operation   string
		into        string
		output      string
		validateDoc bool
	)

	cmd := &cobra.Command{
		Use:   "schema <openapi-document>",
		Short: "Import property constraints from an OpenAPI document",
		Long: `Schema converts an OpenAPI component schema or an operation's request body
into the form schema section. With --into the imported properties are merged
into an existing specification, whose own properties take precedence.`,
		Example: `  formstate schema api.yaml --component Signup
  formstate schema api.yaml --operation createSignup --into signup.yaml --output yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (component == "") == (operation == "") {
				return usageError("exactly one of --component or --operation is required", nil)
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return usageError("read document", err)
			}

			importer := openapi.NewImporter(openapi.WithValidation(validateDoc))
			var imported form.Schema
			if component != "" {
				imported, err = importer.Component(cmd.Context(), raw, component)
			} else {
				imported, err = importer.Operation(cmd.Context(), raw, operation)
			}
			if err != nil {
				return &ExitError{Code: ExitInvalid, Cause: err}
			}

			if into == "" {
				return writeOutput(cmd.OutOrStdout(), imported, output)
			}
			_, spec, err := g.load(cmd, into)
			if err != nil {
				return err
			}
			openapi.Apply(spec, imported)
			return writeOutput(cmd.OutOrStdout(), spec, output)
		},
	}

	cmd.Flags().StringVar(&component, "component", "", "Component schema name under components.schemas")
	cmd.Flags().StringVar(&operation, "operation", "", "Operation ID whose request body is imported")
	cmd.Flags().StringVar(&into, "into", "", "Specification to merge the imported schema into")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	cmd.Flags().BoolVar(&validateDoc, "validate", false, "Validate the OpenAPI document before importing")
	return cmd
}
