// Package cli implements the formstate command line.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/calculate"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/orchestrator"
)

type globalOptions struct {
	logLevel  string
	logFormat string
	order     string
	allFields bool
	preset    string
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "formstate",
		Short: "Resolve, validate and fill dynamic form specifications",
		Long: `formstate evaluates the dynamic state of a form specification against a
data snapshot: computed values, visibility, required, enabled and readonly
flags, and validation findings.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	env := logging.FromEnv()
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", env.Level, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", string(env.Format), "Log format (text, json)")
	cmd.PersistentFlags().StringVar(&opts.order, "order", "dependency", "Computed field order (dependency, declaration)")
	cmd.PersistentFlags().BoolVar(&opts.allFields, "all-fields", false, "Validate hidden fields too")
	cmd.PersistentFlags().StringVar(&opts.preset, "preset", "", "JSON preset applied to the specification after loading")

	cmd.AddCommand(
		newResolveCommand(opts),
		newValidateCommand(opts),
		newCheckCommand(opts),
		newFillCommand(opts),
		newSchemaCommand(opts),
	)
	return cmd
}

func (g *globalOptions) logger(cmd *cobra.Command) *slog.Logger {
	cfg := logging.FromEnv()
	cfg.Level = g.logLevel
	cfg.Format = logging.Format(g.logFormat)
	cfg.Output = cmd.ErrOrStderr()
	return logging.New(cfg)
}

func (g *globalOptions) orchestrator(cmd *cobra.Command) (*orchestrator.Orchestrator, error) {
	options := []orchestrator.Option{orchestrator.WithLogger(g.logger(cmd))}

	switch strings.ToLower(g.order) {
	case "", "dependency":
	case "declaration":
		options = append(options, orchestrator.WithCalculationOrder(calculate.OrderDeclaration))
	default:
		return nil, usageError(fmt.Sprintf("unknown --order %q", g.order), nil)
	}
	if g.allFields {
		options = append(options, orchestrator.WithAllFields())
	}
	if g.preset != "" {
		raw, err := os.ReadFile(g.preset)
		if err != nil {
			return nil, usageError("read preset", err)
		}
		preset, err := orchestrator.NewJSONPresetTransformer(raw)
		if err != nil {
			return nil, usageError("parse preset", err)
		}
		options = append(options, orchestrator.WithSpecTransformer(preset))
	}
	return orchestrator.New(options...), nil
}

func (g *globalOptions) load(cmd *cobra.Command, path string) (*orchestrator.Orchestrator, *form.Specification, error) {
	orch, err := g.orchestrator(cmd)
	if err != nil {
		return nil, nil, err
	}
	spec, err := orch.Load(cmd.Context(), form.SourceFromFile(path))
	if err != nil {
		return nil, nil, &ExitError{Code: ExitInvalid, Message: fmt.Sprintf("load %s", path), Cause: err}
	}
	return orch, spec, nil
}

// readData decodes a JSON or YAML data snapshot. "-" reads stdin and an
// empty path yields an empty snapshot.
func readData(cmd *cobra.Command, path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, usageError("read data", err)
	}
	data, err := form.DecodeData(raw)
	if err != nil {
		return nil, usageError("decode data", err)
	}
	return data, nil
}

// writeOutput encodes v as indented JSON or as YAML. YAML goes through JSON
// first so field names follow the json tags.
func writeOutput(w io.Writer, v any, format string) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "", "json":
		raw = append(raw, '\n')
		_, err = w.Write(raw)
		return err
	case "yaml", "yml":
		var generic any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(numbersToNative(generic)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return usageError(fmt.Sprintf("unknown --output %q", format), nil)
	}
}

func numbersToNative(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		for k, child := range typed {
			typed[k] = numbersToNative(child)
		}
		return typed
	case []any:
		for i, child := range typed {
			typed[i] = numbersToNative(child)
		}
		return typed
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return n
		}
		f, _ := typed.Float64()
		return f
	default:
		return v
	}
}
