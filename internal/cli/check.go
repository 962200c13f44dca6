package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/pkg/form"
)

type violation struct {
	file    string
	message string
}

func newCheckCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <pattern>...",
		Short: "Report structural and expression problems in specifications",
		Long: `Check loads every specification matching the given paths or glob patterns
(** matches across directories) and reports dangling field references,
expression syntax errors, undeclared computed sources and computed cycles.`,
		Example: `  formstate check forms/**/*.yaml`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expand(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return usageError("no specification matched", nil)
			}

			var violations []violation
			for _, file := range files {
				orch, err := g.orchestrator(cmd)
				if err != nil {
					return err
				}
				if _, err := orch.Load(cmd.Context(), form.SourceFromFile(file)); err != nil {
					for _, msg := range flatten(err) {
						violations = append(violations, violation{file: file, message: msg})
					}
				}
			}

			sort.SliceStable(violations, func(i, j int) bool {
				if violations[i].file == violations[j].file {
					return violations[i].message < violations[j].message
				}
				return violations[i].file < violations[j].file
			})
			for _, v := range violations {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", v.file, v.message)
			}
			if len(violations) > 0 {
				return &ExitError{Code: ExitInvalid}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d specification(s) ok\n", len(files))
			return nil
		},
	}
	return cmd
}

// expand resolves glob patterns to a sorted, de-duplicated file list. Plain
// paths are kept as given.
func expand(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, usageError(fmt.Sprintf("invalid pattern %q", pattern), nil)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, usageError(fmt.Sprintf("expand %q", pattern), err)
		}
		for _, match := range matches {
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			out = append(out, match)
		}
	}
	sort.Strings(out)
	return out, nil
}

// flatten splits aggregated load errors into one message per problem.
func flatten(err error) []string {
	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		out := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
