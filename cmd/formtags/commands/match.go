package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formtags/pkg/assign"
)

func newMatchCmd(state *appState) *cobra.Command {
	var (
		src   formSource
		exprs []string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Show which spec each field is assigned to",
		Long: `Each --spec is one field block: a space separated list of matchers.
An empty --spec "" is the catch-all.`,
		Example: `  formtags match --form contact.yaml --spec "email name" --spec "*_at" --spec ""`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(exprs) == 0 {
				return errors.New("at least one --spec is required")
			}

			assignOptions, err := state.cfg.Matching.Options()
			if err != nil {
				return err
			}
			form, err := src.load(cmd.Context())
			if err != nil {
				return err
			}

			specs := make([]assign.Spec, 0, len(exprs))
			for _, expr := range exprs {
				spec, err := assign.NewSpec(strings.Fields(expr)...)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}

			result, err := assign.New(assignOptions...).Assign(form.VisibleFields(), specs)
			if err != nil {
				return err
			}
			printAssignments(cmd.OutOrStdout(), specs, result)
			return nil
		},
	}

	src.bind(cmd)
	cmd.Flags().StringArrayVarP(&exprs, "spec", "s", nil, "field spec (repeatable)")
	return cmd
}

// printAssignments writes one line per field. Styling applies only when w is
// a terminal.
func printAssignments(w io.Writer, specs []assign.Spec, result assign.Result) {
	r := lipgloss.NewRenderer(w)
	fieldStyle := r.NewStyle().Bold(true)
	specStyle := r.NewStyle().Foreground(lipgloss.Color("39"))
	droppedStyle := r.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	summaryStyle := r.NewStyle().Faint(true)

	width := 0
	for _, a := range result.Assignments {
		if n := len(a.Field.Name); n > width {
			width = n
		}
	}

	for _, a := range result.Assignments {
		name := fieldStyle.Render(fmt.Sprintf("%-*s", width, a.Field.Name))
		if a.Spec == assign.Unassigned {
			fmt.Fprintf(w, "%s  %s\n", name, droppedStyle.Render("(dropped)"))
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", name, specStyle.Render(fmt.Sprintf("[%d] %s", a.Spec, specs[a.Spec])))
	}

	summary := fmt.Sprintf("%d fields, %d specs, %d dropped", len(result.Assignments), len(specs), len(result.Dropped()))
	fmt.Fprintln(w, summaryStyle.Render(summary))
}
