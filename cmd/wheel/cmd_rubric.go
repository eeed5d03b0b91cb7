package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aigents/quality-wheel/internal/rubric"
	"github.com/aigents/quality-wheel/internal/wizard"
)

func newRubricCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rubric",
		Short: "Inspect and adjust the scoring rubric",
	}

	cmd.AddCommand(newRubricShowCommand())
	cmd.AddCommand(newRubricAdjustCommand())

	return cmd
}

func newRubricShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active rubric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			return writeRubric(cmd.OutOrStdout(), format, env.rubric.Snapshot())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, yaml, json")

	return cmd
}

func writeRubric(w io.Writer, format string, snap *rubric.Snapshot) error {
	switch format {
	case "yaml":
		data, err := rubric.Marshal(snap)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case formatText:
		writeRubricText(w, snap)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected one of: text, yaml, json)", format)
	}
}

func writeRubricText(w io.Writer, snap *rubric.Snapshot) {
	title := cases.Title(language.English)
	for i, c := range snap.Criteria {
		if i > 0 {
			fmt.Fprintln(w) //nolint:errcheck
		}
		header := fmt.Sprintf("%s (%s)", c.Name, c.Code)
		if weight, ok := snap.CriterionWeights[c.Code]; ok {
			header += fmt.Sprintf("  weight %.2f", weight)
		}
		fmt.Fprintln(w, header) //nolint:errcheck

		rows := [][]string{{"Sub-criterion", "Weight", "Min", "Required"}}
		for _, s := range c.SubCriteria {
			req := ""
			if s.Required {
				req = "yes"
			}
			rows = append(rows, []string{
				title.String(strings.ReplaceAll(s.Name, "_", " ")) + " [" + s.Name + "]",
				fmt.Sprintf("%.2f", s.Weight),
				fmt.Sprintf("%.1f", s.MinThreshold),
				req,
			})
		}
		writeTable(w, rows)
	}
	fmt.Fprintf(w, "\nRubric version %d\n", snap.Version) //nolint:errcheck
}

type adjustOptions struct {
	minValue    float64
	weight      float64
	required    bool
	interactive bool
	write       string
}

func newRubricAdjustCommand() *cobra.Command {
	opts := &adjustOptions{}

	cmd := &cobra.Command{
		Use:   "adjust <criterion> <sub-criterion>",
		Short: "Change one sub-criterion's threshold, weight or required flag",
		Long: `Apply a partial update to one sub-criterion. Only the flags you pass are
changed. The criterion's weights must still sum to 1.0; use the HTTP API's
PUT /api/rubric/{criterion}/weights to rebalance several weights at once.

The updated rubric is written back to the active rubric file (--rubric or
paths.rubric), to --write, or printed as YAML when neither is set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRubricAdjust(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().Float64Var(&opts.minValue, "min", 0, "Minimum score (0-10)")
	cmd.Flags().Float64Var(&opts.weight, "weight", 0, "Weight within the criterion (0-1)")
	cmd.Flags().BoolVar(&opts.required, "required", false, "Whether a missing score blocks approval")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Edit the values in an interactive form")
	cmd.Flags().StringVar(&opts.write, "write", "", "Write the updated rubric to this file")

	return cmd
}

func runRubricAdjust(cmd *cobra.Command, opts *adjustOptions, criterion, sub string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	var update rubric.ThresholdUpdate
	if opts.interactive {
		spec, ok := env.rubric.Snapshot().Criterion(criterion)
		if !ok {
			return fmt.Errorf("unknown criterion %q", criterion)
		}
		current, ok := spec.SubCriterion(sub)
		if !ok {
			return fmt.Errorf("unknown sub-criterion %q in %s", sub, criterion)
		}
		update, err = wizard.RunThresholdWizard(cmd.InOrStdin(), cmd.OutOrStdout(), criterion, current)
		if err != nil {
			return err
		}
	} else {
		flags := cmd.Flags()
		if flags.Changed("min") {
			update.MinValue = &opts.minValue
		}
		if flags.Changed("weight") {
			update.Weight = &opts.weight
		}
		if flags.Changed("required") {
			update.Required = &opts.required
		}
		if update.Empty() {
			return fmt.Errorf("nothing to change: pass --min, --weight, --required or --interactive")
		}
	}

	before := env.rubric.Version()
	if err := env.rubric.AdjustThreshold(criterion, sub, update); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if env.rubric.Version() == before {
		fmt.Fprintln(out, "No changes.") //nolint:errcheck
		return nil
	}

	target := opts.write
	if target == "" {
		target = env.rubricPath
	}
	if target == "" {
		return writeRubric(out, "yaml", env.rubric.Snapshot())
	}
	if err := rubric.WriteFile(target, env.rubric); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated %s.%s in %s\n", criterion, sub, target) //nolint:errcheck
	return nil
}
