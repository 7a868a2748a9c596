package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/leowmjw/go-countdown-timeline/pkg/hcl"
	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
	"github.com/leowmjw/go-countdown-timeline/pkg/store"
	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
	"github.com/leowmjw/go-countdown-timeline/pkg/tui"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every bar of the plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := a.loadPlan(cmd.Context())
			proj := plan.Project(doc, 0, 0)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%s (%s)\n\n", proj.ChartTitle, timeline.FormatClock(proj.TotalDuration))
			w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "STREAM\tKIND\t#\tREMAINING\tSTART\tCAST\tDURATION\tEND")
			for _, s := range proj.Streams {
				for _, bar := range s.Bars {
					end := fmt.Sprintf("%.1f", bar.ActiveEnd)
					if bar.Overflows {
						end += " (past end)"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.1f\t%.1f\t%.1f\t%s\n",
						s.Name, s.Kind, bar.Index, bar.Label, bar.Start, bar.CastDelay, bar.Duration, end)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d overlaps, %.1fs shared\n", len(proj.Overlaps), proj.OverlapSeconds)
			return nil
		},
	}
}

func newOverlapsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overlaps",
		Short: "List ranges where checked one-shot actions are active together",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := a.loadPlan(cmd.Context())
			ranges := timeline.DetectOverlaps(doc.OverlapIntervals())
			out := cmd.OutOrStdout()
			if len(ranges) == 0 {
				fmt.Fprintln(out, "No overlaps")
				return nil
			}
			for _, r := range ranges {
				fmt.Fprintf(out, "%s - %s  %.1fs\n",
					timeline.FormatClock(timeline.ToRemaining(r.Start, doc.TotalDuration)),
					timeline.FormatClock(timeline.ToRemaining(r.End, doc.TotalDuration)),
					r.Width())
			}
			fmt.Fprintf(out, "total %.1fs\n", timeline.TotalOverlap(ranges))
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file|dir|->",
		Short: "Replace the plan from a file",
		Long: `Replace the plan from an HCL, JSON, YAML or text file.

The format follows the file extension unless --format is given. A directory is read
as HCL files merged in name order. "-" reads standard input. Text imports keep the
current plan's total duration and title.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := a.readPlan(ctx, args[0], format, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := a.store.Save(ctx, a.planID(), doc); err != nil {
				return err
			}
			a.logger.Info("Imported plan", "planID", a.planID(), "streams", len(doc.Streams))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d streams into %s\n", len(doc.Streams), a.planID())
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format: hcl, json, yaml or text")
	return cmd
}

func (a *app) readPlan(ctx context.Context, path, format string, stdin io.Reader) (plan.Document, error) {
	if path != "-" {
		info, err := os.Stat(path)
		if err != nil {
			return plan.Document{}, err
		}
		if info.IsDir() {
			doc, err := hcl.ParseHCLDirectory(path)
			if err != nil {
				return plan.Document{}, err
			}
			return *doc, nil
		}
	}

	contentType := hcl.ContentTypeForFile(path)
	if format != "" {
		ct, err := hcl.FormatContentType(format)
		if err != nil {
			return plan.Document{}, err
		}
		contentType = ct
	}

	var (
		body []byte
		err  error
	)
	if path == "-" {
		body, err = io.ReadAll(stdin)
		if format == "" {
			contentType = hcl.DetectContent(body)
		}
	} else {
		body, err = os.ReadFile(path)
	}
	if err != nil {
		return plan.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return hcl.DecodePlan(contentType, body, func() plan.Document { return a.loadPlan(ctx) })
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the plan as text callouts, JSON, YAML or HCL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _, err := hcl.EncodePlan(a.loadPlan(cmd.Context()), format)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(output, body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, yaml or hcl")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newExpandCmd(a *app) *cobra.Command {
	var (
		spec  timeline.RepeatingEventSpec
		total float64
	)
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "List the occurrences of a repeating action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if total <= 0 {
				return errors.New("--total must be positive")
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "#\tREMAINING\tSTART\tACTIVE\tEND")
			for _, occ := range timeline.ExpandRepeating(spec, total) {
				fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%.1f\n", occ.Index,
					timeline.FormatClock(timeline.ToRemaining(occ.Start, total)),
					occ.Start, occ.ActiveStart(), occ.ActiveEnd())
			}
			return w.Flush()
		},
	}
	flags := cmd.Flags()
	flags.Float64Var(&spec.Start, "start", timeline.MinElapsed, "Elapsed seconds of the first occurrence")
	flags.Float64Var(&spec.CastDelay, "cast-delay", 0, "Seconds between start and the active window")
	flags.Float64Var(&spec.Gap, "gap", plan.DefaultGap, "Seconds between occurrence starts")
	flags.Float64Var(&spec.Duration, "duration", plan.DefaultDuration, "Active seconds of each occurrence")
	flags.Float64Var(&total, "total", plan.DefaultTotalDuration, "Countdown length in seconds")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := tui.New(a.loadPlan(cmd.Context()), tui.Options{
				PlanID:    a.planID(),
				Store:     a.store,
				Logger:    a.logger,
				BaseWidth: a.cfg.Editor.BaseWidth,
				Zoom:      a.cfg.Editor.Zoom,
			})
			final, err := tui.Run(cmd.Context(), m)
			if err != nil {
				return err
			}
			if final.Dirty() {
				a.logger.Warn("Discarded unsaved changes", "planID", a.planID())
			}
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved plans",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "PLAN\tUPDATED")
			for _, p := range plans {
				fmt.Fprintf(w, "%s\t%s\n", p.ID, p.UpdatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <plan>...",
		Aliases: []string{"rm"},
		Short:   "Delete saved plans",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var missing []string
			for _, id := range args {
				if _, err := a.store.Load(cmd.Context(), id); errors.Is(err, store.ErrNotFound) {
					missing = append(missing, id)
					continue
				}
				if err := a.store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			if len(missing) > 0 {
				return fmt.Errorf("no such plan: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
