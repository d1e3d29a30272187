package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/impact"
	"github.com/matzehuels/causeway/pkg/pipeline"
)

// queryFlags holds the flags shared by the query commands.
type queryFlags struct {
	on      []string
	doing   []string
	knowing []string
	values  map[string]string
	noCache bool
	refresh bool
	asJSON  bool
}

func (f *queryFlags) register(cmd *cobra.Command, interventions bool) {
	cmd.Flags().StringSliceVar(&f.on, "on", nil, "query variables (required)")
	if interventions {
		cmd.Flags().StringSliceVar(&f.doing, "doing", nil, "intervened variables")
		cmd.Flags().StringSliceVar(&f.knowing, "knowing", nil, "observed conditioning variables")
	}
	cmd.Flags().StringToStringVar(&f.values, "value", nil, "restrict a variable to one label (var=label)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite a cached answer")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the answer as JSON")
	_ = cmd.MarkFlagRequired("on")
}

func (f *queryFlags) query() impact.Query {
	return impact.Query{On: f.on, Doing: f.doing, Knowing: f.knowing, Values: f.values}
}

func (c *CLI) impactCommand() *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "impact <model>",
		Short: "Compute P(on | do(doing), knowing) on a model",
		Long: `Identify the causal query and evaluate it on the observed network.

A query that cannot be identified is reported with the hedge that blocks it.`,
		Example: `  causeway impact smoking.yaml --on cancer --doing smoking
  causeway impact smoking.yaml --on cancer --doing smoking --value smoking=yes --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := c.newRunner(ctx, f.noCache)
			defer r.Close()

			m, err := loadModel(ctx, r, args[0])
			if err != nil {
				return err
			}
			res, hit, err := r.ImpactWithCacheInfo(ctx, m, f.query(), pipeline.Options{Refresh: f.refresh})
			if err != nil {
				return err
			}
			if f.asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printImpact(cmd.OutOrStdout(), res, hit)
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func (c *CLI) identifyCommand() *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "identify <model>",
		Short: "Print the do-calculus formula of a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := c.newRunner(ctx, f.noCache)
			defer r.Close()

			m, err := loadModel(ctx, r, args[0])
			if err != nil {
				return err
			}
			res, hit, err := r.IdentifyWithCacheInfo(ctx, m, f.query(), pipeline.Options{Refresh: f.refresh})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if f.asJSON {
				return printJSON(w, res)
			}
			fmt.Fprintln(w, StyleTitle.Render(res.Query))
			printStatus(w, hit, "do-calculus")
			fmt.Fprintln(w)
			printKeyValue(w, "formula", res.Latex)
			fmt.Fprintln(w)
			fmt.Fprintln(w, StyleDim.Render(res.Outline))
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func (c *CLI) counterfactualCommand() *cobra.Command {
	var (
		f       queryFlags
		profile map[string]string
		whatif  []string
	)
	cmd := &cobra.Command{
		Use:     "counterfactual <model>",
		Short:   "Compute P(on) had the what-if variables been set, given an observed profile",
		Example: `  causeway counterfactual chain.toml --profile x=1,y=1 --on y --whatif x --value x=0`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := c.newRunner(ctx, f.noCache)
			defer r.Close()

			m, err := loadModel(ctx, r, args[0])
			if err != nil {
				return err
			}
			q := pipeline.CounterfactualQuery{Profile: profile, On: f.on, WhatIf: whatif, Values: f.values}
			if err := errors.ValidateStruct(q); err != nil {
				return err
			}
			res, hit, err := r.CounterfactualWithCacheInfo(ctx, m, q, pipeline.Options{Refresh: f.refresh})
			if err != nil {
				return err
			}
			if f.asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printImpact(cmd.OutOrStdout(), res, hit)
			return nil
		},
	}
	f.register(cmd, false)
	cmd.Flags().StringToStringVar(&profile, "profile", nil, "observed label of each variable (var=label)")
	cmd.Flags().StringSliceVar(&whatif, "whatif", nil, "variables set by the counterfactual intervention")
	return cmd
}

func (c *CLI) doorsCommand() *cobra.Command {
	var (
		q      pipeline.DoorsQuery
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "doors <model>",
		Short: "List minimal backdoor and frontdoor adjustment sets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := errors.ValidateStruct(q); err != nil {
				return err
			}
			r := c.newRunner(ctx, true)
			defer r.Close()

			m, err := loadModel(ctx, r, args[0])
			if err != nil {
				return err
			}
			res, err := r.Doors(ctx, m, q)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				return printJSON(w, res)
			}
			printDoors(w, "backdoor", res.Backdoor)
			printDoors(w, "frontdoor", res.Frontdoor)
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Cause, "cause", "", "cause variable (required)")
	cmd.Flags().StringVar(&q.Effect, "effect", "", "effect variable (required)")
	cmd.Flags().BoolVar(&q.All, "all", false, "list every minimal set instead of the first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the sets as JSON")
	_ = cmd.MarkFlagRequired("cause")
	_ = cmd.MarkFlagRequired("effect")
	return cmd
}

func printDoors(w io.Writer, kind string, sets [][]string) {
	if len(sets) == 0 {
		printKeyValue(w, kind, StyleDim.Render("none"))
		return
	}
	for i, s := range sets {
		key := kind
		if i > 0 {
			key = ""
		}
		printKeyValue(w, key, formatSet(s))
	}
}

func (c *CLI) dsepCommand() *cobra.Command {
	var (
		q      pipeline.DSepQuery
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "dsep <model>",
		Short:   "Test whether x and y are d-separated by z",
		Example: `  causeway dsep smoking.yaml -x smoking -y cancer -z tar`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := errors.ValidateStruct(q); err != nil {
				return err
			}
			r := c.newRunner(ctx, true)
			defer r.Close()

			m, err := loadModel(ctx, r, args[0])
			if err != nil {
				return err
			}
			res, err := r.DSep(ctx, m, q)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				return printJSON(w, res)
			}
			stmt := fmt.Sprintf("%s ⊥ %s | %s", formatSet(q.X), formatSet(q.Y), formatSet(q.Z))
			if res.Separated {
				printSuccess(w, "d-separated: %s", stmt)
			} else {
				printError(w, "not d-separated: %s", stmt)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&q.X, "x", "x", nil, "first variable set (required)")
	cmd.Flags().StringSliceVarP(&q.Y, "y", "y", nil, "second variable set (required)")
	cmd.Flags().StringSliceVarP(&q.Z, "z", "z", nil, "conditioning set")
	cmd.Flags().StringVar(&q.Through, "through", "", "only follow paths leaving x through its parents or children")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the answer as JSON")
	return cmd
}
