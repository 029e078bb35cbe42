package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
	"github.com/hyperhive/hivegraph/pkg/observability"
)

// writeJSON prints v as indented JSON, for --json output.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// completeFeatureIDs offers feature ids from the configured catalog.
func (c *CLI) completeFeatureIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cat, err := c.loadCatalog(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var ids []string
	for _, f := range cat.Features() {
		if strings.HasPrefix(f.ID, toComplete) {
			ids = append(ids, f.ID+"\t"+f.Name)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// =============================================================================
// layers
// =============================================================================

func (c *CLI) layersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List layers with their feature counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			for _, info := range cat.Layers() {
				n := len(cat.ByLayer(info.ID))
				p.line(fmt.Sprintf("%s %s %s",
					p.style(layerStyle(info.ID), fmt.Sprintf("%-11s", info.ID)),
					fmt.Sprintf("%-32s", info.Label),
					p.style(StyleNumber, fmt.Sprintf("%3d", n))))
			}
			return nil
		},
	}
}

// =============================================================================
// show
// =============================================================================

func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:               "show <id>",
		Short:             "Show a feature with its resolved relations",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeFeatureIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			f, ok := cat.Get(args[0])
			if !ok {
				return herrors.New(herrors.ErrCodeFeatureNotFound, "feature %q not found", args[0])
			}
			deps, staleDeps := cat.Resolve(f.DependsOn)
			feeds, staleFeeds := cat.Resolve(f.FeedsInto)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"feature":   f,
					"dependsOn": deps,
					"feedsInto": feeds,
					"stale":     append(append([]string{}, staleDeps...), staleFeeds...),
				})
			}
			printFeature(newPrinter(cmd.OutOrStdout()), f, deps, feeds, staleDeps, staleFeeds)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printFeature(p printer, f catalog.Feature, deps, feeds []catalog.Feature, staleDeps, staleFeeds []string) {
	p.title(fmt.Sprintf("%s (%s)", f.Name, f.ID))
	p.keyValue("layer", f.Layer.Info().Label)
	if f.Icon != catalog.IconNone {
		p.keyValue("icon", string(f.Icon))
	}
	if f.ShortDescription != "" {
		p.newline()
		p.line(f.ShortDescription)
	}

	for _, sec := range []struct{ title, body string }{
		{"What it is", f.WhatItIs},
		{"Why it exists", f.WhyExists},
		{"How it fits", f.HowItFits},
	} {
		if sec.body == "" {
			continue
		}
		p.newline()
		p.line(p.style(StyleHighlight, sec.title))
		p.detail("%s", sec.body)
	}

	if len(f.Capabilities) > 0 {
		p.newline()
		p.line(p.style(StyleHighlight, "Capabilities"))
		for _, capability := range f.Capabilities {
			p.line("  • " + capability)
		}
	}

	relations := func(title string, found []catalog.Feature, stale []string) {
		if len(found) == 0 && len(stale) == 0 {
			return
		}
		p.newline()
		p.line(p.style(StyleHighlight, title))
		p.features(found)
		for _, id := range stale {
			p.line("  " + p.style(StyleWarning, fmt.Sprintf("%-20s", id)) + " " + p.style(StyleDim, "(stale reference)"))
		}
	}
	relations("Depends on", deps, staleDeps)
	relations("Feeds into", feeds, staleFeeds)

	if len(f.Links) > 0 {
		p.newline()
		p.line(p.style(StyleHighlight, "Links"))
		for _, l := range f.Links {
			p.line("  " + l.Label + " " + p.style(StyleDim, iconArrow) + " " + p.style(StyleLink, l.Href))
		}
	}
}

// =============================================================================
// search
// =============================================================================

func (c *CLI) searchCommand() *cobra.Command {
	var (
		layers []string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Filter features by text and layer",
		Long: `Filter features by free text and layer. Text matches the name, short
description or keywords, case-insensitively. Layer and text filters are
combined with AND.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := catalog.Query{}
			if len(args) == 1 {
				if err := herrors.ValidateQueryText(args[0]); err != nil {
					return err
				}
				q.Text = args[0]
			}
			ls, err := catalog.ParseLayers(layers)
			if err != nil {
				return err
			}
			q.Layers = ls

			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			start := time.Now()
			res := cat.Filter(q)
			observe(cmd.Context(), observability.QueryFilter, start, len(res.Features))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			p := newPrinter(cmd.OutOrStdout())
			p.info("%s", resultSummary(res))
			p.features(res.Features)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&layers, "layer", "l", nil, "restrict to layer(s), repeatable or comma-separated")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.RegisterFlagCompletionFunc("layer", completeLayers)
	return cmd
}

// resultSummary reads "all 20 features" for an unfiltered result and
// "3 of 20 features" otherwise.
func resultSummary(res catalog.Result) string {
	if !res.Filtered {
		return fmt.Sprintf("all %d features", res.Total)
	}
	if len(res.Features) == 0 {
		return fmt.Sprintf("no match among %d features", res.Total)
	}
	return fmt.Sprintf("%d of %d features", len(res.Features), res.Total)
}

func completeLayers(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, info := range catalog.AllLayers() {
		out = append(out, string(info.ID)+"\t"+info.Label)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// =============================================================================
// chain
// =============================================================================

func (c *CLI) chainCommand() *cobra.Command {
	var (
		direction string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:               "chain <id>",
		Short:             "Trace the transitive dependencies or dependents of a feature",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeFeatureIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := catalog.ParseDirection(direction)
			if err != nil {
				return err
			}
			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			f, ok := cat.Get(args[0])
			if !ok {
				return herrors.New(herrors.ErrCodeFeatureNotFound, "feature %q not found", args[0])
			}
			start := time.Now()
			chain := cat.Chain(f.ID, dir)
			observe(cmd.Context(), observability.QueryChain, start, len(chain))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), chain)
			}

			p := newPrinter(cmd.OutOrStdout())
			verb := "needs"
			if dir == catalog.Downstream {
				verb = "is needed by"
			}
			p.info("%s %s %d feature(s)", f.Name, verb, len(chain))
			p.features(chain)
			return nil
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", string(catalog.Upstream), "upstream (dependencies) or downstream (dependents)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.RegisterFlagCompletionFunc("direction", cobra.FixedCompletions(
		[]string{string(catalog.Upstream), string(catalog.Downstream)}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// =============================================================================
// order
// =============================================================================

func (c *CLI) orderCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Print features in install order, prerequisites first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			start := time.Now()
			order, err := cat.InstallOrder()
			if err != nil {
				return err
			}
			observe(cmd.Context(), observability.QueryOrder, start, len(order))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), order)
			}
			p := newPrinter(cmd.OutOrStdout())
			for i, f := range order {
				p.line(fmt.Sprintf("%3d. %s %s", i+1, p.style(StyleHighlight, fmt.Sprintf("%-20s", f.ID)), f.Name))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// =============================================================================
// validate
// =============================================================================

func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [catalog]",
		Short: "Check a catalog for integrity violations and cycles",
		Long: `Check a catalog file (or the configured catalog) for duplicate ids,
dangling references, asymmetric edges, unknown layers and icons, unsafe links
and dependency cycles. Cycles are reported as warnings; every other finding
fails validation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := c.catalogSource()
			if len(args) == 1 {
				source = args[0]
			}
			p := newPrinter(cmd.OutOrStdout())

			cat, err := loadCatalogFrom(cmd.Context(), source, c.validateOptions()...)
			if err != nil {
				reportViolations(p, err)
				return err
			}

			p.success("%s: %d features, %d edges", source, cat.Len(), cat.Graph().EdgeCount())
			for _, w := range cat.Warnings() {
				p.warning("%s", herrors.UserMessage(w))
			}
			if len(cat.Warnings()) == 0 {
				p.detail("no warnings")
			}
			p.keyValue("roots", featureIDs(cat.Roots()))
			p.keyValue("leaves", featureIDs(cat.Leaves()))
			return nil
		},
	}
}

// validateOptions omits the logger: validate prints warnings itself.
func (c *CLI) validateOptions() []catalog.Option {
	if c.Config.Catalog.Lenient {
		return []catalog.Option{catalog.WithLenientSymmetry()}
	}
	return nil
}

func featureIDs(fs []catalog.Feature) string {
	ids := make([]string, len(fs))
	for i, f := range fs {
		ids[i] = f.ID
	}
	return strings.Join(ids, ", ")
}

// reportViolations prints each coded error nested under err.
func reportViolations(p printer, err error) {
	all := herrors.All(err)
	if len(all) <= 1 {
		p.errorf("%s", herrors.UserMessage(err))
		return
	}
	p.errorf("%s", all[0].Message)
	for _, e := range all[1:] {
		p.detail("%s  %s", e.Code, e.Message)
	}
}
