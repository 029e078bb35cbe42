package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperhive/hivegraph/pkg/cache"
	"github.com/hyperhive/hivegraph/pkg/catalog"
	"github.com/hyperhive/hivegraph/pkg/render/nodelink"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output   string   // output path; "-" writes to stdout
	format   string   // dot, svg or png
	detailed bool     // include short descriptions in node labels
	layers   []string // restrict to these layers
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: string(nodelink.FormatSVG)}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the catalog as a Graphviz diagram",
		Long: `Render the catalog's dependency graph with one cluster per layer.

DOT output is the Graphviz source; svg and png are rendered in-process.
Rendered images are cached by catalog digest, so re-rendering an unchanged
catalog is instant.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default hivegraph.<format>, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add short descriptions to node labels")
	cmd.Flags().StringSliceVarP(&opts.layers, "layer", "l", nil, "restrict to layer(s)")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"dot", "svg", "png"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("layer", completeLayers)

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts renderOpts) error {
	ctx := cmd.Context()
	format, err := nodelink.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	layers, err := catalog.ParseLayers(opts.layers)
	if err != nil {
		return err
	}
	cat, err := c.loadCatalog(ctx)
	if err != nil {
		return err
	}

	ch, err := c.newCache(ctx)
	if err != nil {
		return err
	}
	defer ch.Close()

	prog := newProgress(c.Logger)
	data, cached, err := c.renderDiagram(ctx, ch, cat, format, nodelink.Options{Detailed: opts.detailed, Layers: layers})
	if err != nil {
		return err
	}

	if opts.output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	out := opts.output
	if out == "" {
		out = appName + "." + string(format)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	prog.done("Rendered " + out)

	p := newPrinter(cmd.OutOrStdout())
	p.success("Rendered %s diagram", format)
	p.file(out)
	p.stats(cat.Len(), cat.Graph().EdgeCount(), cached)
	return nil
}

// renderDiagram renders through the cache. cached reports whether the
// bytes came from a previous render.
func (c *CLI) renderDiagram(ctx context.Context, ch cache.Cache, cat *catalog.Catalog, format nodelink.Format, opts nodelink.Options) (data []byte, cached bool, err error) {
	layers := make([]string, len(opts.Layers))
	for i, l := range opts.Layers {
		layers[i] = string(l)
	}
	key := cache.NewDefaultKeyer().ArtifactKey(cat.Digest(), cache.ArtifactKeyOpts{
		Format:   string(format),
		Detailed: opts.Detailed,
		Layers:   layers,
	})

	cached = true
	data, cacheErr, err := cache.GetOrCompute(ctx, ch, key, c.Config.Cache.TTL, func() ([]byte, error) {
		cached = false
		var spin *Spinner
		if format != nodelink.FormatDOT && isTerminal(os.Stderr) {
			spin = newSpinnerWithContext(ctx, os.Stderr, "Rendering with Graphviz...")
			spin.Start()
			defer spin.Stop()
		}
		return nodelink.Render(ctx, nodelink.ToDOT(cat, opts), format)
	})
	if cacheErr != nil {
		c.Logger.Warn("render cache", "error", cacheErr)
	}
	if err != nil {
		return nil, false, err
	}
	c.Logger.Debug("diagram", "format", format, "bytes", len(data), "cached", cached)
	return data, cached, nil
}
