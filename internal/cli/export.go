package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
	"github.com/hyperhive/hivegraph/pkg/graph"
)

// Document formats written by export. Each one is readable by --catalog.
const (
	exportJSON = "json"
	exportYAML = "yaml"
	exportTOML = "toml"
)

func (c *CLI) exportCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as a JSON, YAML or TOML document",
		Long: `Write the loaded catalog to a file or stdout.

The JSON and YAML documents carry the node-link graph alongside the features
and can be loaded back with --catalog. TOML writes the hand-editable catalog
format.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			if format == "" {
				format = formatFromPath(output)
			}

			var buf bytes.Buffer
			if err := encodeCatalog(&buf, cat, format); err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			p := newPrinter(cmd.OutOrStdout())
			p.success("Exported %d features as %s", cat.Len(), format)
			p.file(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "json, yaml or toml (default from the output extension, else json)")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{exportJSON, exportYAML, exportTOML}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func formatFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return exportYAML
	case strings.HasSuffix(path, ".toml"):
		return exportTOML
	}
	return exportJSON
}

func encodeCatalog(w io.Writer, cat *catalog.Catalog, format string) error {
	switch strings.ToLower(format) {
	case exportJSON:
		return graph.Write(cat, w)
	case exportYAML:
		return graph.WriteYAML(cat, w)
	case exportTOML:
		return catalog.Encode(w, cat)
	}
	return herrors.New(herrors.ErrCodeInvalidFormat, "unknown export format %q (want json, yaml or toml)", format)
}
