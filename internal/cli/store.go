package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperhive/hivegraph/pkg/store"
)

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(cmd *cobra.Command, fn func(store.Store) error) error {
	s, err := c.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			c.Logger.Warn("close store", "error", cerr)
		}
	}()
	return fn(s)
}

// =============================================================================
// publish
// =============================================================================

func (c *CLI) publishCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <name>",
		Short: "Save the loaded catalog to the catalog store",
		Long: `Validate the loaded catalog and save it under a name in the configured
store (file, badger or mongo). Publishing an existing name replaces it.`,
		Example: `  hivegraph publish staging --catalog ./catalog.toml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			return c.withStore(cmd, func(s store.Store) error {
				prog := newProgress(c.Logger)
				info, err := s.Save(cmd.Context(), args[0], cat)
				if err != nil {
					return err
				}
				prog.done("Published " + info.Name)

				p := newPrinter(cmd.OutOrStdout())
				p.success("Published %s (%d features)", info.Name, info.Features)
				p.keyValue("store", c.Config.Store.Backend)
				p.keyValue("digest", info.Digest[:12])
				p.nextStep("Serve it", fmt.Sprintf("%s pull %s -o catalog.json && %s serve --catalog catalog.json", appName, info.Name, appName))
				return nil
			})
		},
	}
}

// =============================================================================
// pull
// =============================================================================

func (c *CLI) pullCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "pull <name>",
		Short: "Load a catalog from the catalog store and write it out",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var names []string
			_ = c.withStore(cmd, func(s store.Store) error {
				infos, err := s.List(cmd.Context())
				for _, info := range infos {
					names = append(names, info.Name)
				}
				return err
			})
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s store.Store) error {
				cat, err := s.Load(cmd.Context(), args[0], c.catalogOptions()...)
				if err != nil {
					return err
				}
				if format == "" {
					format = formatFromPath(output)
				}
				if output == "" || output == "-" {
					return encodeCatalog(cmd.OutOrStdout(), cat, format)
				}

				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := encodeCatalog(f, cat, format); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}

				p := newPrinter(cmd.OutOrStdout())
				p.success("Pulled %s (%d features)", args[0], cat.Len())
				p.file(output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "json, yaml or toml (default from the output extension, else json)")
	return cmd
}

// =============================================================================
// catalogs
// =============================================================================

func (c *CLI) catalogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogs",
		Short: "Manage catalogs in the catalog store",
	}
	cmd.AddCommand(c.catalogsListCommand())
	cmd.AddCommand(c.catalogsDeleteCommand())
	return cmd
}

func (c *CLI) catalogsListCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s store.Store) error {
				infos, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), infos)
				}

				p := newPrinter(cmd.OutOrStdout())
				if len(infos) == 0 {
					p.info("No catalogs in the %s store", c.Config.Store.Backend)
					p.nextStep("Publish one", appName+" publish <name>")
					return nil
				}
				for _, info := range infos {
					p.line(fmt.Sprintf("  %s %s %s %s",
						p.style(StyleHighlight, fmt.Sprintf("%-20s", info.Name)),
						p.style(StyleNumber, fmt.Sprintf("%3d features", info.Features)),
						p.style(StyleDim, info.Digest[:12]),
						p.style(StyleDim, info.SavedAt.Local().Format(time.DateTime))))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *CLI) catalogsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>...",
		Short: "Delete stored catalogs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s store.Store) error {
				p := newPrinter(cmd.OutOrStdout())
				for _, name := range args {
					if err := s.Delete(cmd.Context(), name); err != nil {
						return err
					}
					p.success("Deleted %s", name)
				}
				return nil
			})
		},
	}
}
