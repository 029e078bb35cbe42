package cli

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [text]",
		Short: "Browse the catalog interactively",
		Long: `Open an interactive explorer over the catalog.

Type to filter by name, description or keyword. Tab cycles the layer filter,
enter shows the selected feature's details and esc goes back or quits.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(cmd.OutOrStdout()) {
				return errors.New("explore needs an interactive terminal; use search or show instead")
			}
			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			p := tea.NewProgram(newExploreModel(cat, strings.Join(args, " ")),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}
}
