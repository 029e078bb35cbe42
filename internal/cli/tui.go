package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hyperhive/hivegraph/pkg/catalog"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// exploreKeys are the explorer's key bindings. Letters go to the search
// box, so navigation uses arrows and control keys only.
type exploreKeys struct {
	Up        key.Binding
	Down      key.Binding
	NextLayer key.Binding
	PrevLayer key.Binding
	Details   key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func defaultExploreKeys() exploreKeys {
	return exploreKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		NextLayer: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "layer"),
		),
		PrevLayer: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev layer"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("⏎", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back/quit"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k exploreKeys) help(bindings ...key.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return strings.Join(parts, "  ")
}

// =============================================================================
// exploreModel - Interactive catalog explorer
// =============================================================================

// exploreModel is the bubbletea model behind the explore command. Typing
// filters the feature list, tab cycles the layer filter and enter opens the
// selected feature's details.
type exploreModel struct {
	cat    *catalog.Catalog
	keys   exploreKeys
	input  textinput.Model
	detail viewport.Model

	layers []catalog.Layer
	layer  int // 0 is every layer, otherwise layers[layer-1]
	result catalog.Result

	cursor     int
	offset     int
	height     int
	showDetail bool
	quitting   bool
}

func newExploreModel(cat *catalog.Catalog, text string) exploreModel {
	in := textinput.New()
	in.Placeholder = "type to filter by name, description or keyword"
	in.Prompt = "/ "
	in.SetValue(text)
	in.Focus()

	m := exploreModel{
		cat:    cat,
		keys:   defaultExploreKeys(),
		input:  in,
		detail: viewport.New(80, 20),
		layers: cat.LayerIDs(),
		height: 15,
	}
	m.refresh()
	return m
}

func (m exploreModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-9, 5)
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-4, 5)
		m.input.Width = max(msg.Width-4, 20)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.showDetail {
			return m.updateDetail(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Back):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.move(1)
			return m, nil
		case key.Matches(msg, m.keys.NextLayer):
			m.layer = (m.layer + 1) % (len(m.layers) + 1)
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.PrevLayer):
			m.layer = (m.layer + len(m.layers)) % (len(m.layers) + 1)
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Details):
			if f, ok := m.selected(); ok {
				m.showDetail = true
				m.detail.SetContent(m.detailContent(f))
				m.detail.GotoTop()
			}
			return m, nil
		}
	}

	if m.showDetail {
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.cursor, m.offset = 0, 0
		m.refresh()
	}
	return m, cmd
}

func (m exploreModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back, m.keys.Details) {
		m.showDetail = false
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// refresh re-runs the query and keeps the cursor inside the result.
func (m *exploreModel) refresh() {
	q := catalog.Query{Text: m.input.Value()}
	if m.layer > 0 {
		q.Layers = []catalog.Layer{m.layers[m.layer-1]}
	}
	m.result = m.cat.Filter(q)
	if n := len(m.result.Features); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.clampOffset()
}

func (m *exploreModel) move(delta int) {
	n := len(m.result.Features)
	if n == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	m.clampOffset()
}

func (m *exploreModel) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m exploreModel) selected() (catalog.Feature, bool) {
	if m.cursor >= len(m.result.Features) {
		return catalog.Feature{}, false
	}
	return m.result.Features[m.cursor], true
}

func (m exploreModel) layerLabel() string {
	if m.layer == 0 {
		return "all layers"
	}
	return m.layers[m.layer-1].Info().Label
}

func (m exploreModel) detailContent(f catalog.Feature) string {
	var b strings.Builder
	deps, staleDeps := m.cat.Resolve(f.DependsOn)
	feeds, staleFeeds := m.cat.Resolve(f.FeedsInto)
	printFeature(printer{w: &b, color: true}, f, deps, feeds, staleDeps, staleFeeds)
	return b.String()
}

func (m exploreModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	if m.showDetail {
		b.WriteString(m.detail.View())
		b.WriteString("\n\n")
		b.WriteString(listDimStyle.Render(m.keys.help(m.keys.Up, m.keys.Down, m.keys.Back)))
		return b.String()
	}

	b.WriteString(StyleTitle.Render("HyperHive Features"))
	b.WriteString("  ")
	b.WriteString(StyleHighlight.Render("[" + m.layerLabel() + "]"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.result.Features))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		f := m.result.Features[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, f.ID, f.Name, f.Layer.Info().Label})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Feature", "Layer").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := m.offset + row
			if idx >= len(m.result.Features) {
				return lipgloss.NewStyle()
			}
			if idx == m.cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col == 3 {
				return layerStyle(m.result.Features[idx].Layer)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if len(m.result.Features) == 0 {
		b.WriteString(StyleWarning.Render("  No features match."))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s  %s", resultSummary(m.result),
		m.keys.help(m.keys.Up, m.keys.Down, m.keys.NextLayer, m.keys.Details, m.keys.Back))))

	return b.String()
}
