package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	"github.com/hyperhive/hivegraph/pkg/catalog/hyperhive"
)

func send(m exploreModel, msgs ...tea.Msg) exploreModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(exploreModel)
	}
	return m
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExploreStartsUnfiltered(t *testing.T) {
	m := newExploreModel(hyperhive.MustLoad(), "")
	if m.result.Filtered {
		t.Error("initial result should be unfiltered")
	}
	if len(m.result.Features) != 20 {
		t.Errorf("got %d features, want 20", len(m.result.Features))
	}
	if !strings.Contains(m.View(), "all 20 features") {
		t.Error("view should summarize the unfiltered catalog")
	}
}

func TestExploreTypingFilters(t *testing.T) {
	m := send(newExploreModel(hyperhive.MustLoad(), ""), typed("nfs"))

	if got := m.input.Value(); got != "nfs" {
		t.Fatalf("input = %q, want nfs", got)
	}
	if len(m.result.Features) != 1 || m.result.Features[0].ID != "nfs" {
		t.Errorf("typing nfs should leave only nfs, got %d features", len(m.result.Features))
	}

	m = send(m, typed("zzz"))
	if len(m.result.Features) != 0 {
		t.Errorf("got %d features, want none", len(m.result.Features))
	}
	if !strings.Contains(m.View(), "No features match") {
		t.Error("view should say nothing matched")
	}
}

func TestExploreLayerCycle(t *testing.T) {
	m := newExploreModel(hyperhive.MustLoad(), "")
	tab := tea.KeyMsg{Type: tea.KeyTab}

	m = send(m, tab)
	if m.layerLabel() != catalog.LayerStorage.Info().Label {
		t.Errorf("first tab selects %q, want the storage layer", m.layerLabel())
	}
	if len(m.result.Features) != 3 {
		t.Errorf("storage layer has %d features, want 3", len(m.result.Features))
	}

	for range len(m.layers) {
		m = send(m, tab)
	}
	if m.layer != 0 || m.layerLabel() != "all layers" {
		t.Errorf("tab should wrap back to all layers, got %q", m.layerLabel())
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.layer != len(m.layers) {
		t.Errorf("shift+tab from all layers should select the last layer, got %d", m.layer)
	}
}

func TestExploreCursorStaysInRange(t *testing.T) {
	m := newExploreModel(hyperhive.MustLoad(), "")
	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	m = send(m, up)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up at top, want 0", m.cursor)
	}
	for range 30 {
		m = send(m, down)
	}
	if m.cursor != 19 {
		t.Errorf("cursor = %d after moving past the end, want 19", m.cursor)
	}
	if m.offset+m.height <= m.cursor {
		t.Errorf("cursor %d scrolled out of view (offset %d, height %d)", m.cursor, m.offset, m.height)
	}

	m = send(m, typed("nfs"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d after filtering, want 0", m.cursor)
	}
}

func TestExploreDetails(t *testing.T) {
	m := newExploreModel(hyperhive.MustLoad(), "nfs")
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 60})

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.showDetail {
		t.Fatal("enter should open details")
	}
	view := m.View()
	for _, want := range []string{"NFS", "Depends on", "btrfs-raids"} {
		if !strings.Contains(view, want) {
			t.Errorf("details view lacks %q", want)
		}
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showDetail || m.quitting {
		t.Error("esc in details should return to the list")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc in the list should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc in the list should return tea.Quit")
	}
}

func TestExploreEnterOnEmptyResult(t *testing.T) {
	m := send(newExploreModel(hyperhive.MustLoad(), "zzz"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.showDetail {
		t.Error("enter with no match should not open details")
	}
}
