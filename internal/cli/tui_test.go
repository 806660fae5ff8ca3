package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/codecity/pkg/layout"
	"github.com/matzehuels/codecity/pkg/metrics"
	"github.com/matzehuels/codecity/pkg/scene"
	"github.com/matzehuels/codecity/pkg/tree"
)

func sampleScene(t *testing.T) *scene.Scene {
	t.Helper()
	root := tree.BuildTree([]tree.Record{
		{Path: "a/b.txt", LOC: 10, Count: 5},
		{Path: "a/c.txt", LOC: 20, Count: 2},
		{Path: "d.txt", LOC: 5, Count: 1},
	})
	heat := metrics.Normalize(root)
	return scene.Build(layout.Compute(root, heat), heat, scene.DefaultPalette())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m InspectModel, keys ...string) InspectModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(InspectModel)
	}
	return m
}

func TestInspectModelNavigation(t *testing.T) {
	m := NewInspectModel(sampleScene(t))
	if len(m.Items) != 5 {
		t.Fatalf("Items = %d, want 5", len(m.Items))
	}

	p, ok := m.Selected()
	if !ok || p.Kind != tree.KindDirectory || p.Node.FullPath != "" {
		t.Errorf("initial selection = %+v, want root", p)
	}

	m = press(m, "down", "j", "k")
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}

	m = press(m, "G")
	if m.Cursor != 4 {
		t.Errorf("Cursor after G = %d, want 4", m.Cursor)
	}
	m = press(m, "down")
	if m.Cursor != 4 {
		t.Errorf("Cursor past end = %d, want 4", m.Cursor)
	}
	m = press(m, "g", "up")
	if m.Cursor != 0 {
		t.Errorf("Cursor past start = %d, want 0", m.Cursor)
	}
}

func TestInspectModelFilters(t *testing.T) {
	tests := []struct {
		name  string
		keys  []string
		want  int
		label string
	}{
		{"all", nil, 5, "all"},
		{"buildings", []string{"tab"}, 3, "buildings"},
		{"foundations", []string{"tab", "tab"}, 2, "foundations"},
		{"wraps around", []string{"tab", "tab", "tab"}, 5, "all"},
		{"depth 1", []string{"-"}, 3, "all"},
		{"depth 0", []string{"-", "-"}, 1, "all"},
		{"buildings at depth 1", []string{"tab", "-"}, 1, "buildings"},
		{"depth floor", []string{"-", "-", "-"}, 1, "all"},
		{"depth restored", []string{"-", "-", "+"}, 3, "all"},
		{"depth ceiling", []string{"+", "="}, 5, "all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(NewInspectModel(sampleScene(t)), tt.keys...)
			if len(m.Items) != tt.want {
				t.Errorf("Items = %d, want %d", len(m.Items), tt.want)
			}
			if m.Filter.String() != tt.label {
				t.Errorf("Filter = %s, want %s", m.Filter, tt.label)
			}
		})
	}
}

func TestInspectModelCursorClampedOnFilter(t *testing.T) {
	m := press(NewInspectModel(sampleScene(t)), "G", "tab", "tab")
	if m.Cursor != len(m.Items)-1 {
		t.Errorf("Cursor = %d, want %d", m.Cursor, len(m.Items)-1)
	}
}

func TestInspectModelView(t *testing.T) {
	m := press(NewInspectModel(sampleScene(t)), "tab")
	view := m.View()

	p, _ := m.Selected()
	for _, want := range []string{"Code City", p.Node.FullPath, "Lines", "Commits", "Heat:"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestInspectModelQuit(t *testing.T) {
	m := NewInspectModel(sampleScene(t))
	for _, k := range []string{"q", "esc"} {
		var msg tea.KeyMsg
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = key(k)
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("Update(%s) returned nil cmd", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("Update(%s) should quit", k)
		}
	}
}

func TestInspectModelWindowSize(t *testing.T) {
	m := NewInspectModel(sampleScene(t))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if got := next.(InspectModel).Height; got != 5 {
		t.Errorf("Height = %d, want 5", got)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
		{30 * 24 * time.Hour, "May 16, 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
				t.Errorf("formatRelativeTime(-%s) = %q, want %q", tt.ago, got, tt.want)
			}
		})
	}
}
