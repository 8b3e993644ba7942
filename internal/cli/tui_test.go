package cli

import (
	"context"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/cdnlock/pkg/loading"
	"github.com/matzehuels/cdnlock/pkg/pipeline"
)

func testResponse(t *testing.T) *pipeline.Response {
	t.Helper()
	lock := []pipeline.LockEntry{
		{Name: "app", Version: "1.0.0", APIKey: "1", Bundle: "app.js", Requires: []string{"lib#2", "util#0.3"}},
		{Name: "lib", Version: "2.1.0", APIKey: "2", Bundle: "lib.js", Requires: []string{"util#0.3"}},
		{Name: "util", Version: "0.3.1", APIKey: "0.3", Bundle: "util.js"},
	}
	g, err := loading.Schedule(context.Background(), pipeline.Packages(lock), loading.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return &pipeline.Response{Lock: lock, Graph: g, Definition: g.Definition()}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewBatchListModel(t *testing.T) {
	m := NewBatchListModel(testResponse(t))

	var got []string
	for _, it := range m.items {
		got = append(got, it.entry.Name)
	}
	if want := []string{"util", "lib", "app"}; !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want loading order %v", got, want)
	}
	if m.batches != 3 {
		t.Errorf("batches = %d, want 3", m.batches)
	}
}

func TestBatchListModelNavigation(t *testing.T) {
	var model tea.Model = NewBatchListModel(testResponse(t))

	steps := []struct {
		key  string
		want int
	}{
		{"up", 0},
		{"down", 1},
		{"j", 2},
		{"down", 2},
		{"k", 1},
		{"p", 0},
		{"n", 1},
	}
	for _, s := range steps {
		model, _ = model.Update(keyMsg(s.key))
		if got := model.(BatchListModel).Cursor; got != s.want {
			t.Fatalf("after %q: cursor = %d, want %d", s.key, got, s.want)
		}
	}

	if _, cmd := model.Update(keyMsg("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestBatchListModelView(t *testing.T) {
	var model tea.Model = NewBatchListModel(testResponse(t))
	model, _ = model.Update(keyMsg("down"))
	model, _ = model.Update(keyMsg("down"))

	view := model.View()
	for _, want := range []string{"Loading Graph", "util", "lib", "app", "app#1", "lib#2, util#0.3", "[3/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() is missing %q", want)
		}
	}
}

func TestBatchListModelEmpty(t *testing.T) {
	m := NewBatchListModel(&pipeline.Response{})
	if !strings.Contains(m.View(), "nothing to load") {
		t.Error("empty model should say there is nothing to load")
	}
	m.jumpBatch(1)
}

func TestLockRows(t *testing.T) {
	rows := lockRows(testResponse(t))
	want := [][]string{
		{"0", "util", "0.3.1", "0.3", "util.js"},
		{"1", "lib", "2.1.0", "2", "lib.js"},
		{"2", "app", "1.0.0", "1", "app.js"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("lockRows() = %v, want %v", rows, want)
	}
}
