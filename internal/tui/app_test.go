package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/matheuskafuri/insight/internal/post"
	"github.com/matheuskafuri/insight/internal/search"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, a *App, msgs ...tea.Msg) {
	t.Helper()
	for _, m := range msgs {
		model, _ := a.Update(m)
		if model != a {
			t.Fatalf("Update returned a different model")
		}
	}
}

func typeText(t *testing.T, a *App, s string) {
	t.Helper()
	for _, r := range s {
		send(t, a, runes(string(r)))
	}
}

func resultIDs(a *App) []int {
	var out []int
	for _, p := range a.state.Results() {
		out = append(out, p.ID)
	}
	return out
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a := NewApp(RunOpts{Posts: post.Default()})
	send(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

func TestSearchRecomputesOnEveryKeystroke(t *testing.T) {
	a := newTestApp(t)

	send(t, a, runes("/"))
	if a.mode != modeSearch {
		t.Fatalf("expected search mode, got %v", a.mode)
	}

	typeText(t, a, "quan")
	if diff := cmp.Diff([]int{3}, resultIDs(a)); diff != "" {
		t.Errorf("after typing quan (-want +got):\n%s", diff)
	}
	if a.state.Term() != "quan" {
		t.Errorf("term = %q", a.state.Term())
	}

	send(t, a, tea.KeyMsg{Type: tea.KeyBackspace})
	if diff := cmp.Diff([]int{3}, resultIDs(a)); diff != "" {
		t.Errorf("after backspacing to qua (-want +got):\n%s", diff)
	}

	for range 3 {
		send(t, a, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	if a.state.Term() != "" || len(a.state.Results()) != 10 {
		t.Errorf("empty term should match everything, got %q with %d results", a.state.Term(), len(a.state.Results()))
	}
}

func TestSearchAIScenario(t *testing.T) {
	a := newTestApp(t)
	send(t, a, runes("/"))
	typeText(t, a, "AI")
	send(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	if a.mode != modeNormal {
		t.Errorf("enter should leave search mode")
	}
	if diff := cmp.Diff([]int{1, 8, 10}, resultIDs(a)); diff != "" {
		t.Errorf("results (-want +got):\n%s", diff)
	}
	if a.state.Term() != "AI" {
		t.Errorf("enter should keep the term, got %q", a.state.Term())
	}
}

func TestSearchEscClearsEverything(t *testing.T) {
	a := newTestApp(t)

	send(t, a, runes("c"), tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyEsc})
	send(t, a, runes("/"))
	typeText(t, a, "zzz-no-match")
	if len(a.state.Results()) != 0 {
		t.Fatalf("expected no results, got %v", resultIDs(a))
	}

	send(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.mode != modeNormal {
		t.Errorf("esc should leave search mode")
	}
	if a.searchInput.Value() != "" || a.state.Category() != search.AllCategories {
		t.Errorf("esc should clear term and category: %q %q", a.searchInput.Value(), a.state.Category())
	}
	if len(a.state.Results()) != 10 {
		t.Errorf("expected full fixture after clear, got %d", len(a.state.Results()))
	}
}

func TestCategorySelection(t *testing.T) {
	a := newTestApp(t)

	send(t, a, runes("c"))
	if a.mode != modeCategory || !a.categoryBar.active {
		t.Fatalf("expected category mode")
	}

	send(t, a, tea.KeyMsg{Type: tea.KeyRight})
	if a.state.Category() != "Technology" {
		t.Errorf("category = %q, want Technology", a.state.Category())
	}
	if diff := cmp.Diff([]int{1, 3, 10}, resultIDs(a)); diff != "" {
		t.Errorf("results (-want +got):\n%s", diff)
	}

	send(t, a, runes("5"))
	if diff := cmp.Diff([]int{8, 9}, resultIDs(a)); diff != "" {
		t.Errorf("Health (-want +got):\n%s", diff)
	}

	// Wrap around from All to the last category.
	send(t, a, runes("0"), tea.KeyMsg{Type: tea.KeyLeft})
	if a.state.Category() != "Health" {
		t.Errorf("left from All should wrap to Health, got %q", a.state.Category())
	}

	send(t, a, runes("0"))
	if a.state.Category() != search.AllCategories || len(a.state.Results()) != 10 {
		t.Errorf("0 should select all categories")
	}

	send(t, a, runes("9"))
	if a.state.Category() != search.AllCategories {
		t.Errorf("out of range number should be ignored, got %q", a.state.Category())
	}

	send(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.mode != modeNormal || a.categoryBar.active {
		t.Errorf("esc should leave category mode")
	}
}

func TestClearKey(t *testing.T) {
	a := newTestApp(t)

	send(t, a, runes("/"))
	typeText(t, a, "dr.")
	send(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	send(t, a, runes("c"), runes("4"), tea.KeyMsg{Type: tea.KeyEsc})
	if diff := cmp.Diff([]int{6, 7}, resultIDs(a)); diff != "" {
		t.Fatalf("results (-want +got):\n%s", diff)
	}

	send(t, a, runes("j"))
	if a.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", a.cursor)
	}

	send(t, a, runes("x"))
	if len(a.state.Results()) != 10 {
		t.Errorf("x should restore the fixture, got %d results", len(a.state.Results()))
	}
	if a.cursor != 0 {
		t.Errorf("cursor should reset, got %d", a.cursor)
	}
	if a.categoryBar.value() != search.AllCategories || a.searchInput.Value() != "" {
		t.Errorf("controls not reset")
	}
}

func TestNavigationStaysInBounds(t *testing.T) {
	a := newTestApp(t)

	send(t, a, runes("k"))
	if a.cursor != 0 {
		t.Errorf("cursor moved above first result")
	}
	send(t, a, runes("G"))
	if a.cursor != 9 {
		t.Errorf("G: cursor = %d, want 9", a.cursor)
	}
	send(t, a, runes("j"))
	if a.cursor != 9 {
		t.Errorf("cursor moved past last result")
	}
	send(t, a, runes("g"))
	if a.cursor != 0 {
		t.Errorf("g: cursor = %d, want 0", a.cursor)
	}
}

func TestInitialFilters(t *testing.T) {
	a := NewApp(RunOpts{Posts: post.Default(), Term: "design", Category: "Design"})
	if diff := cmp.Diff([]int{4, 5}, resultIDs(a)); diff != "" {
		t.Errorf("results (-want +got):\n%s", diff)
	}
	if a.categoryBar.label() != "Design" || a.searchInput.Value() != "design" {
		t.Errorf("controls not initialised: %q %q", a.categoryBar.label(), a.searchInput.Value())
	}

	a = NewApp(RunOpts{Posts: post.Default(), Category: "Sports"})
	if len(a.state.Results()) != 10 {
		t.Errorf("unknown initial category should be ignored")
	}
}

func TestReload(t *testing.T) {
	calls := 0
	reload := func(ctx context.Context) ([]post.Post, error) {
		calls++
		return post.Default()[:5], nil
	}
	a := NewApp(RunOpts{Posts: post.Default(), Reload: reload, Category: "Health"})

	_, cmd := a.Update(runes("r"))
	if cmd == nil || !a.reloading {
		t.Fatalf("expected reload command")
	}
	msg := a.reloadCmd()()
	send(t, a, msg)

	if calls != 1 {
		t.Errorf("expected loader to be called, calls = %d", calls)
	}
	if a.reloading {
		t.Error("reloading flag should reset")
	}
	// Health is gone from the reloaded fixture.
	if a.state.Category() != search.AllCategories || a.categoryBar.selected != 0 {
		t.Errorf("stale category kept: %q", a.state.Category())
	}
	if len(a.state.Results()) != 5 {
		t.Errorf("expected 5 results after reload, got %d", len(a.state.Results()))
	}
}

func TestReloadError(t *testing.T) {
	reload := func(ctx context.Context) ([]post.Post, error) {
		return nil, errors.New("disk gone")
	}
	a := newTestApp(t)
	a.reload = reload

	send(t, a, a.reloadCmd()())
	if a.err == nil || !strings.Contains(a.err.Error(), "disk gone") {
		t.Fatalf("expected reload error, got %v", a.err)
	}
	if !strings.Contains(a.View(), "disk gone") {
		t.Error("error should be shown in the status line")
	}

	send(t, a, runes("j"))
	if a.err != nil {
		t.Error("keypress should clear the error")
	}
}

func TestOpenWithoutLinkReportsError(t *testing.T) {
	a := newTestApp(t)
	_, cmd := a.Update(runes("o"))
	if cmd == nil {
		t.Fatal("expected open command")
	}
	msg, ok := cmd().(errMsg)
	if !ok || msg.err == nil {
		t.Fatalf("expected errMsg for post without link, got %#v", msg)
	}
}

func TestViewShowsCountAndEmptyState(t *testing.T) {
	a := newTestApp(t)

	view := a.View()
	for _, want := range []string{"Insight Explorer", "10 articles found", "All Categories", "The Future of Artificial Intelligence"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	send(t, a, runes("/"))
	typeText(t, a, "quantum")
	if !strings.Contains(a.View(), "1 article found") {
		t.Error("expected singular count")
	}

	typeText(t, a, "zzz")
	view = a.View()
	if !strings.Contains(view, "0 articles found") || !strings.Contains(view, emptyResultsText) {
		t.Error("expected empty state")
	}
}

func TestHelpMode(t *testing.T) {
	a := newTestApp(t)
	send(t, a, runes("?"))
	if a.mode != modeHelp || !strings.Contains(a.View(), "Keyboard Shortcuts") {
		t.Fatal("expected help view")
	}
	send(t, a, runes("x"))
	if a.mode != modeHelp || len(a.state.Results()) != 10 {
		t.Error("keys other than close should be ignored in help")
	}
	send(t, a, runes("?"))
	if a.mode != modeNormal {
		t.Error("? should close help")
	}
}

func TestViewBeforeSize(t *testing.T) {
	a := NewApp(RunOpts{Posts: nil})
	if !strings.Contains(a.View(), "insight") {
		t.Error("expected placeholder view before the first resize")
	}
}

func TestFixtureChangeTriggersReload(t *testing.T) {
	changes := make(chan struct{}, 1)
	reload := func(ctx context.Context) ([]post.Post, error) {
		return post.Default()[:3], nil
	}
	a := NewApp(RunOpts{Posts: post.Default(), Reload: reload, Changes: changes})

	wait := a.Init()
	if wait == nil {
		t.Fatal("expected Init to wait for changes")
	}
	changes <- struct{}{}
	msg := wait()
	if _, ok := msg.(fixtureChangedMsg); !ok {
		t.Fatalf("expected fixtureChangedMsg, got %#v", msg)
	}

	_, cmd := a.Update(msg)
	if cmd == nil || !a.reloading {
		t.Fatal("expected a reload after the fixture changed")
	}
	send(t, a, a.reloadCmd()())
	if len(a.state.Results()) != 3 {
		t.Errorf("expected 3 results after reload, got %d", len(a.state.Results()))
	}

	close(changes)
	if msg := a.waitForChange()(); msg != nil {
		t.Errorf("closed channel should end the wait, got %#v", msg)
	}
}

func TestInitWithoutChanges(t *testing.T) {
	if cmd := newTestApp(t).Init(); cmd != nil {
		t.Error("Init should be a no-op without a change channel")
	}
}

func TestFixtureChangeDuringReloadQueuesAnother(t *testing.T) {
	calls := 0
	reload := func(ctx context.Context) ([]post.Post, error) {
		calls++
		return post.Default()[:calls+2], nil
	}
	a := NewApp(RunOpts{Posts: post.Default(), Reload: reload})

	send(t, a, runes("r"))
	if !a.reloading {
		t.Fatal("expected reload in flight")
	}
	send(t, a, fixtureChangedMsg{})
	if !a.pendingReload {
		t.Fatal("change during reload should be queued")
	}

	// The in-flight reload finishes with data read before the save.
	_, cmd := a.Update(a.reloadCmd()())
	if len(a.state.Results()) != 3 {
		t.Fatalf("expected 3 results from first reload, got %d", len(a.state.Results()))
	}
	if cmd == nil || !a.reloading || a.pendingReload {
		t.Fatalf("expected queued reload to start: reloading=%v pending=%v", a.reloading, a.pendingReload)
	}

	send(t, a, a.reloadCmd()())
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(a.state.Results()) != 4 {
		t.Errorf("expected 4 results after queued reload, got %d", len(a.state.Results()))
	}
	if a.reloading || a.pendingReload {
		t.Error("no further reload should be scheduled")
	}
}

func TestQueuedReloadRunsAfterFailure(t *testing.T) {
	fail := true
	reload := func(ctx context.Context) ([]post.Post, error) {
		if fail {
			return nil, errors.New("file half written")
		}
		return post.Default()[:2], nil
	}
	a := NewApp(RunOpts{Posts: post.Default(), Reload: reload})

	send(t, a, runes("r"), fixtureChangedMsg{})
	_, cmd := a.Update(a.reloadCmd()())
	if a.err == nil {
		t.Fatal("expected reload error")
	}
	if cmd == nil || !a.reloading {
		t.Fatal("queued reload should start after a failed one")
	}

	fail = false
	send(t, a, a.reloadCmd()())
	if len(a.state.Results()) != 2 {
		t.Errorf("expected 2 results, got %d", len(a.state.Results()))
	}
}

func TestBrowserErrorKeepsReloadRunning(t *testing.T) {
	reload := func(ctx context.Context) ([]post.Post, error) {
		return post.Default(), nil
	}
	a := NewApp(RunOpts{Posts: post.Default(), Reload: reload})

	send(t, a, runes("r"), errMsg{err: errors.New("no browser")})
	if !a.reloading {
		t.Error("an unrelated error should not end the reload")
	}
}
