package tui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/matheuskafuri/insight/internal/browser"
	"github.com/matheuskafuri/insight/internal/post"
	"github.com/matheuskafuri/insight/internal/search"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeCategory
	modeHelp
)

// Loader produces a fresh fixture, e.g. by re-reading a file or store.
type Loader func(ctx context.Context) ([]post.Post, error)

type App struct {
	state   *search.State
	reload  Loader
	changes <-chan struct{}
	cursor int
	focus  focusPane
	mode   mode

	width  int
	height int

	// Sub-components
	searchInput textinput.Model
	spinner     spinner.Model
	categoryBar categoryBar

	reloading     bool
	// pendingReload is set when the fixture changes during a reload,
	// which may have read the file before the save.
	pendingReload bool
	previewScroll int
	err           error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Posts []post.Post
	// Reload is optional; without it the "r" key does nothing.
	Reload Loader
	// Changes, when set, triggers a reload each time it receives.
	Changes <-chan struct{}
	// Initial filter inputs.
	Term     string
	Category string
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search articles by title, content, or author..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	state := search.NewState(opts.Posts)
	state.SetTerm(opts.Term)
	if slices.Contains(state.Categories(), opts.Category) {
		state.SetCategory(opts.Category)
	}
	ti.SetValue(state.Term())

	bar := newCategoryBar(state.Categories())
	bar.selectValue(state.Category())

	return &App{
		state:       state,
		reload:      opts.Reload,
		changes:     opts.Changes,
		searchInput: ti,
		spinner:     sp,
		categoryBar: bar,
		mode:        modeNormal,
	}
}

func (a *App) Init() tea.Cmd {
	return a.waitForChange()
}

func (a *App) waitForChange() tea.Cmd {
	if a.changes == nil {
		return nil
	}
	changes := a.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return fixtureChangedMsg{}
	}
}

func (a *App) reloadCmd() tea.Cmd {
	reload := a.reload
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		posts, err := reload(ctx)
		if err != nil {
			return reloadFailedMsg{err: fmt.Errorf("reloading posts: %w", err)}
		}
		return postsLoadedMsg{posts: posts}
	}
}

func (a *App) startReload() tea.Cmd {
	a.reloading = true
	return tea.Batch(a.reloadCmd(), a.spinner.Tick)
}

// startPendingReload runs the reload queued by a fixture change that
// arrived while the previous one was in flight.
func (a *App) startPendingReload() tea.Cmd {
	if !a.pendingReload || a.reload == nil || a.reloading {
		return nil
	}
	a.pendingReload = false
	log.Debug().Msg("running queued reload")
	return a.startReload()
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case postsLoadedMsg:
		a.reloading = false
		a.state.Reset(msg.posts)
		a.categoryBar.setCategories(a.state.Categories(), a.state.Category())
		if a.cursor >= len(a.state.Results()) {
			a.cursor = max(0, len(a.state.Results())-1)
		}
		log.Info().Int("posts", len(msg.posts)).Int("results", len(a.state.Results())).Msg("posts reloaded")
		return a, a.startPendingReload()

	case fixtureChangedMsg:
		log.Info().Msg("fixture changed, reloading")
		cmds := []tea.Cmd{a.waitForChange()}
		if a.reload != nil {
			if a.reloading {
				a.pendingReload = true
			} else {
				cmds = append(cmds, a.startReload())
			}
		}
		return a, tea.Batch(cmds...)

	case reloadFailedMsg:
		a.reloading = false
		a.err = msg.err
		log.Error().Err(msg.err).Msg("reload failed")
		return a, a.startPendingReload()

	case errMsg:
		a.err = msg.err
		log.Error().Err(msg.err).Msg("tui error")
		return a, nil

	case spinner.TickMsg:
		if a.reloading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

// filtered is called after every change to the filter inputs.
func (a *App) filtered() {
	a.cursor = 0
	a.previewScroll = 0
	q := a.state.Query()
	log.Debug().
		Str("term", q.Term).
		Str("category", q.Category).
		Int("results", len(a.state.Results())).
		Msg("recomputed results")
}

// clear resets the search term and category.
func (a *App) clear() {
	a.state.Clear()
	a.searchInput.SetValue("")
	a.categoryBar.selectValue(search.AllCategories)
	a.filtered()
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	// Mode-specific handling
	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeCategory:
		return a.handleCategoryKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	results := a.state.Results()

	// Normal mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(results)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "g", "home":
		a.cursor = 0
		a.previewScroll = 0
		return a, nil
	case "G", "end":
		a.cursor = max(0, len(results)-1)
		a.previewScroll = 0
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if p := a.selected(); p != nil {
			return a, openBrowserCmd(p.Link)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		return a, a.searchInput.Focus()
	case "c":
		a.mode = modeCategory
		a.categoryBar.active = true
		return a, nil
	case "x", "esc":
		if !a.state.Query().IsZero() {
			a.clear()
		}
		return a, nil
	case "r":
		if a.reload != nil && !a.reloading {
			return a, a.startReload()
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.Blur()
		a.clear()
		return a, nil
	case "enter", "tab":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	// Only recompute on actual value changes, not cursor moves etc.
	if a.state.SetTerm(a.searchInput.Value()) {
		a.filtered()
	}
	return a, cmd
}

func (a *App) handleCategoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	changed := false
	switch msg.String() {
	case "esc", "c", "enter":
		a.mode = modeNormal
		a.categoryBar.active = false
		return a, nil
	case "left", "h":
		changed = a.categoryBar.prev()
	case "right", "l", " ":
		changed = a.categoryBar.next()
	case "0":
		changed = a.categoryBar.selectIndex(0)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		changed = a.categoryBar.selectIndex(int(msg.String()[0] - '0'))
	case "x":
		a.clear()
		return a, nil
	}

	if changed && a.state.SetCategory(a.categoryBar.value()) {
		a.filtered()
	}
	return a, nil
}

func (a *App) selected() *post.Post {
	results := a.state.Results()
	if len(results) == 0 || a.cursor >= len(results) {
		return nil
	}
	return &results[a.cursor]
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  insight")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	// Layout calculations
	headerHeight := 1
	searchHeight := 1
	categoryHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - searchHeight - categoryHeight - statusHeight - 2 // borders

	listWidth := int(float64(a.width) * 0.45)
	previewWidth := a.width - listWidth

	if contentHeight < 3 {
		contentHeight = 3
	}

	// Header
	headerLeft := headerStyle.Render("Insight Explorer")
	headerRight := headerTaglineStyle.Render("Discover, Learn, Grow ")
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	searchRow := " " + a.searchInput.View()
	categories := a.categoryBar.render(a.width)

	results := a.state.Results()

	// List pane
	innerListW := listWidth - 4 // border + padding
	listContent := renderList(results, a.cursor, contentHeight, innerListW)

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	// Preview pane
	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(a.selected(), innerPreviewW, contentHeight, a.previewScroll)

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(
		len(results),
		a.categoryBar.label(),
		a.state.Term(),
		a.width,
		a.mode,
		a.reloading,
	)

	if a.reloading {
		status = a.spinner.View() + " " + status
	}

	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, searchRow, categories, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("Insight Explorer")
	dim := helpDimStyle

	help := title + dim.Render(" — Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through results\n" +
		"  g/G           First / last result\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Filtering") + "\n" +
		"  /             Search title, content and author\n" +
		"  c             Choose a category\n" +
		"  x, esc        Clear search and category\n\n" +
		dim.Render("Category Mode") + "\n" +
		"  ←/→, h/l     Previous / next category\n" +
		"  0             All categories\n" +
		"  1-9           Category by number\n" +
		"  esc, c        Done\n\n" +
		dim.Render("General") + "\n" +
		"  o, enter      Open link in browser\n" +
		"  r             Reload posts\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	if err != nil {
		return err
	}
	if q := app.state.Query(); !q.IsZero() {
		log.Info().Str("term", q.Term).Str("category", q.Category).Msg("session ended with filters")
	}
	return nil
}
