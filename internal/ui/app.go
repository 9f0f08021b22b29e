package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/clubnews/internal/app"
	"github.com/abelbrown/clubnews/internal/filter"
	"github.com/abelbrown/clubnews/internal/news"
	"github.com/abelbrown/clubnews/internal/otel"
	"github.com/abelbrown/clubnews/internal/watch"
)

// readerReserve is the number of lines kept for the reader pane when the
// terminal is too short to show every configured row.
const readerReserve = 8

// chromeLines counts header, both tab rows, separators and the status bar.
const chromeLines = 6

// minReaderHeight is the smallest reader pane, in lines.
const minReaderHeight = 3

// App is the Bubble Tea model. It owns no data of its own: the session's
// view state is the single source of truth and App only routes events to it.
type App struct {
	session *app.Session
	changes <-chan watch.Change

	input   textinput.Model
	spinner spinner.Model
	reader  viewport.Model

	// readerFor is the fingerprint of the item shown in the reader, so the
	// pane scrolls back to the top only when the selection changes.
	readerFor string

	loading   bool
	showDebug bool
	err       error

	width  int
	height int
}

// New creates an App over a started session.
func New(s *app.Session) App {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filtrar notícias"
	ti.CharLimit = 120
	ti.SetValue(s.State().FilterText())

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	a := App{
		session: s,
		input:   ti,
		spinner: sp,
		reader:  viewport.New(0, readerReserve),
	}
	a.syncReader()
	return a
}

// WithWatch returns a copy of a that reloads whenever ch delivers a change.
func (a App) WithWatch(ch <-chan watch.Change) App {
	a.changes = ch
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return waitForChange(a.changes)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a, cmd := a.update(msg)
	a.syncReader()
	return a, cmd
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = max(10, msg.Width-20)
		state := a.session.State()
		state.SetPageSize(a.pageSizeFor(msg.Height))
		a.reader.Width = msg.Width
		a.reader.Height = max(minReaderHeight, msg.Height-chromeLines-state.PageSize()-1)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.session.State().ScrollBy(1)
		case tea.MouseButtonWheelDown:
			a.session.State().ScrollBy(-1)
		}
		return a, nil

	case ResolveDone:
		a.loading = false
		a.session.Log().Debug("Applying reload", "reason", msg.Reason, "tier", msg.Result.Tier)
		a.session.Apply(msg.Result)
		return a, nil

	case FeedChanged:
		a.session.Events().Emit(otel.Event{
			Level:  otel.LevelInfo,
			Kind:   otel.KindWatch,
			Comp:   "ui",
			Source: msg.Change.Path,
			Msg:    msg.Change.Op.String(),
		})
		cmds := []tea.Cmd{waitForChange(a.changes)}
		if !a.loading {
			a.loading = true
			cmds = append(cmds, reloadCmd(a.session, "watch"), a.spinner.Tick)
		}
		return a, tea.Batch(cmds...)

	case watchClosed:
		a.changes = nil
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.input.Focused() {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) handleKeyMsg(msg tea.KeyMsg) (App, tea.Cmd) {
	a.session.Events().Emit(otel.Event{
		Level: otel.LevelDebug,
		Kind:  otel.KindKeyPress,
		Comp:  "ui",
		Msg:   msg.String(),
	})

	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	state := a.session.State()

	if state.FilterFocused() {
		switch {
		case key.Matches(msg, keys.Escape):
			a.input.SetValue("")
			a.session.SetFilterText("")
			a.blurFilter()
			return a, nil
		case key.Matches(msg, keys.Enter):
			a.blurFilter()
			return a, nil
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		a.session.SetFilterText(strings.TrimSpace(a.input.Value()))
		return a, cmd
	}

	if a.showDebug {
		if key.Matches(msg, keys.Debug) || key.Matches(msg, keys.Escape) {
			a.showDebug = false
		} else if key.Matches(msg, keys.Quit) {
			return a, tea.Quit
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.NextTab):
		a.session.CycleCategory(1)

	case key.Matches(msg, keys.PrevTab):
		a.session.CycleCategory(-1)

	case key.Matches(msg, keys.TabNumbers):
		tabs := news.Tabs()
		if i := int(msg.String()[0] - '1'); i < len(tabs) {
			a.session.SetCategory(tabs[i])
		}

	case key.Matches(msg, keys.Down):
		state.Select(state.SelectedIndex() + 1)

	case key.Matches(msg, keys.Up):
		state.Select(state.SelectedIndex() - 1)

	case key.Matches(msg, keys.Next):
		state.Advance()

	case key.Matches(msg, keys.Prev):
		state.Retreat()

	case key.Matches(msg, keys.First):
		state.Select(0)

	case key.Matches(msg, keys.Last):
		state.Select(state.Len() - 1)

	case key.Matches(msg, keys.PageDown):
		state.ScrollBy(-state.PageSize())

	case key.Matches(msg, keys.PageUp):
		state.ScrollBy(state.PageSize())

	case key.Matches(msg, keys.ReaderDown):
		a.reader.LineDown(1)

	case key.Matches(msg, keys.ReaderUp):
		a.reader.LineUp(1)

	case key.Matches(msg, keys.Filter):
		state.FocusFilter()
		a.input.Focus()
		return a, textinput.Blink

	case key.Matches(msg, keys.Escape):
		if state.FilterText() != "" {
			a.input.SetValue("")
			a.session.SetFilterText("")
		}
		a.err = nil

	case key.Matches(msg, keys.Reload):
		if a.loading {
			return a, nil
		}
		a.loading = true
		return a, tea.Batch(reloadCmd(a.session, "key"), a.spinner.Tick)

	case key.Matches(msg, keys.Enter):
		a.err = a.session.MarkRead(state.Selected())

	case key.Matches(msg, keys.Unread):
		a.err = a.session.MarkUnread(state.Selected())

	case key.Matches(msg, keys.Debug):
		a.showDebug = true
	}

	return a, nil
}

// syncReader refreshes the reader pane from the current selection.
func (a *App) syncReader() {
	if a.session.State() == nil {
		return
	}
	it := a.session.State().Selected()
	a.reader.SetContent(RenderReader(it, a.width))
	if fp := it.Fingerprint(); fp != a.readerFor {
		a.readerFor = fp
		a.reader.GotoTop()
	}
}

func (a *App) blurFilter() {
	a.input.Blur()
	a.session.State().BlurFilter()
}

// pageSizeFor returns how many rows fit in a terminal of the given height,
// never more than the configured visible rows.
func (a App) pageSizeFor(height int) int {
	rows := a.session.Config().UI.VisibleRows
	if avail := height - chromeLines - readerReserve; avail < rows {
		rows = avail
	}
	return max(1, rows)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return "A carregar..."
	}

	if a.showDebug {
		overlay := debugOverlay(a.session.Ring(), a.width, a.height-1)
		return overlay + "\n" + debugStatusBar(a.width)
	}

	state := a.session.State()
	doc := state.Document()

	var b strings.Builder
	b.WriteString(RenderHeader(doc, a.width))
	b.WriteString("\n")
	counts := filter.Counts(doc.Items)
	b.WriteString(RenderTabs(append([]news.Category{news.All}, news.TopCategories...), state.Category(), counts))
	b.WriteString("\n\n")

	visible := state.VisibleRows()
	b.WriteString(RenderList(visible, state.SelectedIndex()-state.ScrollOffset(), a.session.IsRead, a.width))
	b.WriteString("\n\n")
	b.WriteString(a.reader.View())
	b.WriteString("\n\n")
	b.WriteString(RenderTabs(news.BottomCategories, state.Category(), counts))
	b.WriteString("\n")

	if state.FilterFocused() || state.FilterText() != "" {
		b.WriteString(RenderFilterBar(a.input.View(), state.Len(), doc.Len(), a.width))
		b.WriteString("\n")
	}
	if a.err != nil {
		b.WriteString(ErrorStyle.Render("Erro: " + a.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(RenderStatusBar(state.SelectedIndex(), state.Len(), a.session.LastResult().Tier,
		a.loading, a.spinner.View(), a.width))
	return b.String()
}

// reloadCmd resolves off the event loop. The result is applied in Update
// so the document and view are swapped within a single tick.
func reloadCmd(s *app.Session, reason string) tea.Cmd {
	return func() tea.Msg {
		return ResolveDone{Result: s.Resolve(context.Background()), Reason: reason}
	}
}

// waitForChange blocks on the next watcher change. A nil channel yields no
// command.
func waitForChange(ch <-chan watch.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return watchClosed{}
		}
		return FeedChanged{Change: c}
	}
}
