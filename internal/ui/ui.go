package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/services"
	"github.com/desertthunder/favdl/internal/shared"
	"github.com/desertthunder/favdl/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	EntryListView
	ConfirmView
	DownloadView
	ResultView
)

// tickInterval is how often the download view polls the progress counter.
const tickInterval = 100 * time.Millisecond

// Options configures a [Model].
type Options struct {
	MediaID    string
	Credential services.Credential
	Download   tasks.DownloadOpts
	// Initial selection expression, e.g. "1,3-5". Empty selects every entry.
	Selection string
	// Receive side of the engine's update channel, optional.
	Updates <-chan tasks.ProgressUpdate
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	view      ViewState
	engine    *tasks.Engine
	opts      Options
	width     int
	height    int
	entryList list.Model
	info      models.CollectionInfo
	entries   []models.Entry
	selected  []bool
	partial   bool
	done      chan struct{}
	snapshot  tasks.ProgressSnapshot
	lastMsg   string
	bar       progress.Model
	result    *tasks.DownloadRunResult
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model that lists the collection and downloads the selected entries.
func NewModel(ctx context.Context, engine *tasks.Engine, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		ctx:    ctx,
		cancel: cancel,
		view:   LoadingView,
		engine: engine,
		opts:   opts,
		bar:    progress.New(progress.WithDefaultGradient()),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Result returns the download result once the run has finished, or nil.
func (m *Model) Result() *tasks.DownloadRunResult {
	return m.result
}

// Err returns the error that stopped the TUI, if any.
func (m *Model) Err() error {
	return m.err
}

// Init initializes the TUI by fetching the collection listing.
func (m *Model) Init() tea.Cmd {
	return m.fetchCollection()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.selected != nil {
			m.entryList.SetSize(msg.Width-4, msg.Height-8)
		}
		m.bar.Width = max(msg.Width-8, 10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				m.cancel()
				return m, tea.Quit
			}
			return m, nil
		case EntryListView:
			return m.handleEntryListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case DownloadView:
			if key.Matches(msg, m.keys.cancel) {
				m.cancel()
				m.lastMsg = "Stopping after the current entry..."
			}
			return m, nil
		case ResultView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == EntryListView {
		var cmd tea.Cmd
		m.entryList, cmd = m.entryList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCollectionFetched:
		data := msg.data.(collectionFetched)
		if data.err != nil && !errors.Is(data.err, shared.ErrPageLimit) {
			m.err = data.err
			m.view = ResultView
			return m, nil
		}
		m.partial = data.err != nil
		m.setEntries(data.result)
		m.view = EntryListView
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.lastMsg = update.Message
		return m, m.waitForUpdate()

	case MsgProgressTick:
		m.snapshot = msg.data.(tasks.ProgressSnapshot)
		if m.view != DownloadView {
			return m, nil
		}
		return m, m.tick()

	case MsgDownloadComplete:
		m.result = msg.data.(*tasks.DownloadRunResult)
		m.snapshot = m.engine.Progress().Snapshot()
		m.view = ResultView
		if m.done != nil {
			close(m.done)
			m.done = nil
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) setEntries(result *tasks.CollectionResult) {
	m.info = result.Info
	m.entries = result.Entries
	m.selected = make([]bool, len(m.entries))

	idx, err := shared.ParseSelection(m.opts.Selection, len(m.entries))
	if err != nil {
		idx, _ = shared.ParseSelection("", len(m.entries))
		m.lastMsg = err.Error()
	}
	for _, i := range idx {
		m.selected[i] = true
	}

	m.entryList = list.New(m.items(), list.NewDefaultDelegate(), 0, 0)
	m.entryList.Title = m.info.Title
	if m.entryList.Title == "" {
		m.entryList.Title = "Collection " + m.opts.MediaID
	}
	m.entryList.SetShowHelp(false)
	if m.width > 0 {
		m.entryList.SetSize(m.width-4, m.height-8)
	}
}

func (m *Model) items() []list.Item {
	items := make([]list.Item, len(m.entries))
	for i, e := range m.entries {
		items[i] = entryItem{index: i, entry: e, selected: m.selected[i]}
	}
	return items
}

// Selected returns the selected entries in collection order.
func (m *Model) Selected() []models.Entry {
	var out []models.Entry
	for i, e := range m.entries {
		if m.selected[i] {
			out = append(out, e)
		}
	}
	return out
}

func (m *Model) handleEntryListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.entryList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.entryList, cmd = m.entryList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.entryList.SelectedItem().(entryItem); ok {
			m.selected[item.index] = !m.selected[item.index]
			return m, m.entryList.SetItems(m.items())
		}
		return m, nil
	case key.Matches(msg, m.keys.all):
		for i := range m.selected {
			m.selected[i] = true
		}
		return m, m.entryList.SetItems(m.items())
	case key.Matches(msg, m.keys.invert):
		for i := range m.selected {
			m.selected[i] = !m.selected[i]
		}
		return m, m.entryList.SetItems(m.items())
	case key.Matches(msg, m.keys.clear):
		for i := range m.selected {
			m.selected[i] = false
		}
		return m, m.entryList.SetItems(m.items())
	case key.Matches(msg, m.keys.enter):
		if len(m.Selected()) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = DownloadView
		return m, m.startDownload()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = EntryListView
		return m, nil
	}
	return m, nil
}

func (m *Model) fetchCollection() tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.FetchCollection(m.ctx, m.opts.MediaID, m.opts.Credential)
		return collectionFetchedMsg(result, err)
	}
}

func (m *Model) startDownload() tea.Cmd {
	entries := m.Selected()
	m.done = make(chan struct{})
	m.snapshot = tasks.ProgressSnapshot{Total: len(entries)}

	run := func() tea.Msg {
		return downloadCompleteMsg(m.engine.Download(m.ctx, entries, m.opts.Credential, m.opts.Download))
	}
	return tea.Batch(run, m.tick(), m.waitForUpdate())
}

// tick polls the shared progress counter.
func (m *Model) tick() tea.Cmd {
	p := m.engine.Progress()
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return progressTickMsg(p.Snapshot())
	})
}

func (m *Model) waitForUpdate() tea.Cmd {
	updates, done := m.opts.Updates, m.done
	if updates == nil || done == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-updates:
			return progressUpdateMsg(update)
		case <-done:
			return nil
		}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return styles.title.Render(fmt.Sprintf("Fetching collection %s...", m.opts.MediaID))
	case EntryListView:
		return m.renderEntryList()
	case ConfirmView:
		return m.renderConfirm()
	case DownloadView:
		return m.renderDownload()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderEntryList() string {
	status := fmt.Sprintf("%d of %d selected", len(m.Selected()), len(m.entries))
	if m.partial {
		status += " " + styles.warn.Render("(listing stopped at the page limit)")
	}
	helpKeys := []key.Binding{m.keys.toggle, m.keys.all, m.keys.invert, m.keys.clear, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", m.entryList.View(), status, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Download %d entries?", len(m.Selected())))
	output := m.opts.Download.OutputDir
	if output == "" {
		output = "."
	}
	info := fmt.Sprintf("\nCollection: %s\nOutput: %s\n", m.entryList.Title, output)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderDownload() string {
	title := styles.title.Render("Downloading")
	counter := fmt.Sprintf("%d/%d entries (%.0f%%)", m.snapshot.Value, m.snapshot.Total, m.snapshot.Percent())
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.cancel})
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s\n\n%s", title, m.bar.ViewAs(m.snapshot.Percent()/100), counter, m.lastMsg, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Failed to fetch collection: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	r := m.result
	title := styles.ok.Render("✓ Download Complete")
	if r.Cancelled {
		title = styles.warn.Render("Download Stopped")
	}
	info := fmt.Sprintf(
		"\nEntries: %d/%d processed\nSegments: %d downloaded, %d failed, %d skipped\nOutput: %s\nElapsed: %s",
		r.Processed, r.TotalEntries,
		r.Downloaded, r.Failed, r.Skipped,
		r.OutputDir,
		r.Duration().Round(time.Millisecond),
	)

	var failed string
	if r.Failed > 0 || r.FailedEntries > 0 {
		failed = "\n\n" + styles.warn.Render("Failures:")
		for _, eo := range r.Entries {
			if eo.Err != nil {
				failed += fmt.Sprintf("\n  %s %s %s %v", styles.mark(models.StatusFailed), eo.Entry.Title, styles.muted.Render("["+string(eo.Kind)+"]"), eo.Err)
			}
			for _, so := range eo.Segments {
				if so.Status == models.StatusFailed {
					failed += fmt.Sprintf("\n  %s %s %s %v", styles.mark(so.Status), so.Filename, styles.muted.Render("["+string(so.Kind)+"]"), so.Err)
				}
			}
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
