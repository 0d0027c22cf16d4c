package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hearthkeep/hearth/internal/shared"
	"github.com/hearthkeep/hearth/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	ItemsView
	DetailView
	SyncView
)

// Menu entries that are not entity collections.
const (
	menuDue = "Maintenance Due"
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	engine   *tasks.HomeEngine
	width    int
	height   int
	snapshot *tasks.Snapshot

	menuList   list.Model
	itemList   list.Model
	collection string
	detail     string

	progressChan chan tasks.ProgressUpdate
	syncDone     chan syncOutcome
	progress     tasks.ProgressUpdate
	pullResult   *tasks.PullResult
	pushResult   *tasks.PushResult
	syncNote     string

	err  error
	help help.Model
	keys keyMap
}

type snapshotLoadedMsg struct {
	snapshot *tasks.Snapshot
	err      error
}

type progressUpdateMsg tasks.ProgressUpdate

type syncCompleteMsg struct {
	pull *tasks.PullResult
	push *tasks.PushResult
	err  error
}

// syncOutcome carries sync results from the worker goroutine back into the
// update loop, so the model is only ever mutated there.
type syncOutcome struct {
	pull *tasks.PullResult
	push *tasks.PushResult
	err  error
}

// NewModel creates a new TUI model over the engine.
func NewModel(ctx context.Context, engine *tasks.HomeEngine) *Model {
	return &Model{
		ctx:    ctx,
		view:   MenuView,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init loads the snapshot from the local cache.
func (m *Model) Init() tea.Cmd {
	return m.loadSnapshot()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.menuList.Width() == 0 {
			m.menuList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.itemList.Width() == 0 {
			m.itemList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MenuView:
			return m.handleMenuKeys(msg)
		case ItemsView:
			return m.handleItemsKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case SyncView:
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case snapshotLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.snapshot = msg.snapshot
		m.menuList = list.New(m.menuItems(), list.NewDefaultDelegate(), 0, 0)
		m.menuList.Title = "Hearth"
		m.menuList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.pullResult = msg.pull
		m.pushResult = msg.push
		m.err = msg.err
		m.view = MenuView
		m.progressChan = nil
		m.syncDone = nil
		if msg.err == nil {
			m.syncNote = fmt.Sprintf("synced: %d pulled, %d pushed", msg.pull.Fetched, msg.push.Published)
		}
		return m, m.loadSnapshot()
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case MenuView:
		return m.renderMenu()
	case ItemsView:
		return m.renderItems()
	case DetailView:
		return m.renderDetail()
	case SyncView:
		return m.renderSync()
	default:
		return ""
	}
}

func (m *Model) menuItems() []list.Item {
	s := m.snapshot
	return []list.Item{
		collectionItem{name: menuDue, count: len(s.Due)},
		collectionItem{name: "Appliances", count: len(s.Appliances)},
		collectionItem{name: "Vehicles", count: len(s.Vehicles)},
		collectionItem{name: "Maintenance Schedules", count: len(s.Schedules)},
		collectionItem{name: "Companies", count: len(s.Companies)},
		collectionItem{name: "Subscriptions", count: len(s.Subscriptions)},
		collectionItem{name: "Properties", count: len(s.Properties)},
		collectionItem{name: "Projects", count: len(s.Projects)},
	}
}

// collectionEntries builds the item list for one menu selection.
func (m *Model) collectionEntries(name string) []list.Item {
	s := m.snapshot
	var items []list.Item
	switch name {
	case menuDue:
		for _, d := range s.Due {
			items = append(items, dueItem(d))
		}
	case "Appliances":
		for _, a := range s.Appliances {
			items = append(items, applianceItem(a))
		}
	case "Vehicles":
		for _, v := range s.Vehicles {
			items = append(items, vehicleItem(v))
		}
	case "Maintenance Schedules":
		for _, sch := range s.Schedules {
			items = append(items, scheduleItem(sch))
		}
	case "Companies":
		for _, c := range s.Companies {
			items = append(items, companyItem(c))
		}
	case "Subscriptions":
		for _, sub := range s.Subscriptions {
			items = append(items, subscriptionItem(sub))
		}
	case "Properties":
		for _, p := range s.Properties {
			items = append(items, propertyItem(p))
		}
	case "Projects":
		for _, p := range s.Projects {
			items = append(items, projectItem(p))
		}
	}
	return items
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "s":
		m.view = SyncView
		return m, m.startSync()
	case "enter":
		selected := m.menuList.SelectedItem()
		if selected == nil {
			return m, nil
		}
		if col, ok := selected.(collectionItem); ok {
			m.collection = col.name
			m.itemList = list.New(m.collectionEntries(col.name), list.NewDefaultDelegate(), 0, 0)
			m.itemList.Title = col.name
			m.itemList.SetSize(m.width-4, m.height-8)
			m.view = ItemsView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.menuList, cmd = m.menuList.Update(msg)
	return m, cmd
}

func (m *Model) handleItemsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = MenuView
		return m, nil
	case "enter":
		selected := m.itemList.SelectedItem()
		if selected == nil {
			return m, nil
		}
		if entity, ok := selected.(entityItem); ok {
			pretty, err := shared.MarshalJSON(entity.model, true)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.detail = string(pretty)
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.itemList, cmd = m.itemList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ItemsView
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case MenuView:
		m.menuList, cmd = m.menuList.Update(msg)
	case ItemsView:
		m.itemList, cmd = m.itemList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		snapshot, err := m.engine.Snapshot(time.Now())
		return snapshotLoadedMsg{snapshot: snapshot, err: err}
	}
}

// startSync pulls remote changes then pushes the local cache, streaming
// progress into the channel the TUI polls.
func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.syncDone = make(chan syncOutcome, 1)
	progress, done := m.progressChan, m.syncDone
	engine, ctx := m.engine, m.ctx

	go func() {
		defer close(progress)
		pull, err := engine.Pull(ctx, progress, nil)
		if err != nil {
			progress <- tasks.ProgressUpdate{Message: fmt.Sprintf("pull failed: %v", err)}
		}
		push, pushErr := engine.Push(ctx, progress, nil)
		if err == nil {
			err = pushErr
		}
		done <- syncOutcome{pull: pull, push: push, err: err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.syncDone
	return func() tea.Msg {
		if progress == nil {
			return nil
		}

		update, ok := <-progress
		if !ok {
			outcome := <-done
			return syncCompleteMsg{pull: outcome.pull, push: outcome.push, err: outcome.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderMenu() string {
	note := ""
	if m.syncNote != "" {
		note = "\n" + styles.ok.Render(m.syncNote)
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.sync, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", m.menuList.View(), note, helpView)
}

func (m *Model) renderItems() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.itemList.View(), helpView)
}

func (m *Model) renderDetail() string {
	title := styles.title.Render(m.collection)
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.detail, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing with relays")

	var phase string
	switch m.progress.Phase {
	case tasks.Fetch:
		phase = fmt.Sprintf("Fetching (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Merge:
		phase = fmt.Sprintf("Merging (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Publish:
		phase = fmt.Sprintf("Publishing (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}
