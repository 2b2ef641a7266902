package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stt-cli/internal/activity"
	"stt-cli/internal/model"
	"stt-cli/internal/query"
	"stt-cli/internal/report"
)

type mode int

const (
	modeBrowse mode = iota
	modeInput
	modeConfirmDelete
)

// storeChangedMsg is sent when the bus reports a change, including changes
// made by other processes.
type storeChangedMsg struct{}

type clockTickMsg struct{}

type keyMap struct {
	New      key.Binding
	Edit     key.Binding
	EditLong key.Binding
	Resume   key.Binding
	Fin      key.Binding
	Delete   key.Binding
	Remove   key.Binding
	Reload   key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		New:      key.NewBinding(key.WithKeys("n", "i"), key.WithHelp("n", "new")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		EditLong: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "edit in $EDITOR")),
		Resume:   key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c/enter", "continue")),
		Fin:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fin")),
		Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete + close gap")),
		Remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:  key.NewBinding(key.WithKeys("enter", "y")),
		Cancel:   key.NewBinding(key.WithKeys("esc", "ctrl+g", "n")),
	}
}

type appModel struct {
	acts *activity.Activities
	keys keyMap

	width  int
	height int

	mode  mode
	list  list.Model
	input textinput.Model
	// editing is the item whose activity the input replaces; nil for a new
	// activity.
	editing  *model.Item
	pending  *model.Item
	closeGap bool

	status    string
	statusErr bool

	changes chan struct{}
	detach  func()
}

func newAppModel(acts *activity.Activities) appModel {
	changes := make(chan struct{}, 1)
	unsubscribe := acts.Bus.Subscribe(func(query.Change) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	l := list.New([]list.Item{}, newRowDelegate(acts.Now), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("item", "items")
	l.KeyMap.Quit.SetKeys("q")

	in := textinput.New()
	in.Prompt = "activity> "
	in.Placeholder = "what are you working on?"
	in.ShowSuggestions = true
	in.CharLimit = 0

	m := appModel{
		acts:    acts,
		keys:    defaultKeyMap(),
		list:    l,
		input:   in,
		changes: changes,
		detach:  unsubscribe,
	}
	m.reload()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.changes), tickClock())
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return clockTickMsg{} })
}

func (m appModel) now() time.Time {
	if m.acts.Now != nil {
		return m.acts.Now()
	}
	return time.Now()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case storeChangedMsg:
		m.reload()
		return m, waitForChange(m.changes)

	case clockTickMsg:
		return m, tickClock()

	case editorDoneMsg:
		m.applyEditorResult(msg)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	if m.mode == modeInput {
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	sel, hasSel := m.selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reload):
		m.acts.Cache.Invalidate()
		m.reload()
		m.setStatus("reloaded", nil)
		return m, nil
	case key.Matches(msg, m.keys.New):
		m.editing = nil
		return m, m.openInput("")
	case key.Matches(msg, m.keys.Edit) && hasSel:
		m.editing = &sel
		return m, m.openInput(sel.Activity)
	case key.Matches(msg, m.keys.EditLong) && hasSel:
		cmd, err := m.editActivity(sel)
		if err != nil {
			m.setStatus("", err)
		}
		return m, cmd
	case key.Matches(msg, m.keys.Resume) && hasSel:
		_, err := m.acts.Resume(sel, now)
		m.setStatus("continue "+sel.Activity, err)
		return m, nil
	case key.Matches(msg, m.keys.Fin):
		c, err := m.acts.EndCurrent(now)
		if err == nil {
			m.setStatus("stopped "+c.After.Activity, nil)
		} else {
			m.setStatus("", err)
		}
		return m, nil
	case (key.Matches(msg, m.keys.Delete) || key.Matches(msg, m.keys.Remove)) && hasSel:
		m.pending = &sel
		m.closeGap = key.Matches(msg, m.keys.Delete)
		m.mode = modeConfirmDelete
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlG:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		editing := m.editing
		m.closeInput()
		if text == "" {
			return m, nil
		}
		var err error
		if editing != nil {
			_, err = m.acts.Start(editing.WithActivity(text))
			m.setStatus("renamed to "+text, err)
		} else {
			_, err = m.acts.Start(model.Ongoing(text, m.now()))
			m.setStatus("start working on "+text, err)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm) && m.pending != nil:
		it := *m.pending
		var err error
		if m.closeGap {
			_, err = m.acts.RemoveAndCloseGap(it)
		} else {
			_, err = m.acts.Remove(it)
		}
		m.setStatus("deleted "+it.Activity, err)
	case key.Matches(msg, m.keys.Cancel):
	default:
		return m, nil
	}
	m.pending = nil
	m.mode = modeBrowse
	return m, nil
}

func (m *appModel) openInput(value string) tea.Cmd {
	if suggestions, err := m.acts.Cache.Activities(""); err == nil {
		m.input.SetSuggestions(suggestions)
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.mode = modeInput
	return m.input.Focus()
}

func (m *appModel) closeInput() {
	m.input.Blur()
	m.input.SetValue("")
	m.editing = nil
	m.mode = modeBrowse
}

func (m *appModel) setStatus(msg string, err error) {
	m.statusErr = err != nil
	if err != nil {
		m.status = err.Error()
		if errors.Is(err, activity.ErrNoOngoingItem) {
			m.status = "nothing to stop"
		}
		return
	}
	m.status = msg
}

func (m appModel) selected() (model.Item, bool) {
	row, ok := m.list.SelectedItem().(itemRow)
	if !ok {
		return model.Item{}, false
	}
	return row.item, true
}

// reload refills the list newest first, keeping the selection on the same
// start time when it still exists.
func (m *appModel) reload() {
	var keep *time.Time
	if it, ok := m.selected(); ok {
		keep = &it.Start
	}
	items, err := m.acts.Cache.QueryAll()
	if err != nil {
		m.setStatus("", err)
		return
	}
	slices.Reverse(items)
	rows := make([]list.Item, 0, len(items))
	for _, it := range items {
		rows = append(rows, itemRow{item: it})
	}
	m.list.SetItems(rows)
	if keep != nil {
		for i, it := range items {
			if it.Start.Equal(*keep) {
				m.list.Select(i)
				break
			}
		}
	}
}

func (m *appModel) resize() {
	w := max(m.width, 40)
	h := max(m.height-6, 4)
	m.list.SetSize(w, h)
	m.input.Width = max(w-len(m.input.Prompt)-2, 10)
}

func (m appModel) header() string {
	now := m.now()
	day := midnight(now)
	items, err := m.acts.Cache.QueryItems(query.NewCriteria().WithStartBetween(day, day.AddDate(0, 0, 1)))
	if err != nil {
		return ""
	}
	rep := report.Summing(items, now)
	current := "nothing ongoing"
	if ongoing, _ := m.acts.Cache.OngoingItem(); ongoing != nil {
		current = "on: " + ongoing.Activity + "  " + report.FormatDuration(ongoing.Duration(now))
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("stt")
	return fmt.Sprintf("%s  %s  today: %s", title, current, report.FormatDuration(rep.Work()))
}

func (m appModel) footer() string {
	switch m.mode {
	case modeInput:
		return styleMuted().Render("enter: save  tab: complete  esc: cancel")
	case modeConfirmDelete:
		verb := "delete"
		if m.closeGap {
			verb = "delete and close gap for"
		}
		return lipgloss.NewStyle().Foreground(colorError).Bold(true).
			Render(fmt.Sprintf("%s %q? (y/n)", verb, m.pending.Activity))
	}
	bindings := []key.Binding{m.keys.New, m.keys.Edit, m.keys.EditLong, m.keys.Resume, m.keys.Fin, m.keys.Delete, m.keys.Remove, m.keys.Reload, m.keys.Quit}
	parts := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	parts = append(parts, "/: filter")
	return styleMuted().Render(strings.Join(parts, "  "))
}

func (m appModel) View() string {
	sections := []string{m.header(), m.list.View()}
	if m.mode == modeInput {
		sections = append(sections, lipgloss.NewStyle().Background(colorInputBg).Render(m.input.View()))
	}
	if m.status != "" {
		st := styleMuted()
		if m.statusErr {
			st = lipgloss.NewStyle().Foreground(colorError)
		}
		sections = append(sections, st.Render(m.status))
	}
	sections = append(sections, m.footer())
	return strings.Join(sections, "\n")
}

func midnight(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
