// Package tui is the interactive terminal front end of clientdesk. It talks
// to a running API server through pkg/clientsdk and refetches the list after
// every change.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aussiebroadwan/clientdesk/pkg/clientsdk"
)

// API is the subset of *clientsdk.SDKClient the UI needs.
type API interface {
	ListClients(ctx context.Context, search string) ([]clientsdk.Client, error)
	CreateClient(ctx context.Context, req clientsdk.CreateClientRequest) (*clientsdk.Client, error)
	UpdateClient(ctx context.Context, id int64, req clientsdk.UpdateClientRequest) (*clientsdk.Client, error)
	DeleteClient(ctx context.Context, id int64) error
}

const requestTimeout = 10 * time.Second

type mode int

const (
	modeList mode = iota
	modeSearch
	modeNew
	modeEdit
	modeConfirmDelete
)

const (
	fieldName = iota
	fieldEmail
	fieldPhone
	fieldCount
)

// Model is the root bubbletea model.
type Model struct {
	api API
	now func() time.Time

	clients []clientsdk.Client
	cursor  int
	sortBy  sortKey
	search  string
	loading bool

	err       error
	statusMsg string

	mode        mode
	searchInput textinput.Model
	fields      []textinput.Model
	fieldFocus  int
	editingID   int64
}

// New creates the model. Call Init to fetch the first page.
func New(api API) *Model {
	si := textinput.New()
	si.Placeholder = "search by name"
	si.CharLimit = 100
	si.Width = 40
	si.Prompt = "/ "

	return &Model{
		api:         api,
		now:         time.Now,
		loading:     true,
		searchInput: si,
	}
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(api API) error {
	_, err := tea.NewProgram(New(api), tea.WithAltScreen()).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.loadClients()
}

func (m *Model) loadClients() tea.Cmd {
	search := m.search
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		clients, err := m.api.ListClients(ctx, search)
		return clientsLoadedMsg{clients: clients, err: err}
	}
}

func (m *Model) selected() (clientsdk.Client, bool) {
	if m.cursor < 0 || m.cursor >= len(m.clients) {
		return clientsdk.Client{}, false
	}
	return m.clients[m.cursor], true
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.clients = msg.clients
			sortClients(m.clients, m.sortBy)
			if m.cursor >= len(m.clients) {
				m.cursor = max(0, len(m.clients)-1)
			}
		}
		return m, nil

	case clientSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = modeList
		m.err = nil
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case clientDeletedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.statusMsg = fmt.Sprintf("Deleted: %s", msg.name)
		}
		m.loading = true
		return m, m.loadClients()
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case modeSearch:
		return m.updateSearch(msg)
	case modeNew, modeEdit:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(keyMsg, DefaultKeyMap.Quit) {
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}

	m.statusMsg = ""
	m.err = nil

	switch {
	case key.Matches(keyMsg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, DefaultKeyMap.Down):
		if m.cursor < len(m.clients)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, DefaultKeyMap.Refresh):
		m.loading = true
		return m, m.loadClients()
	case key.Matches(keyMsg, DefaultKeyMap.Sort):
		m.sortBy = (m.sortBy + 1) % sortKeyCount
		sortClients(m.clients, m.sortBy)
		m.cursor = 0
	case key.Matches(keyMsg, DefaultKeyMap.Search):
		m.mode = modeSearch
		m.searchInput.SetValue(m.search)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()
	case key.Matches(keyMsg, DefaultKeyMap.New):
		m.mode = modeNew
		return m, m.initForm(nil)
	case key.Matches(keyMsg, DefaultKeyMap.Edit):
		if c, ok := m.selected(); ok {
			m.mode = modeEdit
			return m, m.initForm(&c)
		}
	case key.Matches(keyMsg, DefaultKeyMap.Delete):
		if _, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
		}
	}

	return m, nil
}

func (m *Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.mode = modeList
			m.searchInput.Blur()
			if m.search == "" {
				return m, nil
			}
			m.search = ""
			m.loading = true
			return m, m.loadClients()
		case "enter":
			m.mode = modeList
			m.searchInput.Blur()
			m.search = strings.TrimSpace(m.searchInput.Value())
			m.cursor = 0
			m.loading = true
			return m, m.loadClients()
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	c, ok := m.selected()
	if !ok || (keyMsg.String() != "y" && keyMsg.String() != "Y") {
		m.mode = modeList
		return m, nil
	}
	return m, m.deleteClient(c)
}

func (m *Model) deleteClient(c clientsdk.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := m.api.DeleteClient(ctx, c.ID)
		return clientDeletedMsg{name: c.Name, err: err}
	}
}

func (m *Model) initForm(editing *clientsdk.Client) tea.Cmd {
	m.fields = make([]textinput.Model, fieldCount)

	m.fields[fieldName] = textinput.New()
	m.fields[fieldName].Placeholder = "Ada Lovelace"
	m.fields[fieldName].CharLimit = 200
	m.fields[fieldName].Width = 40

	m.fields[fieldEmail] = textinput.New()
	m.fields[fieldEmail].Placeholder = "ada@example.com"
	m.fields[fieldEmail].CharLimit = 254
	m.fields[fieldEmail].Width = 40

	m.fields[fieldPhone] = textinput.New()
	m.fields[fieldPhone].Placeholder = "Optional"
	m.fields[fieldPhone].CharLimit = 50
	m.fields[fieldPhone].Width = 25

	m.editingID = 0
	if editing != nil {
		m.fields[fieldName].SetValue(editing.Name)
		m.fields[fieldEmail].SetValue(editing.Email)
		if editing.Phone != nil {
			m.fields[fieldPhone].SetValue(*editing.Phone)
		}
		m.editingID = editing.ID
	}

	m.err = nil
	m.fieldFocus = fieldName
	return m.fields[fieldName].Focus()
}

func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.mode = modeList
			m.err = nil
			return m, nil

		case "tab", "down":
			return m, m.focusField((m.fieldFocus + 1) % fieldCount)

		case "shift+tab", "up":
			return m, m.focusField((m.fieldFocus - 1 + fieldCount) % fieldCount)

		case "enter":
			if m.fieldFocus == fieldCount-1 {
				return m, m.saveClient()
			}
			return m, m.focusField(m.fieldFocus + 1)

		case "ctrl+s":
			return m, m.saveClient()
		}
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *Model) focusField(i int) tea.Cmd {
	m.fields[m.fieldFocus].Blur()
	m.fieldFocus = i
	return m.fields[i].Focus()
}

func (m *Model) saveClient() tea.Cmd {
	name := strings.TrimSpace(m.fields[fieldName].Value())
	email := strings.TrimSpace(m.fields[fieldEmail].Value())
	phone := strings.TrimSpace(m.fields[fieldPhone].Value())
	id := m.editingID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if id > 0 {
			_, err := m.api.UpdateClient(ctx, id, clientsdk.UpdateClientRequest{
				Name:  &name,
				Email: &email,
				Phone: &phone,
			})
			return clientSavedMsg{name: name, err: err}
		}

		req := clientsdk.CreateClientRequest{Name: name, Email: email}
		if phone != "" {
			req.Phone = &phone
		}
		_, err := m.api.CreateClient(ctx, req)
		return clientSavedMsg{name: name, err: err}
	}
}

func (m *Model) View() string {
	switch m.mode {
	case modeNew, modeEdit:
		return appStyle.Render(m.viewForm())
	default:
		return appStyle.Render(m.viewList())
	}
}

func (m *Model) viewForm() string {
	var s strings.Builder

	if m.mode == modeNew {
		s.WriteString(titleStyle.Render("New Client") + "\n\n")
	} else {
		s.WriteString(titleStyle.Render("Edit Client") + "\n\n")
	}

	labels := []string{"Name:", "Email:", "Phone:"}
	for i, label := range labels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			indicator = "> "
			labelStyle = selectedStyle
		}
		fmt.Fprintf(&s, "%s%s\n  %s\n\n", indicator, labelStyle.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s.WriteString(errorStyle.Render(formatError(m.err)) + "\n\n")
	}

	s.WriteString(helpStyle.Render("tab/shift+tab: fields  enter: next/save  ctrl+s: save  esc: cancel"))
	return s.String()
}

func (m *Model) viewList() string {
	var s strings.Builder

	header := "Clients"
	if m.search != "" {
		header += subtitleStyle.Render(fmt.Sprintf("  matching %q", m.search))
	}
	header += subtitleStyle.Render("  sorted by " + m.sortBy.String())
	s.WriteString(titleStyle.Render(header) + "\n\n")

	if m.mode == modeSearch {
		s.WriteString(m.searchInput.View() + "\n\n")
	}

	switch {
	case m.loading:
		s.WriteString("Loading clients...\n")
		return s.String()
	case m.err != nil:
		s.WriteString(errorStyle.Render(formatError(m.err)) + "\n\n")
	case m.statusMsg != "":
		s.WriteString(statusStyle.Render(m.statusMsg) + "\n\n")
	}

	if len(m.clients) == 0 {
		if m.search != "" {
			s.WriteString(subtitleStyle.Render("No clients match your search.") + "\n")
		} else {
			s.WriteString(subtitleStyle.Render("No clients yet. Press 'n' to add one.") + "\n")
		}
	} else {
		s.WriteString(m.viewTable())
	}

	s.WriteString("\n")
	if m.mode == modeConfirmDelete {
		c, _ := m.selected()
		s.WriteString(warnStyle.Render(fmt.Sprintf("Delete %s? (y/N)", c.Name)))
	} else {
		s.WriteString(helpStyle.Render("j/k: move  /: search  s: sort  n: new  e: edit  d: delete  r: refresh  q: quit"))
	}
	return s.String()
}

func (m *Model) viewTable() string {
	var s strings.Builder
	row := "%-2s%-26s %-32s %-16s %s"

	s.WriteString(headerStyle.Render(fmt.Sprintf(row, "", "Name", "Email", "Phone", "Added")) + "\n")

	now := m.now()
	for i, c := range m.clients {
		phone := "-"
		if c.Phone != nil && *c.Phone != "" {
			phone = *c.Phone
		}

		indicator := ""
		if i == m.cursor {
			indicator = ">"
		}
		line := fmt.Sprintf(row,
			indicator,
			truncateStr(c.Name, 26),
			truncateStr(c.Email, 32),
			truncateStr(phone, 16),
			addedAgo(c.CreatedAt, now),
		)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		s.WriteString(line + "\n")
	}
	return s.String()
}

// formatError flattens API validation errors into one line per field.
func formatError(err error) string {
	var apiErr *clientsdk.APIError
	if errors.As(err, &apiErr) && len(apiErr.Errors) > 0 {
		parts := make([]string, 0, len(apiErr.Errors)+1)
		parts = append(parts, apiErr.Message)
		for _, fe := range apiErr.Errors {
			parts = append(parts, fmt.Sprintf("  %s: %s", fe.Field, fe.Message))
		}
		return strings.Join(parts, "\n")
	}
	return fmt.Sprintf("Error: %v", err)
}
