package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#ffd60a")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

// Model defines the application state
type Model struct {
	mainMenu     list.Model
	stockView    table.Model
	locationView table.Model
	alertView    table.Model
	textInput    textinput.Model
	spinner      spinner.Model
	client       *ApiClient
	storables    map[string]Storable
	currentView  string
	status       string
	error        string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel() Model {
	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Initialize main menu items
	items := []list.Item{
		item{title: "Stock Map", desc: "View stock items and where they are placed"},
		item{title: "Locations", desc: "View storage locations and occupancy"},
		item{title: "Alerts", desc: "Expiry, mismatch and unplaced warnings"},
		item{title: "Move Stock", desc: "Assign a stock item to a location"},
		item{title: "Exit", desc: "Exit the application"},
	}

	// Initialize main menu
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "Larder CLI"

	// Initialize stock view
	stockTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Stock ID", Width: 18},
			{Title: "Item", Width: 20},
			{Title: "Qty", Width: 8},
			{Title: "Location", Width: 16},
			{Title: "Expires", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	// Initialize location view
	locationTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Location", Width: 16},
			{Title: "Name", Width: 20},
			{Title: "Type", Width: 14},
			{Title: "Occupancy", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	// Initialize alert view
	alertTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Kind", Width: 18},
			{Title: "Stock ID", Width: 18},
			{Title: "Message", Width: 44},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	// Initialize text input
	ti := textinput.New()
	ti.Placeholder = "stock-id location-id"
	ti.CharLimit = 156
	ti.Width = 40

	// Initialize API client
	client := NewApiClient()

	return Model{
		mainMenu:     mainMenu,
		stockView:    stockTable,
		locationView: locationTable,
		alertView:    alertTable,
		spinner:      s,
		textInput:    ti,
		client:       client,
		storables:    make(map[string]Storable),
		currentView:  "main",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.currentView != "move" {
				return m, tea.Quit
			}
		case "enter":
			if m.currentView == "main" {
				selected, ok := m.mainMenu.SelectedItem().(item)
				if ok {
					switch selected.title {
					case "Exit":
						return m, tea.Quit
					case "Stock Map":
						m.currentView = "stock"
						return m, fetchStock(m.client)
					case "Locations":
						m.currentView = "locations"
						return m, fetchLocations(m.client)
					case "Alerts":
						m.currentView = "alerts"
						return m, fetchAlerts(m.client)
					case "Move Stock":
						m.currentView = "move"
						m.error = ""
						m.status = ""
						m.textInput.SetValue("")
						m.textInput.Focus()
						return m, nil
					}
				}
			} else if m.currentView == "move" && m.textInput.Focused() {
				return m, handleMoveInput(m)
			}
		case "esc":
			if m.currentView != "main" {
				m.currentView = "main"
				m.error = ""
				m.status = ""
			}
		case "r":
			switch m.currentView {
			case "stock":
				return m, fetchStock(m.client)
			case "locations":
				return m, fetchLocations(m.client)
			case "alerts":
				return m, fetchAlerts(m.client)
			}
		case "u":
			if m.currentView == "stock" {
				if row := m.stockView.SelectedRow(); len(row) > 0 {
					return m, moveStock(m.client, row[0], "")
				}
			}
		}
	case stockMsg:
		m.storables = msg.storables
		m.stockView.SetRows(stockRows(msg.stock, msg.storables))
		return m, nil
	case locationsMsg:
		m.locationView.SetRows(locationRows(msg.locations, msg.occupancy))
		return m, nil
	case alertsMsg:
		m.alertView.SetRows(alertRows(msg.warnings))
		return m, nil
	case errorMsg:
		m.error = msg.err
		return m, nil
	case moveDoneMsg:
		m.error = ""
		m.status = msg.message
		if m.currentView == "stock" {
			return m, fetchStock(m.client)
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "stock":
		m.stockView, cmd = m.stockView.Update(msg)
	case "locations":
		m.locationView, cmd = m.locationView.Update(msg)
	case "alerts":
		m.alertView, cmd = m.alertView.Update(msg)
	case "move":
		m.textInput, cmd = m.textInput.Update(msg)
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	switch m.currentView {
	case "main":
		return docStyle.Render(m.mainMenu.View())
	case "stock":
		help := "\nPress 'r' to refresh, 'u' to unplace the selected item, 'esc' to go back\n"
		if m.status != "" {
			help += successStyle.Render(m.status) + "\n"
		}
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Stock Map") + "\n\n" + m.stockView.View() + help)
	case "locations":
		help := "\nPress 'r' to refresh, 'esc' to go back\n"
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Storage Locations") + "\n\n" + m.locationView.View() + help)
	case "alerts":
		help := "\nPress 'r' to refresh, 'esc' to go back\n"
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Alerts") + "\n\n" + m.alertView.View() + help)
	case "move":
		help := "\nFormat: <stock-id> <location-id>  (empty location unplaces)\nPress 'enter' to move, 'esc' to go back\n"
		if m.status != "" {
			help += successStyle.Render(m.status) + "\n"
		}
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Move Stock") + "\n\n" + m.textInput.View() + help)
	default:
		return "Loading..."
	}
}

// Custom message types for the tea.Model
type stockMsg struct {
	stock     []StockItem
	storables map[string]Storable
}

type locationsMsg struct {
	locations []Location
	occupancy map[string]int
}

type alertsMsg struct {
	warnings []Warning
}

type errorMsg struct {
	err string
}

type moveDoneMsg struct {
	message string
}

// fetchStock retrieves stock items and the catalog from the API
func fetchStock(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		stock, err := client.GetStock()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching stock: %v", err)}
		}
		storables, err := client.GetStorables()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching catalog: %v", err)}
		}
		byID := make(map[string]Storable, len(storables))
		for _, s := range storables {
			byID[s.ID] = s
		}
		return stockMsg{stock: stock, storables: byID}
	}
}

// fetchLocations retrieves locations and their current occupancy
func fetchLocations(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		locations, err := client.GetLocations()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching locations: %v", err)}
		}
		occupancy := make(map[string]int, len(locations))
		for _, loc := range locations {
			n, err := client.GetOccupancy(loc.ID)
			if err != nil {
				return errorMsg{err: fmt.Sprintf("Error fetching occupancy: %v", err)}
			}
			occupancy[loc.ID] = n
		}
		return locationsMsg{locations: locations, occupancy: occupancy}
	}
}

// fetchAlerts retrieves current warnings
func fetchAlerts(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		warnings, err := client.GetAlerts()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching alerts: %v", err)}
		}
		return alertsMsg{warnings: warnings}
	}
}

// moveStock assigns a stock item to a location
func moveStock(client *ApiClient, stockItemID, locationID string) tea.Cmd {
	return func() tea.Msg {
		result, err := client.MoveStock(stockItemID, locationID)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error moving stock: %v", err)}
		}
		if locationID == "" {
			return moveDoneMsg{message: fmt.Sprintf("Unplaced %s", stockItemID)}
		}
		msg := fmt.Sprintf("Moved %s to %s", stockItemID, locationID)
		if result.StorageMismatch {
			msg += " (storage mismatch)"
		}
		return moveDoneMsg{message: msg}
	}
}

// handleMoveInput parses the move command and submits it
func handleMoveInput(m Model) tea.Cmd {
	input := strings.TrimSpace(m.textInput.Value())
	if input == "" {
		return func() tea.Msg {
			return errorMsg{err: "Please enter a stock id and location id"}
		}
	}

	fields := strings.Fields(input)
	stockItemID := fields[0]
	locationID := ""
	if len(fields) > 1 {
		locationID = fields[1]
	}
	return moveStock(m.client, stockItemID, locationID)
}

// stockRows converts stock items to table rows
func stockRows(stock []StockItem, storables map[string]Storable) []table.Row {
	rows := make([]table.Row, len(stock))
	for i, s := range stock {
		name := s.StorableID
		if storable, ok := storables[s.StorableID]; ok {
			name = storable.Name
		}
		location := s.LocationID
		if location == "" {
			location = warnStyle.Render("unplaced")
		}
		expires := "-"
		if s.ExpiresAt != nil {
			expires = s.ExpiresAt.Format(time.DateOnly)
		}
		rows[i] = table.Row{s.ID, name, fmt.Sprintf("%.1f", s.Quantity), location, expires}
	}
	return rows
}

// locationRows converts locations to table rows
func locationRows(locations []Location, occupancy map[string]int) []table.Row {
	rows := make([]table.Row, len(locations))
	for i, loc := range locations {
		occ := fmt.Sprintf("%d", occupancy[loc.ID])
		if loc.Capacity > 0 {
			occ = fmt.Sprintf("%d / %d", occupancy[loc.ID], loc.Capacity)
		}
		rows[i] = table.Row{loc.ID, loc.Name, loc.Type, occ}
	}
	return rows
}

// alertRows converts warnings to table rows
func alertRows(warnings []Warning) []table.Row {
	rows := make([]table.Row, len(warnings))
	for i, w := range warnings {
		rows[i] = table.Row{w.Kind, w.StockItemID, w.Message}
	}
	return rows
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
