package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wfip/internal/model"
)

// GetRecentAnalyses is set by the cmd package before starting the dashboard.
var GetRecentAnalyses func() ([]model.UIAnalysis, error)

type heatmapDashboardModel struct {
	table      table.Model
	analyses   []model.UIAnalysis
	lastUpdate time.Time
	err        error
	width      int
	height     int
}

type heatmapTickMsg time.Time
type analysesRefreshedMsg []model.UIAnalysis

var heatmapTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))

func NewHeatmapDashboardModel() heatmapDashboardModel {
	columns := []table.Column{
		{Title: "UI", Width: 25},
		{Title: "COMPLIANCE", Width: 12},
		{Title: "FEATURES", Width: 10},
		{Title: "COMPLIANT", Width: 10},
		{Title: "HIGH RISK", Width: 30},
		{Title: "DEPRECATED", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return heatmapDashboardModel{table: t}
}

func (m heatmapDashboardModel) Init() tea.Cmd {
	return tea.Batch(refreshAnalysesCmd(), tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return heatmapTickMsg(t)
	}))
}

func (m heatmapDashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(m.width)
		m.table.SetHeight(m.height - 8) // Adjust for header/footer
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case heatmapTickMsg:
		return m, refreshAnalysesCmd()

	case analysesRefreshedMsg:
		m.analyses = msg
		m.lastUpdate = time.Now()
		m.updateTableRows()
		return m, nil

	case error:
		m.err = msg
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *heatmapDashboardModel) updateTableRows() {
	rows := []table.Row{}
	for _, a := range m.analyses {
		highRisk := strings.Join(a.HighRiskFeatures, ", ")
		if len(highRisk) > 27 {
			highRisk = highRisk[:27] + "..."
		}
		deprecated := strings.Join(a.DeprecatedFeatures, ", ")
		if len(deprecated) > 17 {
			deprecated = deprecated[:17] + "..."
		}
		rows = append(rows, table.Row{
			a.UIName,
			fmt.Sprintf("%.2f%%", a.ComplianceScore),
			fmt.Sprintf("%d", a.TotalFeatures),
			fmt.Sprintf("%d", a.BaselineCompliant),
			highRisk,
			deprecated,
		})
	}
	m.table.SetRows(rows)
}

func (m heatmapDashboardModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v", m.err)
	}

	var s strings.Builder
	s.WriteString(heatmapTitleStyle.Render(" WFIP Compliance Dashboard") + "\n")
	s.WriteString(fmt.Sprintf("Last updated: %s (press 'q' to quit)\n\n", m.lastUpdate.Format(time.RFC1123)))

	s.WriteString(m.table.View())
	return s.String()
}

func refreshAnalysesCmd() tea.Cmd {
	return func() tea.Msg {
		if GetRecentAnalyses == nil {
			return fmt.Errorf("GetRecentAnalyses function is not set")
		}
		analyses, err := GetRecentAnalyses()
		if err != nil {
			return err
		}
		return analysesRefreshedMsg(analyses)
	}
}

var StartHeatmapDashboard = func() error {
	p := tea.NewProgram(NewHeatmapDashboardModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
