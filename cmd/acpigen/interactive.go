package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/osforge/acpica-go/bindgen"
	"github.com/osforge/acpica-go/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const visibleRows = 20

type browserModel struct {
	err      error
	cfg      pipeline.Config
	decls    []bindgen.Decl
	filtered []bindgen.Decl
	filter   textinput.Model
	selected int
	offset   int
	loaded   bool
	showing  bool
}

type declsMsg struct {
	err   error
	decls []bindgen.Decl
}

func newBrowserModel(cfg pipeline.Config) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter declarations"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()
	return &browserModel{cfg: cfg, filter: ti}
}

func (m *browserModel) Init() tea.Cmd {
	return m.generate
}

// generate runs the front half of the pipeline and renders the binding
// set; compilation and the output rewrite are never triggered from the
// browser.
func (m *browserModel) generate() tea.Msg {
	res, err := pipeline.Run(context.Background(), m.cfg, pipeline.Options{
		SkipCompile: true,
		SkipPublish: true,
	})
	if err != nil {
		return declsMsg{err: err}
	}
	return declsMsg{decls: res.Set.Inventory()}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.showing {
				m.showing = false
				return m, nil
			}
			return m, tea.Quit

		case "up":
			if m.selected > 0 {
				m.selected--
				if m.selected < m.offset {
					m.offset = m.selected
				}
			}
			return m, nil

		case "down":
			if m.selected < len(m.filtered)-1 {
				m.selected++
				if m.selected >= m.offset+visibleRows {
					m.offset = m.selected - visibleRows + 1
				}
			}
			return m, nil

		case "enter":
			if !m.showing && m.selected < len(m.filtered) {
				m.showing = true
			}
			return m, nil
		}

	case declsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.decls = msg.decls
		m.loaded = true
		m.refilter()
		return m, nil
	}

	if m.showing {
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *browserModel) refilter() {
	needle := strings.ToLower(m.filter.Value())
	m.filtered = m.filtered[:0]
	for _, d := range m.decls {
		if needle == "" || strings.Contains(strings.ToLower(d.Name), needle) {
			m.filtered = append(m.filtered, d)
		}
	}
	if m.selected >= len(m.filtered) {
		m.selected = 0
		m.offset = 0
	}
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}
	if !m.loaded {
		return "Generating bindings..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ACPICA Bindings"))
	fmt.Fprintf(&b, " %d declarations\n\n", len(m.decls))

	if m.showing {
		d := m.filtered[m.selected]
		b.WriteString(kindStyle.Render(d.Kind))
		b.WriteString(" ")
		b.WriteString(nameStyle.Render(d.Name))
		b.WriteString("\n\n")
		b.WriteString(detailStyle.Render(d.Detail))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("esc back"))
		return b.String()
	}

	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	end := m.offset + visibleRows
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	for i := m.offset; i < end; i++ {
		d := m.filtered[i]
		line := fmt.Sprintf("%-8s %s", d.Kind, d.Name)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + kindStyle.Render(fmt.Sprintf("%-8s", d.Kind)) + " " + nameStyle.Render(d.Name))
		}
		b.WriteString("\n")
	}
	if len(m.filtered) == 0 {
		b.WriteString(helpStyle.Render("no matches"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter detail • type to filter • esc quit"))
	return b.String()
}

func runInteractive(cfg pipeline.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	p := tea.NewProgram(newBrowserModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
