package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/causeway/pkg/impact"
	"github.com/matzehuels/causeway/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ExploreModel - pick a cause and an effect, then show the causal impact
// =============================================================================

type exploreStage int

const (
	stageCause exploreStage = iota
	stageEffect
	stageRunning
	stageDone
)

// impactMsg carries the answer computed by a queryFunc.
type impactMsg struct {
	res *pipeline.ImpactResult
	err error
}

// queryFunc computes P(effect | do(cause)).
type queryFunc func(cause, effect string) (*pipeline.ImpactResult, error)

// ExploreModel is the bubbletea model behind `causeway explore`.
type ExploreModel struct {
	Variables []string
	Cursor    int
	Offset    int
	Height    int

	Stage  exploreStage
	Cause  string
	Effect string
	Result *pipeline.ImpactResult
	Err    error

	query queryFunc
}

// NewExploreModel lists vars for selection and answers with query.
func NewExploreModel(vars []string, query queryFunc) ExploreModel {
	return ExploreModel{Variables: vars, Height: 12, query: query}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Stage == stageRunning {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Variables)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "backspace", "r":
			if m.Stage == stageEffect || m.Stage == stageDone {
				m.Stage, m.Cause, m.Effect, m.Result, m.Err = stageCause, "", "", nil, nil
			}
		case "enter":
			return m.choose()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	case impactMsg:
		m.Stage = stageDone
		m.Result, m.Err = msg.res, msg.err
	}
	return m, nil
}

func (m ExploreModel) choose() (tea.Model, tea.Cmd) {
	if len(m.Variables) == 0 {
		return m, nil
	}
	name := m.Variables[m.Cursor]
	switch m.Stage {
	case stageCause:
		m.Cause = name
		m.Stage = stageEffect
	case stageEffect:
		if name == m.Cause {
			return m, nil
		}
		m.Effect = name
		m.Stage = stageRunning
		cause, effect, query := m.Cause, m.Effect, m.query
		return m, func() tea.Msg {
			res, err := query(cause, effect)
			return impactMsg{res: res, err: err}
		}
	}
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	switch m.Stage {
	case stageCause:
		b.WriteString(StyleTitle.Render("Select Cause"))
	case stageEffect:
		b.WriteString(StyleTitle.Render("Select Effect of " + m.Cause))
	default:
		b.WriteString(StyleTitle.Render(fmt.Sprintf("Impact of %s on %s", m.Cause, m.Effect)))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  r restart  q quit"))
	b.WriteString("\n\n")

	switch m.Stage {
	case stageRunning:
		b.WriteString(listDimStyle.Render("Computing..."))
	case stageDone:
		if m.Err != nil {
			b.WriteString(styleIconError.Render(iconError) + " " + m.Err.Error())
			break
		}
		var out bytes.Buffer
		printImpact(&out, m.Result, false)
		b.WriteString(out.String())
	default:
		b.WriteString(m.listView())
	}
	return b.String()
}

func (m ExploreModel) listView() string {
	end := min(m.Offset+m.Height, len(m.Variables))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, m.Variables[i]})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("", "Variable").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Stage == stageEffect && idx < len(m.Variables) && m.Variables[idx] == m.Cause:
				return listDimStyle
			}
			return listNormalStyle
		})

	return t.Render() + "\n\n" + listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Variables)))
}

func (c *CLI) exploreCommand() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "explore <model>",
		Short: "Pick a cause and an effect interactively and show the causal impact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := c.newRunner(ctx, noCache)
			defer r.Close()

			m, err := loadModel(ctx, r, args[0])
			if err != nil {
				return err
			}
			model := NewExploreModel(m.Observed().Sorted(), exploreQuery(ctx, r, m))
			p := tea.NewProgram(model,
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}

func exploreQuery(ctx context.Context, r *pipeline.Runner, m *pipeline.Model) queryFunc {
	return func(cause, effect string) (*pipeline.ImpactResult, error) {
		return r.Impact(ctx, m, impact.Query{On: []string{effect}, Doing: []string{cause}}, pipeline.Options{})
	}
}
