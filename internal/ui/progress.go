// Package ui renders build progress in the terminal.
package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"lorax/internal/buildpipeline"
)

const statusWidth = 14

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	detailStyle  = lipgloss.NewStyle().Faint(true)
)

// stageVerbs labels a file while it is working through a stage.
var stageVerbs = map[buildpipeline.Stage]string{
	buildpipeline.StagePreprocess: "preprocessing",
	buildpipeline.StageParse:      "parsing",
	buildpipeline.StageLower:      "lowering",
	buildpipeline.StageEmit:       "emitting",
	buildpipeline.StageAssemble:   "assembling",
}

type progressModel struct {
	title      string
	events     <-chan buildpipeline.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []fileItem
	index      map[string]int
	stageLabel string // build-wide stage, from events without a file
	width      int
	done       bool
}

type fileItem struct {
	path    string
	status  string
	stage   buildpipeline.Stage
	elapsed time.Duration
	err     string
}

func (it fileItem) finished() bool { return it.status == "done" || it.status == "error" }

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows one line per file
// and an overall bar fed from events. The model quits when events closes.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(activeStyle))
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(76))

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    bar,
		items:   make([]fileItem, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, f := range files {
		m.items[i] = fileItem{path: f, status: "queued"}
		m.index[f] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(buildpipeline.Event(msg)), m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.prog.Update(msg)
		m.prog = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.File == "" {
		if label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	it := &m.items[idx]
	if label != "" {
		it.status = label
	}
	if ev.Status != buildpipeline.StatusQueued {
		it.stage = ev.Stage
	}
	if it.finished() {
		it.elapsed = ev.Elapsed
		if ev.Err != nil {
			it.err = ev.Err.Error()
		}
	}
	return m.prog.SetPercent(m.percent())
}

func statusLabel(stage buildpipeline.Stage, status buildpipeline.Status) string {
	if status == buildpipeline.StatusWorking {
		return stageVerbs[stage]
	}
	return string(status)
}

// percent is the share of the build finished. A file in flight counts as
// halfway through the stage it reached.
func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range m.items {
		if it.finished() {
			sum++
		} else if i := slices.Index(buildpipeline.Stages, it.stage); i >= 0 {
			sum += (float64(i) + 0.5) / float64(len(buildpipeline.Stages))
		}
	}
	return sum / float64(len(m.items))
}

func (m *progressModel) finishedCount() int {
	n := 0
	for _, it := range m.items {
		if it.finished() {
			n++
		}
	}
	return n
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title
	if m.stageLabel != "" {
		header += " (" + m.stageLabel + ")"
	}
	header += fmt.Sprintf(" [%d/%d]", m.finishedCount(), len(m.items))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-14, 20)
	for _, it := range m.items {
		status := styleStatus(it.status).Render(fmt.Sprintf("%*s", statusWidth, it.status))
		fmt.Fprintf(&b, "  %s %s", status, truncate(it.path, nameWidth))
		if it.finished() && it.elapsed > 0 {
			b.WriteString(detailStyle.Render(fmt.Sprintf(" %s", it.elapsed.Round(time.Millisecond))))
		}
		b.WriteString("\n")
		if it.err != "" {
			pad := strings.Repeat(" ", statusWidth+3)
			b.WriteString(pad + errorStyle.Render(truncate(firstLine(it.err), nameWidth)) + "\n")
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return doneStyle
	case "error":
		return errorStyle
	case "queued", "":
		return pendingStyle
	default:
		return activeStyle
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	default:
		return runewidth.Truncate(value, width, "...")
	}
}
