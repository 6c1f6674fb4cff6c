package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jakoblorz/go-airules/internal/pipeline"
	"github.com/jakoblorz/go-airules/internal/prompt"
)

type progressEventMsg pipeline.Event

type progressDoneMsg struct {
	err error
}

type tagState struct {
	stage prompt.Kind
	done  bool
}

// ProgressModel shows a spinner and the current stage of every tag while
// rules are generated.
type ProgressModel struct {
	title    string
	spinner  spinner.Model
	tags     []string
	states   map[string]tagState
	cancel   context.CancelFunc
	finished bool
	err      error
}

// NewProgressModel creates the model. cancel is called when the user presses
// ctrl+c.
func NewProgressModel(title string, tags []string, cancel context.CancelFunc) ProgressModel {
	return ProgressModel{
		title:   title,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(TagStyle)),
		tags:    tags,
		states:  make(map[string]tagState, len(tags)),
		cancel:  cancel,
	}
}

// Init starts the spinner
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles progress events, completion and interruption
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && m.cancel != nil {
			m.cancel()
		}
		return m, nil

	case progressEventMsg:
		state := m.states[msg.Tag]
		if msg.Done {
			state.done = true
		} else {
			state.stage = msg.Stage
		}
		m.states[msg.Tag] = state
		return m, nil

	case progressDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress list
func (m ProgressModel) View() string {
	if m.finished {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%d/%d)\n", m.spinner.View(), TitleStyle.Render(m.title), m.Completed(), len(m.tags))

	for _, tag := range m.tags {
		state := m.states[tag]
		switch {
		case state.done:
			fmt.Fprintf(&b, "  %s %s\n", SuccessStyle.Render("✓"), tag)
		case state.stage != "":
			fmt.Fprintf(&b, "  %s %s %s\n", TagStyle.Render("›"), tag, DescStyle.Render(stageLabel(state.stage)))
		default:
			fmt.Fprintf(&b, "  %s %s\n", SubtleStyle.Render("·"), SubtleStyle.Render(tag))
		}
	}

	b.WriteString(HelpStyle.Render("ctrl+c cancel"))
	return b.String()
}

// Completed returns the number of tags that are done.
func (m ProgressModel) Completed() int {
	n := 0
	for _, tag := range m.tags {
		if m.states[tag].done {
			n++
		}
	}
	return n
}

func stageLabel(kind prompt.Kind) string {
	switch kind {
	case prompt.KindResearch:
		return "researching"
	case prompt.KindGenerate:
		return "generating"
	case prompt.KindReview:
		return "reviewing"
	default:
		return string(kind)
	}
}

// Task is work reporting its progress through observe.
type Task func(ctx context.Context, observe pipeline.Observer) error

// RunProgress runs task while rendering live progress for tags on out. The
// returned error is the task's.
func RunProgress(ctx context.Context, out io.Writer, title string, tags []string, task Task) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(
		NewProgressModel(title, tags, cancel),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)

	result := make(chan error, 1)
	go func() {
		err := task(ctx, func(e pipeline.Event) {
			program.Send(progressEventMsg(e))
		})
		result <- err
		program.Send(progressDoneMsg{err: err})
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-result
		return fmt.Errorf("progress display failed: %w", err)
	}
	return <-result
}
