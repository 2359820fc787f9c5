// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type keeps a status bar of step timers and an input prompt at
// the bottom of the terminal. All other output is printed above it via
// Program.Println / Printf, so concurrent writes never garble the screen.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottocoach/internal/domain"
)

// StepSource is the read side of a recipe run.
type StepSource interface {
	Steps() []domain.StepView
}

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#27272a")).
			Foreground(lipgloss.Color("#a1a1aa"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fde68a"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#86efac"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a1a1aa"))
	sepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52525b"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	echoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a1a1aa"))
)

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may call
// [UI.Println], [UI.Printf], and read [UI.InputChan] once [UI.WaitReady]
// returns.
type UI struct {
	program *tea.Program
	source  StepSource
	title   string
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool
}

// NewUI creates the display. title names the window when no timer is running.
func NewUI(source StepSource, title string) *UI {
	return &UI{
		source:  source,
		title:   title,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe. Falls back to
// fmt.Println before Run or after quit.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text on its own line above the prompt. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Plain-text prompt: styled prompts add ANSI bytes that break the
	// textinput width math on long input.
	ti.Prompt = "otto> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = echoStyle
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	m := model{
		source:  u.source,
		title:   u.title,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn: func(v string) {
			u.Println(promptStyle.Render("otto") + labelStyle.Render("> ") + echoStyle.Render(v))
		},
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

type model struct {
	source  StepSource
	title   string
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string)
	entries []barEntry
	width   int
}

type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		func() tea.Msg {
			close(m.readyCh)
			return nil
		},
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) == "" {
				return m, nil
			}
			m.inputCh <- v
			// Echo from a Cmd so Println never runs inside Update.
			echoFn := m.echoFn
			return m, func() tea.Msg {
				echoFn(v)
				return nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - len("otto> "); w > 0 {
			m.input.Width = w
		}
		return m, nil

	case tickMsg:
		m.entries = statusEntries(m.source.Steps())
		return m, tea.Batch(tickCmd(), tea.SetWindowTitle(windowTitle(m.title, m.entries)))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	if len(m.entries) > 0 {
		b.WriteString(renderBar(m.entries, m.width))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

// barEntry is one step in the status bar.
type barEntry struct {
	step      int // 1-based
	remaining time.Duration
	done      bool
}

func (e barEntry) text() string {
	if e.done {
		return fmt.Sprintf("Step %d: done", e.step)
	}
	return fmt.Sprintf("Step %d: %s", e.step, fmtDuration(e.remaining))
}

// statusEntries lists every step that has a timer to show, in step order.
// Steps that were never started are left out.
func statusEntries(views []domain.StepView) []barEntry {
	var out []barEntry
	for _, v := range views {
		switch v.Status {
		case domain.StepRunning:
			out = append(out, barEntry{
				step:      v.Step.Index + 1,
				remaining: secs(v.RemainingSeconds),
			})
		case domain.StepCompleted:
			out = append(out, barEntry{step: v.Step.Index + 1, done: true})
		}
	}
	return out
}

func windowTitle(base string, entries []barEntry) string {
	var running []string
	for _, e := range entries {
		if !e.done {
			running = append(running, e.text())
		}
	}
	if len(running) == 0 {
		return base
	}
	return base + " | " + strings.Join(running, " | ")
}

func renderBar(entries []barEntry, width int) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		if e.done {
			parts[i] = doneStyle.Render(e.text())
			continue
		}
		parts[i] = labelStyle.Render(fmt.Sprintf("Step %d: ", e.step)) + runningStyle.Render(fmtDuration(e.remaining))
	}

	if width <= 0 {
		width = 80
	}
	return barStyle.Width(width).Render(" " + strings.Join(parts, sepStyle.Render("  │  ")) + " ")
}

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}
