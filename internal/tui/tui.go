// Package tui provides a Bubble Tea terminal user interface for downloading
// a single URL.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/gobase/internal/config"
	"github.com/handiism/gobase/internal/download"
	"github.com/handiism/gobase/internal/youtube"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateStarting
	StateDownloading
	StateComplete
	StateError
)

// tracker is written by the download goroutine and read on every tick.
type tracker struct {
	written atomic.Int64
	total   atomic.Int64
}

func (t *tracker) update(e download.ProgressEvent) {
	t.written.Store(e.Written)
	t.total.Store(e.Total)
}

func (t *tracker) percent() float64 {
	total := t.total.Load()
	if total <= 0 {
		return 0
	}
	return min(float64(t.written.Load())/float64(total), 1)
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings

	ctx    context.Context
	cancel context.CancelFunc

	progressState *tracker
	path          string
	err           error
	started       time.Time
	elapsed       time.Duration

	audioOnly bool
	force     bool
}

// NewModel creates a new TUI model with the given settings.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "https://example.com/file.zip or a YouTube link"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:         StateInput,
		textInput:     ti,
		spinner:       sp,
		progress:      prog,
		settings:      settings,
		ctx:           ctx,
		cancel:        cancel,
		progressState: &tracker{},
		audioOnly:     settings.AudioOnly,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

type (
	// DoneMsg is sent when the download finished or failed.
	DoneMsg struct {
		Path string
		Err  error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = max(20, min(msg.Width-20, 80))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateStarting || m.state == StateDownloading {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateStarting
				m.started = time.Now()
				return m, tea.Batch(m.startDownload(), m.spinner.Tick, m.tickProgress())
			}

		case "ctrl+a":
			if m.state == StateInput {
				m.audioOnly = !m.audioOnly
				return m, nil
			}

		case "ctrl+f":
			if m.state == StateInput {
				m.force = !m.force
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.err = nil
				m.path = ""
				m.progressState = &tracker{}
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case DoneMsg:
		m.elapsed = time.Since(m.started)
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
			m.path = msg.Path
		}

	case TickMsg:
		if m.state == StateStarting && m.progressState.written.Load() > 0 {
			m.state = StateDownloading
		}
		if m.state == StateStarting || m.state == StateDownloading {
			cmds = append(cmds, m.progress.SetPercent(m.progressState.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("gobase"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download a file or a YouTube video"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateStarting:
		b.WriteString(m.spinner.View() + " " + subtitleStyle.Render("Connecting..."))
		b.WriteString("\n")
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(boxStyle.Render(fmt.Sprintf(
			"Download complete\n\nFile: %s\nSize: %.2f MB\nTime: %s",
			filepath.Base(m.path),
			float64(m.progressState.written.Load())/1024/1024,
			m.elapsed.Round(time.Millisecond),
		)))
		b.WriteString("\n")
	case StateError:
		b.WriteString(errorStyle.Render("Error:"))
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString("  " + m.err.Error())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Audio only, YouTube (ctrl+a)\n", checkbox(m.audioOnly))
	fmt.Fprintf(&b, "  %s Download again if present (ctrl+f)\n", checkbox(m.force))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Work directory: " + m.workDir()))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.progress.View())
	b.WriteString("\n")

	written := float64(m.progressState.written.Load()) / 1024
	if total := m.progressState.total.Load(); total > 0 {
		b.WriteString(infoStyle.Render(fmt.Sprintf("%.0f / %.0f KB", written, float64(total)/1024)))
	} else {
		b.WriteString(infoStyle.Render(fmt.Sprintf("%.0f KB", written)))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+a: audio only • ctrl+f: force • esc: quit"
	case StateStarting, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

func (m Model) workDir() string {
	if dir := m.settings.ExpandWorkDirectory(); dir != "" {
		return dir
	}
	return "."
}

// startDownload runs the download in the background. YouTube links go
// through yt-dlp, everything else through the HTTP downloader.
func (m Model) startDownload() tea.Cmd {
	rawURL := strings.TrimSpace(m.textInput.Value())
	ctx, state, dir := m.ctx, m.progressState, m.workDir()
	audioOnly, force := m.audioOnly, m.force
	settings := *m.settings
	settings.ShowProgress = false

	return func() tea.Msg {
		if _, err := youtube.VideoID(rawURL); err == nil {
			f := youtube.NewFetcher(&settings, state.update)
			p, err := f.Download(ctx, rawURL, youtube.Options{WorkDir: dir, AudioOnly: audioOnly})
			return DoneMsg{Path: p, Err: err}
		}

		d := download.NewDownloader(&settings, state.update)
		p, err := d.MaybeDownload(ctx, rawURL, download.Options{WorkDir: dir, Force: force})
		return DoneMsg{Path: p, Err: err}
	}
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
