package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/gobase/internal/config"
	"github.com/handiism/gobase/internal/download"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_ToggleOptions(t *testing.T) {
	m := NewModel(config.DefaultSettings())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlF})
	if !m.audioOnly || !m.force {
		t.Errorf("audioOnly = %v, force = %v, want both true", m.audioOnly, m.force)
	}
	if !strings.Contains(m.View(), "[x] Audio only") {
		t.Errorf("view does not show the audio option:\n%s", m.View())
	}
}

func TestModel_DoneStates(t *testing.T) {
	tests := []struct {
		name string
		msg  DoneMsg
		want State
	}{
		{"success", DoneMsg{Path: "/tmp/file.zip"}, StateComplete},
		{"failure", DoneMsg{Err: errors.New("boom")}, StateError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(config.DefaultSettings())
			m.state = StateDownloading
			m = update(t, m, tt.msg)
			if m.state != tt.want {
				t.Errorf("state = %d, want %d", m.state, tt.want)
			}
		})
	}
}

func TestModel_CancelledDownloadIsAnError(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateDownloading
	m.cancel()

	m = update(t, m, DoneMsg{Path: "/tmp/partial"})
	if m.state != StateError || !errors.Is(m.err, errCancelled) {
		t.Errorf("state = %d, err = %v", m.state, m.err)
	}
}

func TestModel_Reset(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.state = StateError
	m.err = errors.New("boom")
	m.progressState.update(download.ProgressEvent{Written: 10, Total: 20})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.state != StateInput || m.err != nil {
		t.Errorf("state = %d, err = %v", m.state, m.err)
	}
	if m.progressState.written.Load() != 0 {
		t.Error("progress not reset")
	}
}

func TestTracker_Percent(t *testing.T) {
	var tr tracker
	if tr.percent() != 0 {
		t.Errorf("empty percent = %v", tr.percent())
	}
	tr.update(download.ProgressEvent{Written: 512, Total: 1024})
	if tr.percent() != 0.5 {
		t.Errorf("percent = %v, want 0.5", tr.percent())
	}
	tr.update(download.ProgressEvent{Written: 2048, Total: 1024})
	if tr.percent() != 1 {
		t.Errorf("percent = %v, want 1", tr.percent())
	}
	tr.update(download.ProgressEvent{Written: 100, Total: -1})
	if tr.percent() != 0 {
		t.Errorf("unknown total percent = %v, want 0", tr.percent())
	}
}
