package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// addDialog is the modal form for a new camera.
type addDialog struct {
	name   textinput.Model
	source textinput.Model
	focus  int
}

func newAddDialog() addDialog {
	name := textinput.New()
	name.Prompt = "Name:   "
	name.CharLimit = 64
	name.Width = 40
	name.Focus()

	source := textinput.New()
	source.Prompt = "Source: "
	source.Placeholder = "rtsp://user:pass@ip:554/stream or 0 for webcam"
	source.CharLimit = 512
	source.Width = 40

	return addDialog{name: name, source: source}
}

func (d *addDialog) toggleFocus() {
	if d.focus == 0 {
		d.focus = 1
		d.name.Blur()
		d.source.Focus()
		return
	}
	d.focus = 0
	d.source.Blur()
	d.name.Focus()
}

func (d addDialog) update(msg tea.Msg) (addDialog, tea.Cmd) {
	var cmd tea.Cmd
	if d.focus == 0 {
		d.name, cmd = d.name.Update(msg)
	} else {
		d.source, cmd = d.source.Update(msg)
	}
	return d, cmd
}

// values returns the trimmed name and source text.
func (d addDialog) values() (string, string) {
	return strings.TrimSpace(d.name.Value()), strings.TrimSpace(d.source.Value())
}
