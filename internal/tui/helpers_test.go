package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/kantoor/internal/tui/tuitest"
)

// settle runs cmd and every command its messages cause until nothing is left.
// Spinner ticks are dropped so no command sleeps.
func settle(m tea.Model, cmd tea.Cmd) tea.Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, msg := range tuitest.Exec(next) {
			if _, ok := msg.(spinner.TickMsg); ok {
				continue
			}
			var follow tea.Cmd
			m, follow = m.Update(msg)
			if follow != nil {
				queue = append(queue, follow)
			}
		}
	}
	return m
}

// send delivers msgs and settles the command of each. Only use it for messages whose
// commands do not block.
func send(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		m = settle(m, cmd)
	}
	return m
}

// deliver feeds msgs and drops their commands.
func deliver(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}
