package tuitest

import (
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes all ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// ContainsInOrder checks if the output contains all specified strings in order.
func ContainsInOrder(output string, expected ...string) bool {
	lastIndex := 0
	for _, exp := range expected {
		index := strings.Index(output[lastIndex:], exp)
		if index == -1 {
			return false
		}
		lastIndex += index + len(exp)
	}
	return true
}

// TestRenderer feeds messages to a model and keeps the commands it returns.
type TestRenderer struct {
	// Output is the last rendered view without ANSI codes.
	Output   string
	Commands []tea.Cmd
}

// NewTestRenderer creates a new test renderer.
func NewTestRenderer() *TestRenderer {
	return &TestRenderer{}
}

// Send delivers msgs in order and returns the resulting model.
func (r *TestRenderer) Send(model tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		var cmd tea.Cmd
		model, cmd = model.Update(msg)
		if cmd != nil {
			r.Commands = append(r.Commands, cmd)
		}
	}
	r.Output = StripANSI(model.View())
	return model
}

// TakeCommands returns the collected commands and forgets them.
func (r *TestRenderer) TakeCommands() []tea.Cmd {
	cmds := r.Commands
	r.Commands = nil
	return cmds
}

// Exec runs cmd and flattens batches into the messages they produce. Only use it on
// commands known not to block.
func Exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, Exec(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}
