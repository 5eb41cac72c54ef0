package repl

import (
	"sort"
	"strings"

	"github.com/yndnr/kvdis-go/internal/core/command"
)

// localCommands are handled by the REPL itself.
var localCommands = []string{"help", "history", "exit", "quit"}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the protocol verbs and REPL commands.
func NewCompleter() *Completer {
	cmds := append(command.Verbs(), localCommands...)
	sort.Strings(cmds)
	return &Completer{commands: cmds}
}

// Complete returns the commands starting with prefix, ignoring case.
func (c *Completer) Complete(prefix string) []string {
	p := strings.ToLower(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToLower(cmd), p) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
