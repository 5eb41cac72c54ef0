package repl

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/kvdis-go/internal/cli/output"
)

type fakeExecutor struct {
	replies map[string]string
	sent    []string
	err     error
}

func (f *fakeExecutor) Execute(_ context.Context, line string) (string, error) {
	f.sent = append(f.sent, line)
	if f.err != nil {
		return "", f.err
	}
	return f.replies[line], nil
}

func runREPL(t *testing.T, input string, exec *fakeExecutor, opts ...Option) string {
	t.Helper()

	var out bytes.Buffer
	opts = append([]Option{WithIO(strings.NewReader(input), &out)}, opts...)
	if err := New(exec, opts...).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\nGET a\n"},
		{"quit command", "quit\n"},
		{"EOF", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{}
			runREPL(t, tt.input, exec)
			if len(exec.sent) != 0 {
				t.Errorf("sent %v after exit", exec.sent)
			}
		})
	}
}

func TestREPL_Run_Commands(t *testing.T) {
	exec := &fakeExecutor{replies: map[string]string{
		"SET a 1": "",
		"GET a":   "1",
		"GET b":   "[Error]: key does not exist",
	}}

	out := runREPL(t, "SET a 1\n\n  GET a  \nGET b\nexit\n", exec)

	if got := strings.Join(exec.sent, "|"); got != "SET a 1|GET a|GET b" {
		t.Errorf("sent = %q", got)
	}
	for _, want := range []string{"OK\n", "1\n", "[Error]: key does not exist\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, Prompt); n != 5 {
		t.Errorf("%d prompts, want 5", n)
	}
}

func TestREPL_Run_UnterminatedLastLine(t *testing.T) {
	exec := &fakeExecutor{replies: map[string]string{"GET a": "1"}}
	out := runREPL(t, "GET a", exec)

	if len(exec.sent) != 1 || !strings.Contains(out, "1\n") {
		t.Errorf("sent %v, output %q", exec.sent, out)
	}
}

func TestREPL_Run_ExecutorError(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("connection refused")}
	out := runREPL(t, "GET a\nexit\n", exec)

	if !strings.Contains(out, "Error: connection refused") {
		t.Errorf("output = %q", out)
	}
}

func TestREPL_LocalCommands(t *testing.T) {
	exec := &fakeExecutor{}
	out := runREPL(t, "help\nGE?\nhistory\nexit\n", exec)

	if len(exec.sent) != 0 {
		t.Errorf("local commands reached the server: %v", exec.sent)
	}
	if !strings.Contains(out, "commands: CLEAR DECR DEL") {
		t.Errorf("help output missing:\n%s", out)
	}
	if !strings.Contains(out, Prompt+"GET\n") {
		t.Errorf("completion output missing:\n%s", out)
	}
	if !strings.Contains(out, "   1  help\n") || !strings.Contains(out, "   2  GE?\n") {
		t.Errorf("history output missing:\n%s", out)
	}
}

func TestREPL_QuestionMarkInValue(t *testing.T) {
	exec := &fakeExecutor{replies: map[string]string{"SET q why?": ""}}
	runREPL(t, "SET q why?\nexit\n", exec)

	if len(exec.sent) != 1 {
		t.Errorf("multi-word line ending in ? should reach the server, sent %v", exec.sent)
	}
}

func TestREPL_HistoryPersisted(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history")

	runREPL(t, "SET a 1\nexit\n", &fakeExecutor{}, WithHistory(NewHistory(file)))

	h := NewHistory(file)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}
	if h.Get(0) != "exit" || h.Get(1) != "SET a 1" {
		t.Errorf("history = %v", h.Entries())
	}
}

func TestREPL_JSONOutput(t *testing.T) {
	exec := &fakeExecutor{replies: map[string]string{"GET a": "1"}}
	out := runREPL(t, "GET a\nexit\n", exec, WithFormatter(output.NewFormatter(output.FormatJSON)))

	if !strings.Contains(out, `"reply": "1"`) {
		t.Errorf("output = %q", out)
	}
}
