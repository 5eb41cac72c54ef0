package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/kvdis-go/internal/cli/output"
)

// Prompt is printed before every input line.
const Prompt = "kvdis> "

// Executor sends one command line and returns the reply line.
type Executor interface {
	Execute(ctx context.Context, line string) (string, error)
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithFormatter sets how replies are printed.
func WithFormatter(f output.Formatter) Option {
	return func(r *REPL) {
		r.formatter = f
	}
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	exec      Executor
	formatter output.Formatter
	completer *Completer
	history   *History
}

// New creates a REPL sending commands through exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		exec:      exec,
		formatter: output.NewFormatter(output.FormatText),
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until exit, quit, EOF or ctx is done. The history is
// loaded before the first prompt and saved on return.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: history not loaded: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: history not saved: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(r.output, Prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		r.history.Add(line)

		if line == "exit" || line == "quit" {
			return nil
		}

		r.handle(ctx, line)

		if eof {
			return nil
		}
	}
}

func (r *REPL) handle(ctx context.Context, line string) {
	switch {
	case line == "help":
		fmt.Fprintln(r.output, "commands: "+strings.Join(r.completer.Complete(""), " "))
		return
	case line == "history":
		for i, h := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, h)
		}
		return
	case strings.HasSuffix(line, "?") && !strings.ContainsAny(line, " \t"):
		fmt.Fprintln(r.output, strings.Join(r.completer.Complete(strings.TrimSuffix(line, "?")), " "))
		return
	}

	reply, err := r.exec.Execute(ctx, line)
	if err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return
	}
	if err := r.formatter.Format(r.output, output.NewReply(line, reply)); err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
	}
}
