// Package command defines the kvdis-cli application.
//
// With positional arguments the CLI sends them as one command line and
// prints the reply. Without arguments it starts the interactive REPL.
package command
