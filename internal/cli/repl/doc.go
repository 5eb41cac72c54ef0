// Package repl provides the interactive mode of kvdis-cli.
//
// Lines typed at the "kvdis> " prompt are sent to the server unchanged.
// A few lines are handled locally:
//
//	help       list the protocol verbs
//	history    print the session history
//	GE?        list completions for a single-word prefix
//	exit, quit leave the REPL
//
// History is kept in memory and persisted to a file between sessions.
package repl
