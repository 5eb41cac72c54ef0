// Package service executes kvdis commands.
//
// Engine is the single entry point for every transport: it takes a parsed
// command.Command, dispatches it to the Store or the Persistence layer and
// returns a command.Result or a domain error. ExecuteLine wraps parsing and
// rendering for line-oriented transports.
//
// SAVE runs on a tracked background goroutine. Drain waits for outstanding
// snapshots and is registered as a shutdown hook so that no scheduled
// snapshot is lost on exit. LOAD runs synchronously.
package service
