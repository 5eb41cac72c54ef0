// Package command defines the kvdis command language.
//
// A protocol line is parsed into one of the sealed Command variants:
//
//	SET <key> <value>
//	GET <key>
//	DEL <key>
//	EXISTS <key>
//	EXPIRE <key> <duration> [<duration> [<duration>]]
//	INCR <key>
//	DECR <key>
//	CLEAR
//	SAVE
//	LOAD
//
// Durations use a human-readable grammar ("3s", "1h 27m 13s", "2weeks").
// Executing a command yields a Result, which Render turns into the single
// response line: empty for void successes, the payload for GET and EXISTS,
// and "[Error]: <message>" for failures.
package command
