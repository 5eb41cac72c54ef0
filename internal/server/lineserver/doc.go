// Package lineserver serves the kvdis line protocol over TCP.
//
// Each '\n' terminated input line (a trailing '\r' is tolerated) is one
// command and gets exactly one reply line. An empty reply line means the
// command succeeded without output. Lines above the configured size limit
// close the connection after an error reply.
package lineserver
