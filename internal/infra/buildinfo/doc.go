// Package buildinfo provides build information for kvdis binaries.
//
// Version, Commit and BuildTime are injected via ldflags; GoVersion comes
// from the runtime. Both kvdis-server and kvdis-cli print String for
// --version, and the HTTP side-car reports Get in /health.
package buildinfo
