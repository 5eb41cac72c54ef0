// Package output formats kvdis-cli replies as text, JSON or YAML.
//
// Text mode prints the raw reply line, or OK when the server answered with
// an empty line. JSON and YAML wrap the reply in a Reply record for scripts.
package output
