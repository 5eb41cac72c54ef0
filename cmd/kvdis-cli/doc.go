// Package main provides the entry point for kvdis-cli.
//
// kvdis-cli sends commands to a kvdis server, either one command given on
// the command line or interactively from a REPL.
package main
