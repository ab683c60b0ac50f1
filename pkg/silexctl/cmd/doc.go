// Package cmd implements the cobra command tree for the silexctl CLI,
// including subcommands for authentication, experiment and variable
// browsing, scientific object listing, data import and search, and
// configuration management.
package cmd
