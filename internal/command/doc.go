// Package command is the small command protocol: test, health, echo and add.
//
// Commands are parsed from positional arguments or from one JSON line,
// and serialize back to that line with a mandatory "command" field.
package command
