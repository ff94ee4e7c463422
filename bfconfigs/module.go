// Package bfconfigs provides the typed configuration values of the daemon and client.
//
// Every value is resolved in the same order: command line flag, then the first
// config file that sets it, then a built-in default. Config files named bf.cue or
// .bf.cue are looked up in the working directory, the user config directory and
// /etc, in that order of precedence.
package bfconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taibf/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
