package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taibf/nets"
	"github.com/reusee/taibf/servers"
)

type Module struct {
	dscope.Module
	Servers servers.Module
	Nets    nets.Module
}
