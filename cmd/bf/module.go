package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taibf/clients"
	"github.com/reusee/taibf/debugs"
)

type Module struct {
	dscope.Module
	Clients clients.Module
	Debugs  debugs.Module
}
