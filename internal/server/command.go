package server

import (
	"github.com/eternalApril/starlight/internal/resp"
	"github.com/eternalApril/starlight/internal/store"
)

// Context carries everything a handler needs for one command invocation.
type Context struct {
	args    []resp.Value
	storage store.Storage
	peer    *Peer // nil in unit tests that exercise handlers directly
}

type Command interface {
	Execute(ctx *Context) resp.Value
}

type CommandFunc func(ctx *Context) resp.Value

func (c CommandFunc) Execute(ctx *Context) resp.Value {
	return c(ctx)
}
