package server

import (
	"strconv"

	"github.com/eternalApril/starlight/internal/resp"
)

func ping(ctx *Context) resp.Value {
	switch len(ctx.args) {
	case 0:
		return resp.MakeSimpleString("PONG")
	case 1:
		return resp.MakeBlobString(ctx.args[0].String())
	default:
		return resp.MakeErrorWrongNumberOfArguments("PING")
	}
}

func echo(ctx *Context) resp.Value {
	if len(ctx.args) != 1 {
		return resp.MakeErrorWrongNumberOfArguments("ECHO")
	}
	return resp.MakeBlobString(ctx.args[0].String())
}

func get(ctx *Context) resp.Value {
	if len(ctx.args) != 1 {
		return resp.MakeErrorWrongNumberOfArguments("GET")
	}
	val, ok := ctx.storage.Get(ctx.args[0].String())
	if !ok {
		return resp.MakeNullOf(resp.TypeBlobString)
	}
	return resp.MakeBlobString(val)
}

func set(ctx *Context) resp.Value {
	if len(ctx.args) != 2 {
		return resp.MakeErrorWrongNumberOfArguments("SET")
	}
	ctx.storage.Set(ctx.args[0].String(), ctx.args[1].String())
	return resp.MakeSimpleString("OK")
}

func del(ctx *Context) resp.Value {
	if len(ctx.args) == 0 {
		return resp.MakeErrorWrongNumberOfArguments("DEL")
	}
	deleted := int64(0)
	for _, arg := range ctx.args {
		if ctx.storage.Delete(arg.String()) {
			deleted++
		}
	}
	return resp.MakeNumber(deleted)
}

func dbsize(ctx *Context) resp.Value {
	if len(ctx.args) != 0 {
		return resp.MakeErrorWrongNumberOfArguments("DBSIZE")
	}
	return resp.MakeNumber(int64(ctx.storage.Len()))
}

func command(ctx *Context) resp.Value {
	return getAllCommands()
}

// hello negotiates the protocol version for the requesting peer. The reply
// is a map, which the writer downgrades to a flat array for RESP2 peers.
func (e *Engine) hello(ctx *Context) resp.Value {
	proto := resp.RESP2
	if len(ctx.args) > 0 {
		n, err := strconv.Atoi(ctx.args[0].String())
		if err != nil || n < 2 || resp.Version(n) > e.maxProto {
			return resp.MakeError("NOPROTO unsupported protocol version")
		}
		proto = resp.Version(n)
	}
	if ctx.peer != nil {
		ctx.peer.SetProtocol(proto)
	}

	return resp.MakeMap([]resp.Value{
		resp.MakeBlobString("server"), resp.MakeBlobString("starlight"),
		resp.MakeBlobString("version"), resp.MakeBlobString("1.0.0"),
		resp.MakeBlobString("proto"), resp.MakeNumber(int64(proto)),
		resp.MakeBlobString("mode"), resp.MakeBlobString("standalone"),
	})
}
