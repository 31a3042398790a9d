package server

import (
	"github.com/eternalApril/starlight/internal/resp"
)

type commandMetadata struct {
	arity    int      // Arity includes the command name itself
	flags    []string // read, write, fast, denyoom, etc
	firstKey int      // 1-based index of the first key
	lastKey  int      // 1-based index of the last key
	step     int      // Step count for finding keys
}

var commandRegistry = map[string]commandMetadata{
	"PING":    {-1, []string{"fast", "stale"}, 0, 0, 0},
	"ECHO":    {2, []string{"fast"}, 0, 0, 0},
	"GET":     {2, []string{"readonly", "fast"}, 1, 1, 1},
	"SET":     {3, []string{"write", "denyoom"}, 1, 1, 1},
	"DEL":     {-2, []string{"write"}, 1, -1, 1},
	"DBSIZE":  {1, []string{"readonly", "fast"}, 0, 0, 0},
	"HELLO":   {-1, []string{"fast", "stale"}, 0, 0, 0},
	"COMMAND": {-1, []string{"random", "loading", "stale"}, 0, 0, 0},
}

func makeFlagsArray(flags []string) resp.Value {
	vals := make([]resp.Value, len(flags))
	for i, f := range flags {
		vals[i] = resp.MakeSimpleString(f)
	}
	return resp.MakeArray(vals)
}

func makeInfoCmdArray(name string) []resp.Value {
	meta := commandRegistry[name]
	return []resp.Value{
		resp.MakeBlobString(name),
		resp.MakeNumber(int64(meta.arity)),
		makeFlagsArray(meta.flags),
		resp.MakeNumber(int64(meta.firstKey)),
		resp.MakeNumber(int64(meta.lastKey)),
		resp.MakeNumber(int64(meta.step)),
	}
}

func getAllCommands() resp.Value {
	cmdArray := make([]resp.Value, 0, len(commandRegistry))
	for name := range commandRegistry {
		cmdArray = append(cmdArray, resp.MakeArray(makeInfoCmdArray(name)))
	}
	return resp.MakeArray(cmdArray)
}
