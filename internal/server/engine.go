package server

import (
	"strings"

	"github.com/eternalApril/starlight/internal/resp"
	"github.com/eternalApril/starlight/internal/store"
	"go.uber.org/zap"
)

// Engine coordinates the execution of commands against the storage.
type Engine struct {
	commands map[string]Command // the key is the command name in uppercase
	storage  store.Storage
	maxProto resp.Version
	logger   *zap.Logger
}

// NewEngine initializes the engine and registers the basic commands.
// maxProto caps what HELLO will negotiate.
func NewEngine(s store.Storage, maxProto resp.Version, logger *zap.Logger) *Engine {
	engine := &Engine{
		commands: make(map[string]Command),
		storage:  s,
		maxProto: maxProto,
		logger:   logger,
	}
	engine.registerBasicCommands()
	return engine
}

// Register adds a new command to the engine. The command name is uppercase
func (e *Engine) Register(name string, cmd Command) {
	e.commands[strings.ToUpper(name)] = cmd
}

// Execute dispatches one parsed request to its handler.
func (e *Engine) Execute(name string, args []resp.Value, peer *Peer) resp.Value {
	cmd, ok := e.commands[strings.ToUpper(name)]
	if !ok {
		e.logger.Debug("unknown command", zap.String("name", name))
		return resp.MakeError("ERR unknown command '" + name + "'")
	}

	ctx := &Context{
		args:    args,
		storage: e.storage,
		peer:    peer,
	}

	return cmd.Execute(ctx)
}

func (e *Engine) registerBasicCommands() {
	e.Register("PING", CommandFunc(ping))
	e.Register("ECHO", CommandFunc(echo))
	e.Register("GET", CommandFunc(get))
	e.Register("SET", CommandFunc(set))
	e.Register("DEL", CommandFunc(del))
	e.Register("DBSIZE", CommandFunc(dbsize))
	e.Register("COMMAND", CommandFunc(command))
	e.Register("HELLO", CommandFunc(e.hello))
}
