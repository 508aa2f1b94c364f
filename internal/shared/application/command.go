package application

import "context"

// Command is a request that changes state.
type Command interface {
	CommandName() string
}

// CommandHandler executes one command type and returns what it produced.
type CommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}
