package application

import "context"

// Query is a read-only request.
type Query interface {
	QueryName() string
}

// QueryHandler answers one query type.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
