package broadcaster

import "context"

const sendBufferSize = 32

// Connection is the registry's view of one connected client. Send is drained
// by the transport's write pump and closed by the registry on disconnect.
type Connection struct {
	Id   string
	Send chan Message
}

func NewConnection(id string) *Connection {
	return &Connection{
		Id:   id,
		Send: make(chan Message, sendBufferSize),
	}
}

type contextKey string

const connectionKey contextKey = "connection"

func WithConnection(ctx context.Context, conn *Connection) context.Context {
	return context.WithValue(ctx, connectionKey, conn)
}

func ConnectionFromContext(ctx context.Context) (*Connection, bool) {
	conn, ok := ctx.Value(connectionKey).(*Connection)

	return conn, ok
}
