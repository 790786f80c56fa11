package broadcaster

import (
	"sync"

	"go.uber.org/zap"
)

// Registry tracks connected clients and their channel memberships, and fans
// broadcasts out to the audience a Policy selects. A client is a broadcast
// target for a channel exactly while it holds membership in that channel.
type Registry interface {
	Connect(connection *Connection)
	Disconnect(connectionId string)
	Join(channelName string, connection *Connection)
	MembersOf(channelName string) []string
	Broadcast(message Message, channelName string, senderId string, policy Policy)
}

type InMemoryRegistry struct {
	logger *zap.Logger
	mu     sync.RWMutex

	connections          map[string]*Connection
	connectionsByChannel map[string]map[string]struct{}
	channelsByConnection map[string]map[string]struct{}
}

func NewInMemoryRegistry(
	logger *zap.Logger,
) *InMemoryRegistry {
	return &InMemoryRegistry{
		logger:               logger,
		connections:          make(map[string]*Connection),
		connectionsByChannel: make(map[string]map[string]struct{}),
		channelsByConnection: make(map[string]map[string]struct{}),
	}
}

// Connect registers a connection so it can receive all-connections
// broadcasts before it has joined any channel.
func (r *InMemoryRegistry) Connect(connection *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[connection.Id] = connection
}

// Join adds the connection to the channel's member set. Joining a channel the
// connection is already a member of is a no-op.
func (r *InMemoryRegistry) Join(channelName string, connection *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[connection.Id] = connection

	if _, ok := r.connectionsByChannel[channelName]; !ok {
		r.connectionsByChannel[channelName] = make(map[string]struct{})
	}
	r.connectionsByChannel[channelName][connection.Id] = struct{}{}

	if _, ok := r.channelsByConnection[connection.Id]; !ok {
		r.channelsByConnection[connection.Id] = make(map[string]struct{})
	}
	r.channelsByConnection[connection.Id][channelName] = struct{}{}
}

// MembersOf returns the ids of the channel's current members. A name nobody
// has joined yields an empty slice.
func (r *InMemoryRegistry) MembersOf(channelName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connectionIds := r.connectionsByChannel[channelName]

	members := make([]string, 0, len(connectionIds))
	for connectionId := range connectionIds {
		members = append(members, connectionId)
	}

	return members
}

// Broadcast delivers the message to the audience the policy selects. Sends
// never block: a connection whose buffer is full is torn down instead, which
// is the only delivery guarantee this service offers.
func (r *InMemoryRegistry) Broadcast(message Message, channelName string, senderId string, policy Policy) {
	r.mu.RLock()

	var connections []*Connection

	switch policy {
	case AllConnections:
		connections = make([]*Connection, 0, len(r.connections))
		for _, connection := range r.connections {
			connections = append(connections, connection)
		}
	default:
		connectionIds, ok := r.connectionsByChannel[channelName]
		if !ok {
			r.mu.RUnlock()

			return
		}

		connections = make([]*Connection, 0, len(connectionIds))
		for connectionId := range connectionIds {
			if policy == MembersExceptSender && connectionId == senderId {
				continue
			}

			if connection, ok := r.connections[connectionId]; ok {
				connections = append(connections, connection)
			}
		}
	}

	var staleConnectionIds []string

	for _, connection := range connections {
		select {
		case connection.Send <- message:
		default:
			r.logger.Warn("connection send channel is full, closing connection",
				zap.String("connectionId", connection.Id))

			staleConnectionIds = append(staleConnectionIds, connection.Id)
		}
	}

	r.mu.RUnlock()

	if len(staleConnectionIds) == 0 {
		return
	}

	r.mu.Lock()

	for _, connectionId := range staleConnectionIds {
		r.disconnectLocked(connectionId)
	}

	r.mu.Unlock()
}

// Disconnect tears down every membership the connection holds and closes its
// send channel, all under one write lock, so a disconnected client is never
// a broadcast target again.
func (r *InMemoryRegistry) Disconnect(connectionId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.disconnectLocked(connectionId)
}

// IMPORTANT: It must be called only when a write lock is already held.
func (r *InMemoryRegistry) disconnectLocked(connectionId string) {
	connection, ok := r.connections[connectionId]
	if !ok {
		return
	}

	for channelName := range r.channelsByConnection[connectionId] {
		channelConnections, ok := r.connectionsByChannel[channelName]
		if !ok {
			panic("inconsistent state: channel not found in connectionsByChannel")
		}

		delete(channelConnections, connectionId)
		if len(channelConnections) == 0 {
			delete(r.connectionsByChannel, channelName)
		}
	}

	delete(r.channelsByConnection, connectionId)
	delete(r.connections, connectionId)
	close(connection.Send)
}
