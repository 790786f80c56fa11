package channel

import (
	"sync"

	"go.uber.org/zap"
)

// Channel is a named broadcast group with an append-only event log. Ids are
// assigned monotonically at creation and never reused. Names are not required
// to be unique: Create always allocates, and name lookups bind to the first
// match in store order (newest first).
type Channel struct {
	Id     int     `json:"id"`
	Name   string  `json:"name"`
	Events []Event `json:"events"`
}

// Summary is the listing view of a channel, without its event log.
type Summary struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

// Store owns the in-memory channel registry for the lifetime of the process.
// Channels are never deleted. All accessors take the lock for the whole call,
// so every caller observes a consistent snapshot.
type Store struct {
	logger *zap.Logger
	mu     sync.RWMutex

	// newest first; Create prepends
	channels []*Channel
}

func NewStore(logger *zap.Logger) *Store {
	return &Store{
		logger: logger,
	}
}

// List returns summaries of all channels in store order. An empty store
// yields an empty slice.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]Summary, len(s.channels))
	for i, ch := range s.channels {
		summaries[i] = Summary{
			Id:   ch.Id,
			Name: ch.Name,
		}
	}

	return summaries
}

// Create allocates a channel with the next id and an empty log, and prepends
// it so listings show the newest channel first.
func (s *Store) Create(name string) Channel {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createLocked(name)
}

// IMPORTANT: It must be called only when the write lock is already held.
func (s *Store) createLocked(name string) Channel {
	ch := &Channel{
		Id:     len(s.channels) + 1,
		Name:   name,
		Events: []Event{},
	}

	s.channels = append([]*Channel{ch}, s.channels...)

	s.logger.Info("channel created",
		zap.Int("channelId", ch.Id),
		zap.String("channelName", ch.Name))

	return copyChannel(ch)
}

// FindById returns a copy of the first channel with the given id, or false
// when no channel has it.
func (s *Store) FindById(id int) (Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.channels {
		if ch.Id == id {
			return copyChannel(ch), true
		}
	}

	return Channel{}, false
}

// FindOrCreateByName returns the first channel with the given name, creating
// one when none exists. The second return reports whether a creation
// happened; callers use it to decide whether to re-broadcast the channel
// list.
func (s *Store) FindOrCreateByName(name string) (Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.channels {
		if ch.Name == name {
			return copyChannel(ch), false
		}
	}

	return s.createLocked(name), true
}

// Append adds an event to the channel's log. The channel's existence is
// checked at call time; appends to an unknown id are dropped and reported as
// false.
func (s *Store) Append(channelId int, event Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.channels {
		if ch.Id == channelId {
			ch.Events = append(ch.Events, event)
			return true
		}
	}

	s.logger.Warn("dropping event for unknown channel",
		zap.Int("channelId", channelId),
		zap.String("eventId", event.Id))

	return false
}

// Dump returns a deep copy of every channel with its full event log, for the
// debug endpoint.
func (s *Store) Dump() []Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels := make([]Channel, len(s.channels))
	for i, ch := range s.channels {
		channels[i] = copyChannel(ch)
	}

	return channels
}

func copyChannel(ch *Channel) Channel {
	events := make([]Event, len(ch.Events))
	copy(events, ch.Events)

	return Channel{
		Id:     ch.Id,
		Name:   ch.Name,
		Events: events,
	}
}
