package control

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/teris-io/shortid"

	"github.com/kyleterry/vhttp/pkg/files/errors"
	"github.com/kyleterry/vhttp/pkg/files/store"
)

// Channel is the only writer of a store. Each update replaces the store's
// contents and then notifies every subscribed observer.
type Channel struct {
	store  *store.Store
	logger zerolog.Logger
	sid    *shortid.Shortid

	// serializes updates so notifications go out in installation order
	updateMu sync.Mutex

	mu        sync.RWMutex
	observers map[string]Observer
}

func NewChannel(s *store.Store, logger zerolog.Logger) (*Channel, error) {
	sid, err := shortid.New(1, shortid.DefaultABC, uint64(time.Now().UnixNano()))
	if err != nil {
		return nil, err
	}

	return &Channel{
		store:     s,
		logger:    logger,
		sid:       sid,
		observers: map[string]Observer{},
	}, nil
}

// Update installs entries as the new contents of the store and broadcasts
// CACHE_READY with the resulting file count. If the entries are rejected the
// store is left untouched and nobody is notified.
func (c *Channel) Update(entries []store.Entry) (int, error) {
	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	if err := c.store.ReplaceAll(entries); err != nil {
		return 0, err
	}

	count := c.store.Size()

	c.logger.Info().Int("files", count).Msg("file cache updated")

	c.publish(Notification{Type: TypeCacheReady, FileCount: count})

	return count, nil
}

// HandleMessage decodes a control message and applies it. Messages of unknown
// type are ignored.
func (c *Channel) HandleMessage(data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return errors.NewMalformedMessageError(err.Error()).WithCause(err)
	}

	if msg.Type != TypeFileCacheUpdate {
		c.logger.Debug().Str("type", msg.Type).Msg("ignoring control message")

		return nil
	}

	_, err := c.Update(msg.Entries())

	return err
}

// Subscribe registers o and returns the id to unsubscribe it with.
func (c *Channel) Subscribe(o Observer) (string, error) {
	id, err := c.sid.Generate()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.observers[id] = o
	c.mu.Unlock()

	return id, nil
}

func (c *Channel) Unsubscribe(id string) {
	c.mu.Lock()
	delete(c.observers, id)
	c.mu.Unlock()
}

// Observers returns the number of subscribed observers.
func (c *Channel) Observers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.observers)
}

func (c *Channel) publish(n Notification) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for id, o := range c.observers {
		if err := o.Notify(n); err != nil {
			c.logger.Debug().Err(err).Str("observer", id).Msg("notification not delivered")
		}
	}
}
