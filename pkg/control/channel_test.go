package control

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	storeerrors "github.com/kyleterry/vhttp/pkg/files/errors"
	"github.com/kyleterry/vhttp/pkg/files/store"
	"github.com/kyleterry/vhttp/pkg/logging"
	"github.com/kyleterry/vhttp/pkg/testutil"
)

func newTestChannel(t *testing.T) (*store.Store, *Channel) {
	s := store.New()

	c, err := NewChannel(s, logging.Nop())
	require.NoError(t, err)

	return s, c
}

func TestChannelUpdateNotifiesObservers(t *testing.T) {
	s, c := newTestChannel(t)

	first := NewQueueObserver(4)
	second := NewQueueObserver(4)

	id1, err := c.Subscribe(first)
	require.NoError(t, err)
	id2, err := c.Subscribe(second)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)
	require.Equal(t, 2, c.Observers())

	n, err := c.Update(testutil.Entries("a.txt", "text/plain", "a", "b.txt", "text/plain", "b"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 2, s.Size())

	want := Notification{Type: TypeCacheReady, FileCount: 2}
	require.Equal(t, want, <-first.C())
	require.Equal(t, want, <-second.C())

	t.Run("unsubscribed observers are not notified", func(t *testing.T) {
		c.Unsubscribe(id2)
		require.Equal(t, 1, c.Observers())

		_, err := c.Update(nil)
		require.NoError(t, err)

		require.Equal(t, Notification{Type: TypeCacheReady, FileCount: 0}, <-first.C())
		require.Empty(t, second.C())
	})
}

func TestChannelRejectedUpdate(t *testing.T) {
	s, c := newTestChannel(t)

	q := NewQueueObserver(1)
	_, err := c.Subscribe(q)
	require.NoError(t, err)

	bad := testutil.Entries("a.txt", "", "a")
	bad[0].Key = "other"

	_, err = c.Update(bad)
	require.Error(t, err)
	require.Equal(t, 0, s.Size())
	require.Empty(t, q.C())
}

func TestChannelIgnoresFailingObservers(t *testing.T) {
	_, c := newTestChannel(t)

	var calls int
	_, err := c.Subscribe(ObserverFunc(func(Notification) error {
		calls++

		return errors.New("unreachable")
	}))
	require.NoError(t, err)

	full := NewQueueObserver(1)
	_, err = c.Subscribe(full)
	require.NoError(t, err)

	_, err = c.Update(nil)
	require.NoError(t, err)
	_, err = c.Update(nil)
	require.NoError(t, err)

	require.Equal(t, 2, calls)
	require.Len(t, full.C(), 1)
}

func TestQueueObserverDropsWhenFull(t *testing.T) {
	q := NewQueueObserver(1)

	require.NoError(t, q.Notify(Notification{Type: TypeCacheReady, FileCount: 1}))
	require.ErrorIs(t, q.Notify(Notification{Type: TypeCacheReady, FileCount: 2}), ErrObserverFull)

	require.Equal(t, 1, (<-q.C()).FileCount)
}

func TestHandleMessage(t *testing.T) {
	s, c := newTestChannel(t)

	q := NewQueueObserver(1)
	_, err := c.Subscribe(q)
	require.NoError(t, err)

	msg := `{
		"type": "FILE_CACHE_UPDATE",
		"files": [
			["report.pdf", {"name": "report.pdf", "size": 4, "type": "application/pdf", "lastModified": 1704067200000, "content": "JVBERg=="}],
			["notes", {"type": "", "content": "aGk="}]
		]
	}`

	require.NoError(t, c.HandleMessage([]byte(msg)))
	require.Equal(t, Notification{Type: TypeCacheReady, FileCount: 2}, <-q.C())

	rec, err := s.Get("report.pdf")
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(rec.Content))
	require.Equal(t, int64(1704067200000), rec.LastModifiedMillis())

	rec, err = s.Get("notes")
	require.NoError(t, err)
	require.Equal(t, "notes", rec.Name)
	require.Equal(t, int64(2), rec.Size)

	t.Run("unknown types are ignored", func(t *testing.T) {
		require.NoError(t, c.HandleMessage([]byte(`{"type":"PING"}`)))
		require.Equal(t, 2, s.Size())
		require.Empty(t, q.C())
	})

	t.Run("malformed messages are errors", func(t *testing.T) {
		for _, msg := range []string{`not json`, `{"type":"FILE_CACHE_UPDATE","files":[["only-name"]]}`} {
			err := c.HandleMessage([]byte(msg))

			var storeErr *storeerrors.StoreError
			require.True(t, errors.As(err, &storeErr), msg)
			require.Equal(t, storeerrors.ErrorTypeMalformedMessage, storeErr.Type)
			require.Equal(t, 400, storeErr.StatusCode)
			require.True(t, strings.HasPrefix(storeErr.Error(), "malformed control message: "), storeErr.Error())
			require.NotContains(t, storeErr.Error(), "record")
		}

		require.Equal(t, 2, s.Size())
	})

	t.Run("size mismatch is rejected", func(t *testing.T) {
		err := c.HandleMessage([]byte(`{"type":"FILE_CACHE_UPDATE","files":[["a",{"name":"a","size":9,"content":"YQ=="}]]}`))
		require.Error(t, err)
		require.Equal(t, 2, s.Size())
	})
}

func TestUpdateMessageRoundTrip(t *testing.T) {
	entries := testutil.Entries("a.txt", "text/plain", "hello", "b", "", "")

	b, err := json.Marshal(NewUpdateMessage(entries))
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(b, &msg))
	require.Equal(t, TypeFileCacheUpdate, msg.Type)

	got := msg.Entries()
	require.Len(t, got, 2)
	require.Equal(t, "a.txt", got[0].Key)
	require.Equal(t, "hello", string(got[0].Record.Content))
	require.True(t, testutil.Modified.Equal(got[0].Record.LastModified))
	require.Equal(t, int64(0), got[1].Record.Size)
}
