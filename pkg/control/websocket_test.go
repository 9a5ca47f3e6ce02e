package control

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/stretchr/testify/require"

	"github.com/kyleterry/vhttp/pkg/logging"
	"github.com/kyleterry/vhttp/pkg/testutil"
)

func TestWebSocketHandler(t *testing.T) {
	s, c := newTestChannel(t)

	ts := httptest.NewServer(NewWebSocketHandler(c, logging.Nop()))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	owner, _, err := ws.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer owner.CloseNow()

	watcher, _, err := ws.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer watcher.CloseNow()

	require.Eventually(t, func() bool { return c.Observers() == 2 }, 2*time.Second, 10*time.Millisecond)

	b, err := json.Marshal(NewUpdateMessage(testutil.Entries("a.txt", "text/plain", "a", "b.txt", "", "bb")))
	require.NoError(t, err)
	require.NoError(t, owner.Write(ctx, ws.MessageText, b))

	for _, conn := range []*ws.Conn{owner, watcher} {
		typ, data, err := conn.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, ws.MessageText, typ)

		var n Notification
		require.NoError(t, json.Unmarshal(data, &n))
		require.Equal(t, Notification{Type: TypeCacheReady, FileCount: 2}, n)
	}

	require.Equal(t, 2, s.Size())

	t.Run("closed connections are unsubscribed", func(t *testing.T) {
		require.NoError(t, watcher.Close(ws.StatusNormalClosure, ""))

		require.Eventually(t, func() bool { return c.Observers() == 1 }, 2*time.Second, 10*time.Millisecond)
	})
}

func TestWebSocketHandlerChecksOrigin(t *testing.T) {
	s, c := newTestChannel(t)

	h := NewWebSocketHandler(c, logging.Nop())
	h.OriginPatterns = []string{"owner.example"}

	ts := httptest.NewServer(h)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	_, resp, err := ws.Dial(ctx, url, &ws.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"https://evil.example"}},
	})
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, 0, c.Observers())

	owner, _, err := ws.Dial(ctx, url, &ws.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"https://owner.example"}},
	})
	require.NoError(t, err)
	defer owner.CloseNow()

	b, err := json.Marshal(NewUpdateMessage(testutil.Entries("a.txt", "text/plain", "a")))
	require.NoError(t, err)
	require.NoError(t, owner.Write(ctx, ws.MessageText, b))

	_, data, err := owner.Read(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"CACHE_READY","fileCount":1}`, string(data))
	require.Equal(t, 1, s.Size())
}
