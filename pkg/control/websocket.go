package control

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	ws "github.com/coder/websocket"
	"github.com/rs/zerolog"
)

const (
	defaultSendQueue      = 16
	defaultMaxMessageSize = 64 << 20
)

// WebSocketHandler exposes a Channel over websocket connections. Every open
// connection is an observer and may also push FILE_CACHE_UPDATE messages.
type WebSocketHandler struct {
	channel *Channel
	logger  zerolog.Logger

	// MaxMessageSize limits inbound frames. Snapshots carry file content so
	// this is much larger than the library default.
	MaxMessageSize int64

	// OriginPatterns lists extra Origin hosts allowed to connect, as
	// filepath.Match patterns. Browsers on any other origin are refused unless
	// the origin matches the request's Host.
	OriginPatterns []string
}

func NewWebSocketHandler(c *Channel, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		channel:        c,
		logger:         logger,
		MaxMessageSize: defaultMaxMessageSize,
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Accept(w, r, &ws.AcceptOptions{
		OriginPatterns:  h.OriginPatterns,
		CompressionMode: ws.CompressionDisabled,
	})
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket accept failed")

		return
	}

	conn.SetReadLimit(h.MaxMessageSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	peer := &wsObserver{queue: make(chan Notification, defaultSendQueue)}

	id, err := h.channel.Subscribe(peer)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to subscribe websocket observer")
		conn.Close(ws.StatusInternalError, "subscribe failed")

		return
	}

	logger := h.logger.With().Str("observer", id).Str("remote", r.RemoteAddr).Logger()
	logger.Debug().Msg("control connection opened")

	defer func() {
		h.channel.Unsubscribe(id)
		peer.closed.Store(true)
		logger.Debug().Msg("control connection closed")
	}()

	go h.writeLoop(ctx, conn, peer, logger)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if status := ws.CloseStatus(err); status != ws.StatusNormalClosure && status != ws.StatusGoingAway {
				logger.Debug().Err(err).Msg("control connection read failed")
			}

			conn.CloseNow()

			return
		}

		if typ != ws.MessageText {
			continue
		}

		if err := h.channel.HandleMessage(data); err != nil {
			logger.Warn().Err(err).Msg("rejected control message")
		}
	}
}

func (h *WebSocketHandler) writeLoop(ctx context.Context, conn *ws.Conn, peer *wsObserver, logger zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-peer.queue:
			data, err := json.Marshal(n)
			if err != nil {
				continue
			}

			if err := conn.Write(ctx, ws.MessageText, data); err != nil {
				logger.Debug().Err(err).Msg("notification write failed")

				return
			}
		}
	}
}

type wsObserver struct {
	queue  chan Notification
	closed atomic.Bool
}

func (o *wsObserver) Notify(n Notification) error {
	if o.closed.Load() {
		return nil
	}

	select {
	case o.queue <- n:
		return nil
	default:
		return ErrObserverFull
	}
}
