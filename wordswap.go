// Wordswap
//
// Players join a room by code and each submits a secret five-letter word.
// Once everyone has submitted, the words are shuffled around the room so
// nobody gets their own, and each player tries to guess the word they were
// handed. The room tracks who finished and who ran out of attempts.
//
// Features:
// - One websocket per browser tab at /ws, with JSON frames tagged by "type"
// - Rooms are created on first join and deleted when the last player leaves
// - First player in a room is host; the next-oldest player takes over if they leave
// - Only the host may start the game, and only once every word is in
// - Validation errors go back to the offending client only
// - Dropped connections are cleaned up as if the player had left
// - Random 6-char room codes via crypto/rand, with server-side collision check
// - QR code for sharing a room link, backed by go-qrcode

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"

	"github.com/Seednode/wordswap/coordinator"
	"github.com/Seednode/wordswap/session"
	"github.com/Seednode/wordswap/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket connection. It implements coordinator.Conn.
type Client struct {
	id      string
	conn    *websocket.Conn
	limiter *rate.Limiter
	log     zerolog.Logger

	mu     sync.Mutex
	send   chan any
	closed bool
}

func newClient(cfg *Config, conn *websocket.Conn, logger zerolog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:      id,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(cfg.eventRate), cfg.eventBurst),
		log:     logger.With().Str("conn", id).Logger(),
		send:    make(chan any, cfg.sendBuffer),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Send(msg any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump(ctx context.Context, co *coordinator.Coordinator) {
	defer func() {
		co.Disconnect(ctx, c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("read failed")
			}
			return
		}

		var msg coordinator.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debug().Err(err).Msg("ignoring malformed frame")
			continue
		}

		// leave-room is never throttled so a player can always get out.
		if msg.Type != coordinator.EventLeaveRoom && !c.limiter.Allow() {
			c.log.Debug().Str("event", msg.Type).Msg("rate limited")
			continue
		}

		co.Dispatch(ctx, coordinator.Event{ClientMessage: msg, ConnID: c.id})
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func newUpgrader(cfg *Config) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			origins := cfg.allowedOrigins()
			return slices.Contains(origins, "*") || slices.Contains(origins, origin)
		},
	}
}

// serveWS upgrades the request and hands the connection to the coordinator.
// The optional username query parameter binds the connection to a player
// before any room is joined.
func serveWS(cfg *Config, co *coordinator.Coordinator, logger zerolog.Logger) httprouter.Handle {
	upgrader := newUpgrader(cfg)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Str("remote", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		client := newClient(cfg, conn, logger)
		username := r.URL.Query().Get("username")

		logger.Debug().Str("conn", client.id).Str("username", username).Str("remote", realIP(r)).Msg("connected")

		co.Register(r.Context(), client, username)

		go client.writePump()
		client.readPump(r.Context(), co)
	}
}

type newRoomResponse struct {
	RoomCode string `json:"roomCode"`
}

// serveNewRoom hands out a room code that is not currently in use.
func serveNewRoom(cfg *Config, st store.Store, logger zerolog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		code := store.NewCode(st, session.CryptoRandom{})

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(newRoomResponse{RoomCode: code}); err != nil {
			logger.Warn().Err(err).Msg("writing room code failed")
			return
		}

		logger.Debug().Str("room", code).Str("remote", realIP(r)).Msg("issued room code")
	}
}

// serveQR renders a PNG QR code pointing at the client's page for the room.
func serveQR(cfg *Config, logger zerolog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code, err := session.NormalizeRoomCode(ps.ByName("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		const qrSize = 320
		png, err := qrcode.Encode(cfg.roomURL(code), qrcode.Medium, qrSize)
		if err != nil {
			logger.Error().Err(err).Str("room", code).Msg("qr generation failed")
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}

// registerWordGame sets up routes so that:
//   - $prefix/ws        → websocket for all rooms
//   - $prefix/new       → unused room code as JSON
//   - $prefix/qr/:code  → PNG QR code for the room's client URL
func registerWordGame(cfg *Config, mux *httprouter.Router, co *coordinator.Coordinator, st store.Store, logger zerolog.Logger) {
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, co, logger))
	mux.GET(cfg.prefix+"/new", serveNewRoom(cfg, st, logger))
	mux.GET(cfg.prefix+"/qr/:code", serveQR(cfg, logger))
}
