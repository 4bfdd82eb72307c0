// ABOUTME: Danmaku websocket client for a single live room
// ABOUTME: Joins the room, keeps the connection alive and forwards chat message bodies

package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/sjson"

	"github.com/markalston/live-lottery/backend/models"
)

const (
	danmakuHeartbeat   = 30 * time.Second
	danmakuAuthTimeout = 5 * time.Second
	danmakuWriteWait   = 10 * time.Second
	danmakuOrigin      = "https://live.bilibili.com"
)

// ErrDanmakuAuth is returned when the server never acknowledges the join packet
var ErrDanmakuAuth = errors.New("danmaku server did not accept join")

// DanmakuClient holds one room's chat connection
type DanmakuClient struct {
	room      *models.Room
	cookie    string
	userAgent string
	onMessage func(body []byte)

	dialer      *websocket.Dialer
	heartbeat   time.Duration
	authTimeout time.Duration

	conn       *websocket.Conn
	writeMu    sync.Mutex
	done       chan struct{}
	closeOnce  sync.Once
	popularity atomic.Uint32
}

// NewDanmakuClient prepares a client for room. onMessage receives the JSON
// body of every chat command frame and is called from the read goroutine.
func NewDanmakuClient(room *models.Room, cookie, userAgent string, dial DialContextFunc, tlsConfig *tls.Config, onMessage func([]byte)) *DanmakuClient {
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: platformTimeout,
		TLSClientConfig:  tlsConfig,
	}
	if dial != nil {
		dialer.Proxy = nil
		dialer.NetDialContext = dial
	}

	return &DanmakuClient{
		room:        room,
		cookie:      cookie,
		userAgent:   userAgent,
		onMessage:   onMessage,
		dialer:      dialer,
		heartbeat:   danmakuHeartbeat,
		authTimeout: danmakuAuthTimeout,
		done:        make(chan struct{}),
	}
}

// RoomID is the real id of the connected room
func (c *DanmakuClient) RoomID() int64 {
	return c.room.RoomID
}

// Popularity is the last viewer count reported by the server
func (c *DanmakuClient) Popularity() uint32 {
	return c.popularity.Load()
}

// Done is closed once the connection has ended
func (c *DanmakuClient) Done() <-chan struct{} {
	return c.done
}

// Connect tries each danmaku host in turn until one accepts the join
// packet, then starts the read and heartbeat goroutines.
func (c *DanmakuClient) Connect(ctx context.Context) error {
	if len(c.room.Hosts) == 0 {
		return fmt.Errorf("room %d has no danmaku hosts", c.room.RoomID)
	}

	join, err := c.joinBody()
	if err != nil {
		return fmt.Errorf("building join packet: %w", err)
	}

	var lastErr error
	for _, host := range c.room.Hosts {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := c.dial(ctx, host, join)
		if err != nil {
			slog.Debug("Danmaku host failed", "room_id", c.room.RoomID, "host", host.Host, "error", err)
			lastErr = err
			continue
		}

		c.conn = conn
		slog.Info("Danmaku connected", "room_id", c.room.RoomID, "host", host.Host)
		go c.readLoop()
		go c.heartbeatLoop()
		return nil
	}

	return fmt.Errorf("connecting room %d: %w", c.room.RoomID, lastErr)
}

func (c *DanmakuClient) dial(ctx context.Context, host models.DanmakuHost, join []byte) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Origin", danmakuOrigin)
	if c.userAgent != "" {
		header.Set("User-Agent", c.userAgent)
	}
	if c.cookie != "" {
		header.Set("Cookie", c.cookie)
	}

	conn, _, err := c.dialer.DialContext(ctx, host.WebSocketURL(), header)
	if err != nil {
		return nil, err
	}

	// Closing the conn unblocks the join handshake when ctx ends
	stop := context.AfterFunc(ctx, func() { conn.Close() })

	err = conn.WriteMessage(websocket.BinaryMessage, EncodePacket(OpJoin, join))
	if err == nil {
		err = c.awaitWelcome(conn)
	}
	if !stop() {
		conn.Close()
		return nil, ctx.Err()
	}
	if err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func (c *DanmakuClient) awaitWelcome(conn *websocket.Conn) error {
	if err := conn.SetReadDeadline(time.Now().Add(c.authTimeout)); err != nil {
		return err
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDanmakuAuth, err)
		}
		packets, _ := DecodePackets(data)
		for _, p := range packets {
			if p.Operation == OpWelcome {
				return conn.SetReadDeadline(time.Time{})
			}
		}
	}
}

type joinField struct {
	path  string
	value any
}

// joinBody builds the room join payload. The token and buvid are optional;
// without them the server still accepts an anonymous join.
func (c *DanmakuClient) joinBody() ([]byte, error) {
	uid, _ := strconv.ParseInt(cookieValue(c.cookie, "DedeUserID"), 10, 64)

	fields := []joinField{
		{"uid", uid},
		{"roomid", c.room.RoomID},
		{"protover", 2},
		{"platform", "web"},
		{"type", 2},
	}
	if c.room.Token != "" {
		fields = append(fields, joinField{"key", c.room.Token})
	}
	if buvid := cookieValue(c.cookie, "buvid3"); buvid != "" {
		fields = append(fields, joinField{"buvid", buvid})
	}

	body := []byte(`{}`)
	var err error
	for _, f := range fields {
		if body, err = sjson.SetBytes(body, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (c *DanmakuClient) readLoop() {
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				slog.Warn("Danmaku connection lost", "room_id", c.room.RoomID, "error", err)
			}
			return
		}

		packets, err := DecodePackets(data)
		if err != nil {
			slog.Debug("Dropping malformed danmaku frame", "room_id", c.room.RoomID, "error", err)
		}
		for _, p := range packets {
			switch {
			case p.Operation == OpHeartbeatAck:
				if n, ok := p.Popularity(); ok {
					c.popularity.Store(n)
				}
			case p.Operation == OpMessage && p.Protocol == ProtoJSON:
				if c.onMessage != nil {
					c.onMessage(p.Body)
				}
			}
		}
	}
}

func (c *DanmakuClient) heartbeatLoop() {
	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.write(EncodePacket(OpHeartbeat, nil)); err != nil {
				slog.Debug("Danmaku heartbeat failed", "room_id", c.room.RoomID, "error", err)
				return
			}
		}
	}
}

func (c *DanmakuClient) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(danmakuWriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Close ends the connection. Safe to call more than once.
func (c *DanmakuClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.writeMu.Lock()
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			c.writeMu.Unlock()
			c.conn.Close()
		}
	})
}
