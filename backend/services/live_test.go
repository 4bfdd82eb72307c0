// ABOUTME: Tests for the live lottery service
// ABOUTME: Connects rooms against fake live API and danmaku servers end to end

package services

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/markalston/live-lottery/backend/cache"
	"github.com/markalston/live-lottery/backend/models"
)

type staticCookie string

func (c staticCookie) Cookie() string { return string(c) }

// liveAPI answers room lookups. Rooms listed in good resolve to the fake
// danmaku server; every other room id gets a platform error.
func liveAPI(t *testing.T, danmaku *fakeDanmaku, good ...string) *httptest.Server {
	t.Helper()
	known := map[string]bool{}
	for _, id := range good {
		known[id] = true
	}
	host := danmaku.host()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/room/v1/Room/get_info":
			id := r.URL.Query().Get("room_id")
			if !known[id] {
				fmt.Fprint(w, `{"code":1,"message":"room not found"}`)
				return
			}
			fmt.Fprintf(w, `{"code":0,"data":{"room_id":%s,"title":"room %s","live_status":1}}`, id, id)
		case "/xlive/web-room/v1/index/getDanmuInfo":
			fmt.Fprintf(w, `{"code":0,"data":{"token":"tok","host_list":[{"host":%q,"wss_port":%d}]}}`, host.Host, host.Port)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestLive(t *testing.T, api *httptest.Server, danmaku *fakeDanmaku) *LiveService {
	t.Helper()
	rooms := cache.New[*models.Room](time.Minute)
	t.Cleanup(rooms.Close)

	s := NewLiveService(NewRoomResolver(api.URL, "ua", nil, rooms), staticCookie("DedeUserID=1"), NewCollector(), "ua", nil)
	s.tlsConfig = danmaku.tlsConfig()
	t.Cleanup(s.Stop)
	return s
}

func TestLiveService_ConnectCollectDraw(t *testing.T) {
	danmaku := newFakeDanmaku(t, true)
	s := newTestLive(t, liveAPI(t, danmaku, "100", "200"), danmaku)

	if err := s.Connect(t.Context(), []int64{100, 200}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if got := len(s.ConnectedRooms()); got != 2 {
		t.Fatalf("expected 2 connected rooms, got %d", got)
	}
	<-danmaku.joins
	<-danmaku.joins

	if err := s.Start("lucky"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("expected collection to be running")
	}

	danmaku.push <- serverPacket(ProtoJSON, OpMessage, danmu(1, "alice", "lucky me"))
	danmaku.push <- zlibPacket(t,
		serverPacket(ProtoJSON, OpMessage, danmu(2, "bob", "so lucky")),
		serverPacket(ProtoJSON, OpMessage, danmu(3, "carol", "hello")),
	)
	waitFor(t, "participants", func() bool { return s.ParticipantCount() == 2 })

	s.Stop()
	if s.IsRunning() {
		t.Error("expected collection stopped")
	}
	if len(s.ConnectedRooms()) != 0 {
		t.Error("expected connections closed after stop")
	}

	winners := s.Draw(5)
	if len(winners) != 2 {
		t.Fatalf("expected 2 winners, got %d", len(winners))
	}
	for _, w := range winners {
		if w.UID == 3 {
			t.Errorf("participant without keyword was drawn: %+v", w)
		}
	}
}

func TestLiveService_PartialConnectSucceeds(t *testing.T) {
	danmaku := newFakeDanmaku(t, true)
	s := newTestLive(t, liveAPI(t, danmaku, "100"), danmaku)

	if err := s.Connect(t.Context(), []int64{100, 999}); err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	rooms := s.ConnectedRooms()
	if len(rooms) != 1 || rooms[0] != 100 {
		t.Errorf("expected only room 100 connected, got %v", rooms)
	}
}

func TestLiveService_AllRoomsFail(t *testing.T) {
	danmaku := newFakeDanmaku(t, true)
	s := newTestLive(t, liveAPI(t, danmaku), danmaku)

	err := s.Connect(t.Context(), []int64{1, 2})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	var platformErr *PlatformError
	if !errors.As(err, &platformErr) {
		t.Errorf("expected the platform error to be wrapped, got %v", err)
	}
}

func TestLiveService_ConnectNoRooms(t *testing.T) {
	danmaku := newFakeDanmaku(t, true)
	s := newTestLive(t, liveAPI(t, danmaku), danmaku)

	if err := s.Connect(t.Context(), nil); !errors.Is(err, ErrNoRooms) {
		t.Fatalf("expected ErrNoRooms, got %v", err)
	}
}

func TestLiveService_ReconnectReplacesConnections(t *testing.T) {
	danmaku := newFakeDanmaku(t, true)
	s := newTestLive(t, liveAPI(t, danmaku, "100", "200"), danmaku)

	if err := s.Connect(t.Context(), []int64{100, 200}); err != nil {
		t.Fatal(err)
	}
	s.mu.Lock()
	first := append([]*DanmakuClient(nil), s.clients...)
	s.mu.Unlock()

	if err := s.Connect(t.Context(), []int64{200}); err != nil {
		t.Fatal(err)
	}
	for _, c := range first {
		select {
		case <-c.Done():
		default:
			t.Errorf("previous connection to room %d was not closed", c.RoomID())
		}
	}
	if rooms := s.ConnectedRooms(); len(rooms) != 1 || rooms[0] != 200 {
		t.Errorf("expected only room 200, got %v", rooms)
	}
}

func TestLiveService_StopInterruptsConnect(t *testing.T) {
	danmaku := newFakeDanmaku(t, false)
	s := newTestLive(t, liveAPI(t, danmaku, "100"), danmaku)

	connectErr := make(chan error, 1)
	go func() {
		connectErr <- s.Connect(t.Context(), []int64{100})
	}()
	// the join has arrived, so the connect is now waiting for a welcome
	<-danmaku.joins

	start := time.Now()
	s.Stop()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Stop blocked for %v while a connect was in flight", elapsed)
	}

	select {
	case err := <-connectErr:
		if !errors.Is(err, ErrConnectInterrupted) {
			t.Errorf("expected ErrConnectInterrupted, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("connect did not return after Stop")
	}
	if rooms := s.ConnectedRooms(); len(rooms) != 0 {
		t.Errorf("expected no connected rooms after Stop, got %v", rooms)
	}
}

func TestLiveService_StartRequiresConnection(t *testing.T) {
	danmaku := newFakeDanmaku(t, true)
	s := newTestLive(t, liveAPI(t, danmaku), danmaku)

	if err := s.Start("x"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if s.IsRunning() {
		t.Error("collection should not run without a connection")
	}
}

func TestLiveService_StartRejectsBadKeyword(t *testing.T) {
	danmaku := newFakeDanmaku(t, true)
	s := newTestLive(t, liveAPI(t, danmaku, "100"), danmaku)
	if err := s.Connect(t.Context(), []int64{100}); err != nil {
		t.Fatal(err)
	}

	if err := s.Start("bad\nkeyword"); err == nil {
		t.Fatal("expected keyword validation error")
	}
}

func TestLiveService_StopWhenIdle(t *testing.T) {
	danmaku := newFakeDanmaku(t, true)
	s := newTestLive(t, liveAPI(t, danmaku), danmaku)

	s.Stop()
	s.Stop()
	if s.IsRunning() {
		t.Error("expected idle service to stay stopped")
	}
}
