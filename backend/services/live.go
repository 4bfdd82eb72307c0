// ABOUTME: Live lottery service tying room connections to the participant collector
// ABOUTME: Connects watched rooms concurrently and exposes start, stop and draw

package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/markalston/live-lottery/backend/models"
)

const maxConcurrentConnects = 4

var (
	ErrNoRooms            = errors.New("no rooms to connect")
	ErrNotConnected       = errors.New("no live room connected")
	ErrConnectInterrupted = errors.New("connect interrupted by a stop or newer connect")
)

// CookieSource supplies the login cookie used for room connections
type CookieSource interface {
	Cookie() string
}

// LiveService owns the danmaku connections and the collector
type LiveService struct {
	resolver  *RoomResolver
	cookies   CookieSource
	collector *Collector
	userAgent string
	dial      DialContextFunc
	tlsConfig *tls.Config

	mu      sync.Mutex
	clients []*DanmakuClient
	// gen changes on every Connect and Stop; a connect whose generation
	// is no longer current discards what it dialed
	gen           uint64
	cancelConnect context.CancelFunc
}

func NewLiveService(resolver *RoomResolver, cookies CookieSource, collector *Collector, userAgent string, dial DialContextFunc) *LiveService {
	return &LiveService{
		resolver:  resolver,
		cookies:   cookies,
		collector: collector,
		userAgent: userAgent,
		dial:      dial,
	}
}

// Connect replaces any existing connections with one per room. Rooms are
// connected concurrently and the call succeeds if at least one connects.
// A Stop while rooms are still dialing cancels the connect.
func (s *LiveService) Connect(ctx context.Context, rooms []int64) error {
	if len(rooms) == 0 {
		return ErrNoRooms
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	gen, old := s.supersedeLocked(cancel)
	s.mu.Unlock()
	closeClients(old)

	cookie := s.cookies.Cookie()
	connected := make([]*DanmakuClient, len(rooms))
	failures := make([]error, len(rooms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentConnects)
	for i, roomID := range rooms {
		g.Go(func() error {
			room, err := s.resolver.Resolve(gctx, roomID, cookie)
			if err != nil {
				failures[i] = err
				return nil
			}
			client := NewDanmakuClient(room, cookie, s.userAgent, s.dial, s.tlsConfig, s.collector.HandleMessage)
			if err := client.Connect(gctx); err != nil {
				failures[i] = err
				return nil
			}
			connected[i] = client
			return nil
		})
	}
	_ = g.Wait()

	var clients []*DanmakuClient
	for _, client := range connected {
		if client != nil {
			clients = append(clients, client)
		}
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		closeClients(clients)
		return ErrConnectInterrupted
	}
	s.clients = clients
	s.cancelConnect = nil
	s.mu.Unlock()

	for i, client := range connected {
		if client == nil {
			slog.Warn("Room connection failed", "room_id", rooms[i], "error", failures[i])
		}
	}
	if len(clients) == 0 {
		return fmt.Errorf("%w: %w", ErrNotConnected, errors.Join(failures...))
	}
	slog.Info("Live rooms connected", "connected", len(clients), "requested", len(rooms))
	return nil
}

// supersedeLocked starts a new generation and cancels any connect still in
// flight. The caller closes the returned clients after releasing the lock.
func (s *LiveService) supersedeLocked(cancel context.CancelFunc) (uint64, []*DanmakuClient) {
	s.gen++
	if s.cancelConnect != nil {
		s.cancelConnect()
	}
	s.cancelConnect = cancel
	old := s.clients
	s.clients = nil
	return s.gen, old
}

func closeClients(clients []*DanmakuClient) {
	for _, c := range clients {
		c.Close()
	}
}

// ConnectedRooms lists the real ids of open connections
func (s *LiveService) ConnectedRooms() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.clients))
	for _, c := range s.clients {
		select {
		case <-c.Done():
		default:
			ids = append(ids, c.RoomID())
		}
	}
	return ids
}

// Start begins a collection run for keyword
func (s *LiveService) Start(keyword string) error {
	if err := ValidateKeyword(keyword); err != nil {
		return err
	}
	// TODO: reconnect rooms whose connection drops during a run
	if len(s.ConnectedRooms()) == 0 {
		return ErrNotConnected
	}

	runID := s.collector.Start(keyword)
	slog.Info("Collection started", "run_id", runID, "keyword", sanitizeForLog(keyword))
	return nil
}

// Stop ends the run and closes every connection. Safe to call when idle.
func (s *LiveService) Stop() {
	wasRunning := s.collector.IsRunning()
	s.collector.Stop()

	s.mu.Lock()
	_, old := s.supersedeLocked(nil)
	s.mu.Unlock()
	closeClients(old)

	if wasRunning {
		slog.Info("Collection stopped", "run_id", s.collector.RunID(), "participants", s.collector.Count())
	}
}

func (s *LiveService) IsRunning() bool {
	return s.collector.IsRunning()
}

func (s *LiveService) ParticipantCount() int {
	return s.collector.Count()
}

// Draw picks up to n winners from the current run's participants
func (s *LiveService) Draw(n int) []models.Participant {
	winners := s.collector.Draw(n)
	slog.Info("Winners drawn", "run_id", s.collector.RunID(), "requested", n, "winners", len(winners))
	return winners
}
