// ABOUTME: Lottery participant collector fed by danmaku chat messages
// ABOUTME: Filters chat by keyword, counts messages per user and draws random winners

package services

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/tidwall/gjson"

	"github.com/markalston/live-lottery/backend/models"
)

type participant struct {
	uid      int64
	username string
	count    atomic.Int64
}

// Collector gathers distinct chat users for one lottery run at a time
type Collector struct {
	mu           sync.RWMutex
	running      bool
	keyword      string
	runID        string
	participants *xsync.MapOf[string, *participant]
}

func NewCollector() *Collector {
	return &Collector{participants: xsync.NewMapOf[*participant]()}
}

// Start begins a new run, discarding the previous participants.
// An empty keyword accepts every chat message. Returns the run id.
func (c *Collector) Start(keyword string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.keyword = keyword
	c.runID = uuid.NewString()
	c.participants = xsync.NewMapOf[*participant]()
	return c.runID
}

// Stop ends collection; participants stay available for Draw.
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

func (c *Collector) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// RunID identifies the current or last run
func (c *Collector) RunID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runID
}

// HandleMessage processes one JSON chat command. Anything other than a
// matching DANMU_MSG* while running is ignored.
func (c *Collector) HandleMessage(body []byte) {
	if !strings.HasPrefix(gjson.GetBytes(body, "cmd").String(), "DANMU_MSG") {
		return
	}

	// info[1] is the text, info[2] is [uid, username, ...]
	info := gjson.GetBytes(body, "info")
	text := info.Get("1").String()
	uid := info.Get("2.0").Int()
	username := info.Get("2.1").String()
	if uid <= 0 {
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.running {
		return
	}
	if c.keyword != "" && !strings.Contains(text, c.keyword) {
		return
	}

	p, _ := c.participants.LoadOrStore(strconv.FormatInt(uid, 10), &participant{uid: uid, username: username})
	p.count.Add(1)
}

// Count is the number of distinct participants
func (c *Collector) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.participants.Size()
}

// Participants returns a snapshot of every participant
func (c *Collector) Participants() []models.Participant {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := make([]models.Participant, 0, c.participants.Size())
	c.participants.Range(func(_ string, p *participant) bool {
		all = append(all, models.Participant{
			UID:      p.uid,
			Username: p.username,
			Count:    int(p.count.Load()),
		})
		return true
	})
	return all
}

// Draw returns min(n, participants) distinct participants in random order.
// n <= 0 draws everyone.
func (c *Collector) Draw(n int) []models.Participant {
	all := c.Participants()
	rand.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	if n <= 0 || n > len(all) {
		n = len(all)
	}
	return all[:n]
}
