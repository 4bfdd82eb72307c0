// ABOUTME: Live room resolution for danmaku connections
// ABOUTME: Maps short room ids to real ids and looks up the chat token and host list

package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/markalston/live-lottery/backend/cache"
	"github.com/markalston/live-lottery/backend/models"
)

// defaultDanmakuHosts are used when no host list can be fetched
var defaultDanmakuHosts = []models.DanmakuHost{
	{Host: "broadcastlv.chat.bilibili.com", Port: 443},
	{Host: "zj-cn-live-comet.chat.bilibili.com", Port: 443},
}

// RoomResolver looks up connection details for live rooms
type RoomResolver struct {
	http     *platformHTTP
	liveBase string
	cache    *cache.Cache[*models.Room]
}

func NewRoomResolver(liveBase, userAgent string, dial DialContextFunc, c *cache.Cache[*models.Room]) *RoomResolver {
	return &RoomResolver{
		http: &platformHTTP{
			client:    NewHTTPClient(platformTimeout, dial),
			userAgent: userAgent,
		},
		liveBase: liveBase,
		cache:    c,
	}
}

// Resolve returns the real room id, danmaku token and hosts for roomID.
// Only the room info lookup is fatal; the danmaku info falls back to
// default hosts with no token.
func (r *RoomResolver) Resolve(ctx context.Context, roomID int64, cookie string) (*models.Room, error) {
	if err := ValidateRoomID(roomID); err != nil {
		return nil, err
	}
	key := "room:" + strconv.FormatInt(roomID, 10)
	if room, ok := r.cache.Get(key); ok {
		return room, nil
	}

	res, err := r.http.getJSON(ctx, r.liveBase+"/room/v1/Room/get_info", url.Values{"room_id": {strconv.FormatInt(roomID, 10)}}, cookie)
	if err != nil {
		return nil, fmt.Errorf("room %d info: %w", roomID, err)
	}
	if err := checkCode(res); err != nil {
		return nil, fmt.Errorf("room %d info: %w", roomID, err)
	}

	room := &models.Room{
		RoomID:     res.Get("data.room_id").Int(),
		ShortID:    res.Get("data.short_id").Int(),
		UID:        res.Get("data.uid").Int(),
		Title:      res.Get("data.title").String(),
		LiveStatus: int(res.Get("data.live_status").Int()),
	}
	if room.RoomID == 0 {
		room.RoomID = r.mobileRoomID(ctx, roomID, cookie)
	}

	token, hosts := r.danmakuInfo(ctx, room.RoomID, cookie)
	room.Token = token
	room.Hosts = hosts

	r.cache.Set(key, room)
	return room, nil
}

// mobileRoomID asks the mobile init endpoint for the real id, falling back to roomID.
func (r *RoomResolver) mobileRoomID(ctx context.Context, roomID int64, cookie string) int64 {
	res, err := r.http.getJSON(ctx, r.liveBase+"/room/v1/Room/mobileRoomInit", url.Values{"id": {strconv.FormatInt(roomID, 10)}}, cookie)
	if err == nil && checkCode(res) == nil {
		if id := res.Get("data.room_id").Int(); id > 0 {
			return id
		}
	}
	return roomID
}

func (r *RoomResolver) danmakuInfo(ctx context.Context, realID int64, cookie string) (string, []models.DanmakuHost) {
	id := strconv.FormatInt(realID, 10)

	res, err := r.http.getJSON(ctx, r.liveBase+"/xlive/web-room/v1/index/getDanmuInfo", url.Values{"id": {id}, "type": {"0"}}, cookie)
	if err == nil && checkCode(res) == nil {
		if hosts := parseHosts(res.Get("data.host_list")); len(hosts) > 0 {
			return res.Get("data.token").String(), hosts
		}
	} else {
		slog.Debug("Danmaku info lookup failed, trying conf", "room_id", realID, "error", err)
	}

	res, err = r.http.getJSON(ctx, r.liveBase+"/room/v1/Danmu/getConf", url.Values{"room_id": {id}}, cookie)
	if err == nil && checkCode(res) == nil {
		hosts := parseHosts(res.Get("data.host_server_list"))
		if len(hosts) == 0 && res.Get("data.host").String() != "" {
			hosts = []models.DanmakuHost{{Host: res.Get("data.host").String(), Port: int(res.Get("data.port").Int())}}
		}
		if len(hosts) > 0 {
			return res.Get("data.token").String(), hosts
		}
	}

	slog.Warn("Using default danmaku hosts", "room_id", realID)
	return "", append([]models.DanmakuHost(nil), defaultDanmakuHosts...)
}

// parseHosts reads a host list, preferring the wss port
func parseHosts(list gjson.Result) []models.DanmakuHost {
	var hosts []models.DanmakuHost
	list.ForEach(func(_, h gjson.Result) bool {
		host := h.Get("host").String()
		if host == "" {
			return true
		}
		port := h.Get("wss_port").Int()
		if port == 0 {
			port = h.Get("port").Int()
		}
		hosts = append(hosts, models.DanmakuHost{Host: host, Port: int(port)})
		return true
	})
	return hosts
}
