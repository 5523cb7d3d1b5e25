// Package huantv fetches live TV channel ratings from Huan big data.
package huantv

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/pokerjest/tvboxfeed/internal/config"
	"github.com/pokerjest/tvboxfeed/internal/httpx"
	"github.com/pokerjest/tvboxfeed/internal/jsonx"
	"github.com/pokerjest/tvboxfeed/internal/model"
	"github.com/pokerjest/tvboxfeed/internal/normalize"
)

const (
	DefaultBaseURL = "https://tv-zone-api.huan.tv"
	ChannelsPath   = "/api/realtime/live/channel/rank"
	Referer        = "https://bigdata.huan.tv/"
)

type Client struct {
	http    *httpx.Client
	baseURL string
	log     log.FieldLogger
}

func NewClient(hc *httpx.Client, baseURL string, logger log.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.WithField("source", "huantv"),
	}
}

// Channels returns the current channel ratings. Live data, never cached.
func (c *Client) Channels(ctx context.Context) []model.ChannelRating {
	req := httpx.Get(c.baseURL+ChannelsPath, Referer)
	// 大数据平台只认桌面浏览器
	req.UserAgent = config.UserAgentDesktop
	root, ok := c.http.FetchJSON(ctx, req)
	if !ok {
		return []model.ChannelRating{}
	}

	list := root.Path("data", "list")
	if !list.IsArray() {
		list = root.Get("data")
	}
	return jsonx.MapObjects(list, toChannel)
}

func toChannel(obj jsonx.Node) (model.ChannelRating, bool) {
	s := func(key string) string { return obj.Get(key).Str("") }
	return model.ChannelRating{
		Key:         s("key"),
		ChannelName: s("channelName"),
		ChannelLogo: normalize.Secure(s("channelLogo")),
		OnlineRate:  s("onlineRate"),
		ProgramName: s("programName"),
		MarketShare: s("marketShare"),
		ChannelCode: s("channelCode"),
	}, true
}
