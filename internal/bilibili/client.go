// Package bilibili fetches anime listings from the Bilibili PGC API.
package bilibili

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/pokerjest/tvboxfeed/internal/cache"
	"github.com/pokerjest/tvboxfeed/internal/httpx"
	"github.com/pokerjest/tvboxfeed/internal/jsonx"
	"github.com/pokerjest/tvboxfeed/internal/model"
	"github.com/pokerjest/tvboxfeed/internal/normalize"
)

const (
	DefaultBaseURL = "https://api.bilibili.com"
	Referer        = "https://www.bilibili.com/"
)

type Client struct {
	http    *httpx.Client
	baseURL string
	index   *cache.Typed[[]model.Anime]
	log     log.FieldLogger
}

func NewClient(hc *httpx.Client, baseURL string, store cache.Store, m *cache.Metrics, logger log.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		index:   cache.NewTyped[[]model.Anime](store, "bili_index", m, logger),
		log:     logger.WithField("source", "bilibili"),
	}
}

// Rank returns the three-day anime ranking.
func (c *Client) Rank(ctx context.Context) []model.Anime {
	u := c.baseURL + "/pgc/web/rank/list?day=3&season_type=1"
	root, ok := c.http.FetchJSON(ctx, httpx.Get(u, Referer))
	if !ok {
		return []model.Anime{}
	}
	return jsonx.MapObjects(root.Path("result", "list"), toRankAnime)
}

func toRankAnime(obj jsonx.Node) (model.Anime, bool) {
	return model.Anime{
		Cover:     normalize.Secure(obj.Get("cover").Str("")),
		EpCover:   normalize.Secure(obj.Get("ss_horizontal_cover").Str("")),
		IndexShow: obj.Path("new_ep", "index_show").Str(""),
		Link:      normalize.Secure(obj.Get("url").Str("")),
		Rating:    obj.Get("rating").Str(""),
		Title:     obj.Get("title").Str(""),
	}, true
}

// Timeline returns the broadcast schedule for the surrounding week in upstream order.
func (c *Client) Timeline(ctx context.Context) []model.TimelineDay {
	u := c.baseURL + "/pgc/web/timeline?types=1"
	root, ok := c.http.FetchJSON(ctx, httpx.Get(u, Referer))
	if !ok {
		return []model.TimelineDay{}
	}
	return jsonx.MapObjects(root.Get("result"), toTimelineDay)
}

func toTimelineDay(obj jsonx.Node) (model.TimelineDay, bool) {
	return model.TimelineDay{
		Date:      obj.Get("date").Str(""),
		DayOfWeek: obj.Get("day_of_week").IntOr(0),
		IsToday:   obj.Get("is_today").Bool(),
		Episodes:  jsonx.MapObjects(obj.Get("episodes"), toTimelineEpisode),
	}, true
}

func toTimelineEpisode(obj jsonx.Node) (model.TimelineEpisode, bool) {
	return model.TimelineEpisode{
		SeasonID:    obj.Get("season_id").Str(""),
		EpisodeID:   obj.Get("episode_id").Str(""),
		Cover:       normalize.Secure(obj.Get("cover").Str("")),
		EpCover:     normalize.Secure(obj.Get("ep_cover").Str("")),
		SquareCover: normalize.Secure(obj.Get("square_cover").Str("")),
		PubIndex:    obj.Get("pub_index").Str(""),
		PubTime:     obj.Get("pub_time").Str(""),
		Published:   obj.Get("published").Bool(),
		Title:       obj.Get("title").Str(""),
	}, true
}

// IndexQuery selects one page of the seasonal index.
type IndexQuery struct {
	Order int // 排序字段
	Page  int // 从 1 开始
	Sort  int // 0 降序, 1 升序
}

func DefaultIndexQuery() IndexQuery {
	return IndexQuery{Order: 0, Page: 1, Sort: 0}
}

func (q IndexQuery) normalized() IndexQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

func (q IndexQuery) cacheKey() string {
	return cache.Key(q.Order, q.Page, q.Sort)
}

// Index returns one page of the seasonal anime index, cached per query.
func (c *Client) Index(ctx context.Context, q IndexQuery) []model.Anime {
	q = q.normalized()
	if list, ok := c.index.Get(ctx, q.cacheKey()); ok {
		return list
	}
	return c.RefreshIndex(ctx, q)
}

// RefreshIndex bypasses the cache and stores a non-empty result.
func (c *Client) RefreshIndex(ctx context.Context, q IndexQuery) []model.Anime {
	q = q.normalized()
	u := fmt.Sprintf("%s/pgc/season/index/result?st=1&order=%d&season_version=-1&spoken_language_type=-1&area=-1&is_finish=-1&copyright=-1&season_status=-1&season_month=-1&year=-1&style_id=-1&sort=%d&page=%d&season_type=1&pagesize=30&type=1",
		c.baseURL, q.Order, q.Sort, q.Page)
	root, ok := c.http.FetchJSON(ctx, httpx.Get(u, Referer))
	if !ok {
		return []model.Anime{}
	}

	// 旧接口把列表放在 result.list
	list := root.Path("data", "list")
	if !list.IsArray() {
		list = root.Path("result", "list")
	}
	anime := jsonx.MapObjects(list, toIndexAnime)
	if len(anime) > 0 {
		c.index.Set(ctx, q.cacheKey(), anime)
	}
	return anime
}

func toIndexAnime(obj jsonx.Node) (model.Anime, bool) {
	rating, ok := obj.Get("score").Text()
	if !ok {
		rating = obj.Get("rating").Str("")
	}
	return model.Anime{
		Cover:     normalize.Secure(obj.Get("cover").Str("")),
		EpCover:   normalize.Secure(obj.Path("first_ep", "cover").Str("")),
		IndexShow: obj.Get("index_show").Str(""),
		Link:      normalize.Secure(obj.Get("link").Str("")),
		Rating:    rating,
		Title:     obj.Get("title").Str(""),
	}, true
}
