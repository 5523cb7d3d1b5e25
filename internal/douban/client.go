// Package douban fetches movie rankings from the Douban mobile API.
package douban

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
	DefaultBaseURL = "https://m.douban.com"
	Referer        = "https://movie.douban.com/"
	PageSize       = 30
)

type Client struct {
	http    *httpx.Client
	baseURL string
	top     *cache.Typed[[]model.Movie]
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
		top:     cache.NewTyped[[]model.Movie](store, "douban_top", m, logger),
		log:     logger.WithField("source", "douban"),
	}
}

// Hot returns the recent hot movie list. Entries without id or title are dropped.
func (c *Client) Hot(ctx context.Context) []model.Movie {
	u := c.baseURL + "/rexxar/api/v2/subject/recent_hot/movie?start=0&limit=30"
	root, ok := c.http.FetchJSON(ctx, httpx.Get(u, Referer))
	if !ok {
		return []model.Movie{}
	}
	return jsonx.MapObjects(root.Get("items"), toMovie)
}

// Top returns one page of the Top 250, starting at offset start.
func (c *Client) Top(ctx context.Context, start int) []model.Movie {
	if start < 0 {
		start = 0
	}
	key := cache.Key(start)
	if movies, ok := c.top.Get(ctx, key); ok {
		return movies
	}
	return c.RefreshTop(ctx, start)
}

// RefreshTop bypasses the cache and stores a non-empty result.
func (c *Client) RefreshTop(ctx context.Context, start int) []model.Movie {
	if start < 0 {
		start = 0
	}
	u := fmt.Sprintf("%s/rexxar/api/v2/subject_collection/movie_top250/items?start=%d&count=%d", c.baseURL, start, PageSize)
	root, ok := c.http.FetchJSON(ctx, httpx.Get(u, Referer))
	if !ok {
		return []model.Movie{}
	}
	movies := jsonx.MapObjects(root.Get("subject_collection_items"), toMovie)
	if len(movies) > 0 {
		c.top.Set(ctx, cache.Key(start), movies)
	}
	return movies
}

func toMovie(obj jsonx.Node) (model.Movie, bool) {
	req, ok := jsonx.Required(obj, "id", "title")
	if !ok {
		return model.Movie{}, false
	}
	pic := obj.Get("pic")
	return model.Movie{
		ID:         req[0],
		Title:      req[1],
		Subtitle:   obj.Get("card_subtitle").Str(""),
		Cover:      normalize.Secure(pic.Get("normal").Str("")),
		CoverLarge: normalize.Secure(pic.Get("large").Str("")),
		Rating:     obj.Path("rating", "value").Str(""),
	}, true
}
