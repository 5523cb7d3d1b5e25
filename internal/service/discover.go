package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pokerjest/tvboxfeed/internal/bilibili"
	"github.com/pokerjest/tvboxfeed/internal/model"
)

// Discover is the front page: one call per source, fetched in parallel.
type Discover struct {
	HotMovies  []model.Movie         `json:"hot_movies"`
	TopMovies  []model.Movie         `json:"top_movies"`
	AnimeRank  []model.Anime         `json:"anime_rank"`
	AnimeIndex []model.Anime         `json:"anime_index"`
	Timeline   []model.TimelineDay   `json:"timeline"`
	BoxOffice  model.DailyBoxOffice  `json:"box_office"`
	Channels   []model.ChannelRating `json:"channels"`
}

// Discover never fails: a source that is down leaves its section empty.
func (r *Registry) Discover(ctx context.Context) Discover {
	var d Discover
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { d.HotMovies = r.Douban.Hot(ctx); return nil })
	g.Go(func() error { d.TopMovies = r.Douban.Top(ctx, 0); return nil })
	g.Go(func() error { d.AnimeRank = r.Bilibili.Rank(ctx); return nil })
	g.Go(func() error { d.AnimeIndex = r.Bilibili.Index(ctx, bilibili.DefaultIndexQuery()); return nil })
	g.Go(func() error { d.Timeline = r.Bilibili.Timeline(ctx); return nil })
	g.Go(func() error { d.BoxOffice = r.CMDB.Daily(ctx, ""); return nil })
	g.Go(func() error { d.Channels = r.HuanTV.Channels(ctx); return nil })

	_ = g.Wait()
	return d
}
