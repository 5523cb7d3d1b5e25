package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pokerjest/tvboxfeed/internal/bilibili"
	"github.com/pokerjest/tvboxfeed/internal/cmdb"
	"github.com/pokerjest/tvboxfeed/internal/service"
	"github.com/pokerjest/tvboxfeed/internal/update"
)

type fetchOptions struct {
	start   int
	order   int
	page    int
	sort    int
	date    string
	year    int
	version string
	asJSON  bool
}

var fetchSources = []string{"hot", "top", "index", "rank", "timeline", "day", "year", "tv", "update", "all"}

func newFetchCommand(root *rootOptions) *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:       "fetch <" + strings.Join(fetchSources, "|") + ">",
		Short:     "Fetch one source once and print it",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: fetchSources,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, _, err := root.setup()
			if err != nil {
				return err
			}
			defer reg.Close()
			return runFetch(cmd.Context(), cmd.OutOrStdout(), reg, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.start, "start", 0, "top 250 offset")
	f.IntVar(&opts.order, "order", 0, "anime index sort field")
	f.IntVar(&opts.page, "page", 1, "anime index page")
	f.IntVar(&opts.sort, "sort", 0, "anime index direction (0 desc, 1 asc)")
	f.StringVar(&opts.date, "date", "", "box office date YYYY-MM-DD (default today)")
	f.IntVar(&opts.year, "year", cmdb.AllYears, "box office year (1 = all time)")
	f.StringVar(&opts.version, "version", "", "local version to compare with the latest release")
	f.BoolVar(&opts.asJSON, "json", false, "print JSON instead of tables")
	return cmd
}

func runFetch(ctx context.Context, w io.Writer, reg *service.Registry, source string, o *fetchOptions) error {
	loc := reg.Location()
	out := func(v any, table func()) error {
		if o.asJSON {
			return renderJSON(w, v)
		}
		table()
		return nil
	}

	switch source {
	case "hot":
		v := reg.Douban.Hot(ctx)
		return out(v, func() { renderMovies(w, "Douban hot", v) })
	case "top":
		v := reg.Douban.Top(ctx, o.start)
		return out(v, func() { renderMovies(w, "Douban top 250", v) })
	case "index":
		v := reg.Bilibili.Index(ctx, bilibili.IndexQuery{Order: o.order, Page: o.page, Sort: o.sort})
		return out(v, func() { renderAnime(w, "Bilibili index", v) })
	case "rank":
		v := reg.Bilibili.Rank(ctx)
		return out(v, func() { renderAnime(w, "Bilibili rank", v) })
	case "timeline":
		v := reg.Bilibili.Timeline(ctx)
		return out(v, func() { renderTimeline(w, v) })
	case "day":
		if o.date != "" {
			if _, err := time.Parse("2006-01-02", o.date); err != nil {
				return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", o.date)
			}
		}
		v := reg.CMDB.Daily(ctx, o.date)
		return out(v, func() { renderDaily(w, v, loc) })
	case "year":
		v := reg.CMDB.Yearly(ctx, o.year)
		return out(v, func() { renderYearly(w, o.year, v) })
	case "tv":
		v := reg.HuanTV.Channels(ctx)
		return out(v, func() { renderChannels(w, v) })
	case "update":
		m := reg.Update.Latest(ctx, reg.Diagnostics)
		var available *bool
		if o.version != "" {
			a := update.IsAvailable(m, o.version)
			available = &a
		}
		return out(m, func() { renderManifest(w, m, available) })
	case "all":
		v := reg.Discover(ctx)
		return out(v, func() { renderDiscover(w, v, loc) })
	default:
		return fmt.Errorf("unknown source %q", source)
	}
}
