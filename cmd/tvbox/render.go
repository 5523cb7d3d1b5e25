package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pokerjest/tvboxfeed/internal/model"
	"github.com/pokerjest/tvboxfeed/internal/service"
)

func newTable(w io.Writer, title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(header)
	return t
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func renderMovies(w io.Writer, title string, movies []model.Movie) {
	t := newTable(w, title, table.Row{"#", "ID", "Title", "Rating", "Subtitle"})
	for i, m := range movies {
		t.AppendRow(table.Row{i + 1, m.ID, m.Title, m.Rating, m.Subtitle})
	}
	t.Render()
}

func renderAnime(w io.Writer, title string, list []model.Anime) {
	t := newTable(w, title, table.Row{"#", "Title", "Rating", "Progress", "Link"})
	for i, a := range list {
		t.AppendRow(table.Row{i + 1, a.Title, a.Rating, a.IndexShow, a.Link})
	}
	t.Render()
}

func renderTimeline(w io.Writer, days []model.TimelineDay) {
	t := newTable(w, "Broadcast timeline", table.Row{"Date", "Time", "Title", "Episode", "Published"})
	for _, d := range days {
		date := d.Date
		if d.IsToday {
			date += " *"
		}
		if len(d.Episodes) == 0 {
			t.AppendRow(table.Row{date, "", "", "", ""})
		}
		for _, ep := range d.Episodes {
			t.AppendRow(table.Row{date, ep.PubTime, ep.Title, ep.PubIndex, ep.Published})
		}
		t.AppendSeparator()
	}
	t.Render()
}

func releaseDays(d *int) string {
	if d == nil {
		return "-"
	}
	return strconv.Itoa(*d)
}

func renderDaily(w io.Writer, d model.DailyBoxOffice, loc *time.Location) {
	title := fmt.Sprintf("Box office %s  total %s%s  split %s%s",
		d.Date, d.Summary.SalesDesc, d.Summary.SalesUnit, d.Summary.SplitSalesDesc, d.Summary.SplitSalesUnit)
	t := newTable(w, title, table.Row{"#", "Name", "Sales (万)", "Share", "Sessions", "Seats", "Total", "Days"})
	for i, e := range d.Entries {
		t.AppendRow(table.Row{i + 1, e.Name, e.SalesInWanDesc, e.SalesRateDesc, e.SessionRateDesc, e.SeatRateDesc, e.SumSalesDesc, releaseDays(e.ReleaseDays)})
	}
	if d.Summary.UpdateTimestamp != "" {
		t.AppendFooter(table.Row{"", "updated", d.Summary.UpdatedAt(loc)})
	}
	t.Render()
}

func renderYearly(w io.Writer, year int, list []model.YearlyBoxOfficeEntry) {
	title := fmt.Sprintf("Box office %d", year)
	if year == 1 {
		title = "Box office all time"
	}
	t := newTable(w, title, table.Row{"#", "Name", "Premiere", "Sales (万)", "Avg price", "Avg audience"})
	for i, e := range list {
		t.AppendRow(table.Row{i + 1, e.Name, e.PremiereDate, e.SalesInWan, e.AvgPrice, e.AvgSalesCount})
	}
	t.Render()
}

func renderChannels(w io.Writer, list []model.ChannelRating) {
	t := newTable(w, "Live TV ratings", table.Row{"#", "Channel", "Program", "Rating", "Share"})
	for i, c := range list {
		t.AppendRow(table.Row{i + 1, c.ChannelName, c.ProgramName, c.OnlineRate, c.MarketShare})
	}
	t.Render()
}

func renderManifest(w io.Writer, m *model.UpdateManifest, available *bool) {
	if m == nil {
		fmt.Fprintln(w, "no update manifest available")
		return
	}
	t := newTable(w, "Latest release", table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Version", m.VersionName},
		{"Name", m.VersionCode},
		{"Asset", m.AssetName},
		{"Size", m.AssetSize},
		{"Download", m.DownloadURL},
	})
	if available != nil {
		t.AppendRow(table.Row{"Newer", *available})
	}
	t.Render()
	if m.ChangeLog != "" {
		fmt.Fprintln(w, m.ChangeLog)
	}
}

func renderDiscover(w io.Writer, d service.Discover, loc *time.Location) {
	renderMovies(w, "Douban hot", d.HotMovies)
	renderMovies(w, "Douban top 250", d.TopMovies)
	renderAnime(w, "Bilibili rank", d.AnimeRank)
	renderAnime(w, "Bilibili index", d.AnimeIndex)
	renderTimeline(w, d.Timeline)
	renderDaily(w, d.BoxOffice, loc)
	renderChannels(w, d.Channels)
}
