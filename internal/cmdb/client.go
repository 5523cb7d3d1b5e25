// Package cmdb fetches box office figures from the national film data platform.
package cmdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pokerjest/tvboxfeed/internal/cache"
	"github.com/pokerjest/tvboxfeed/internal/httpx"
	"github.com/pokerjest/tvboxfeed/internal/jsonx"
	"github.com/pokerjest/tvboxfeed/internal/model"
	"github.com/pokerjest/tvboxfeed/internal/normalize"
)

const (
	DefaultBaseURL = "https://zgdypf.zgdypw.cn"
	Referer        = "https://zgdypf.zgdypw.cn/movie"

	// AllYears asks the yearly ranking for the all-time list.
	AllYears = 1
)

type Client struct {
	http    *httpx.Client
	baseURL string
	loc     *time.Location
	yearly  *cache.Typed[[]model.YearlyBoxOfficeEntry]
	log     log.FieldLogger
}

func NewClient(hc *httpx.Client, baseURL string, loc *time.Location, store cache.Store, m *cache.Metrics, logger log.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		loc:     loc,
		yearly:  cache.NewTyped[[]model.YearlyBoxOfficeEntry](store, "cmdb_year", m, logger),
		log:     logger.WithField("source", "cmdb"),
	}
}

// Today is the current date in the client's time zone.
func (c *Client) Today() string {
	return normalize.Today(c.loc)
}

// IsToday reports whether date names the current day, the only day whose
// figures still change.
func (c *Client) IsToday(date string) bool {
	return date == "" || date == c.Today()
}

// Daily returns the box office list for date (YYYY-MM-DD, empty for today)
// with the national summary. It is live data and never cached.
func (c *Client) Daily(ctx context.Context, date string) model.DailyBoxOffice {
	if date == "" {
		date = c.Today()
	}
	out := model.DailyBoxOffice{
		Date:    date,
		Entries: []model.BoxOfficeEntry{},
		Summary: model.EmptyNationalSales(),
	}

	u := fmt.Sprintf("%s/getDayData?date=%s", c.baseURL, url.QueryEscape(date))
	root, ok := c.http.FetchJSON(ctx, httpx.Get(u, Referer))
	if !ok {
		return out
	}
	out.Entries = jsonx.MapObjects(root.Get("list"), toEntry)
	out.Summary = toNationalSales(root.Get("nationalSales"))
	return out
}

func toEntry(obj jsonx.Node) (model.BoxOfficeEntry, bool) {
	s := func(key string) string { return obj.Get(key).Str("") }
	return model.BoxOfficeEntry{
		Code:                     s("code"),
		Name:                     s("name"),
		OnlineSalesRateDesc:      s("onlineSalesRateDesc"),
		ReleaseDays:              obj.Get("releaseDays").IntPtr(),
		ReleaseDesc:              s("releaseDesc"),
		SalesInWanDesc:           s("salesInWanDesc"),
		SalesRateDesc:            s("salesRateDesc"),
		SeatRateDesc:             s("seatRateDesc"),
		SessionRateDesc:          s("sessionRateDesc"),
		SplitOnlineSalesRateDesc: s("splitOnlineSalesRateDesc"),
		SplitSalesInWanDesc:      s("splitSalesInWanDesc"),
		SplitSalesRateDesc:       s("splitSalesRateDesc"),
		SumSalesDesc:             s("sumSalesDesc"),
		SumSplitSalesDesc:        s("sumSplitSalesDesc"),
	}, true
}

func toNationalSales(obj jsonx.Node) model.NationalSales {
	return model.NationalSales{
		SalesDesc:       obj.Path("salesDesc", "value").Str(""),
		SalesUnit:       obj.Path("salesDesc", "unit").Str(model.DefaultSalesUnit),
		SplitSalesDesc:  obj.Path("splitSalesDesc", "value").Str(""),
		SplitSalesUnit:  obj.Path("splitSalesDesc", "unit").Str(model.DefaultSalesUnit),
		UpdateTimestamp: obj.Get("updateTimestamp").Str(""),
	}
}

// Yearly returns the ranking for year, or the all-time ranking for AllYears.
func (c *Client) Yearly(ctx context.Context, year int) []model.YearlyBoxOfficeEntry {
	if list, ok := c.yearly.Get(ctx, cache.Key(year)); ok {
		return list
	}
	return c.RefreshYearly(ctx, year)
}

// RefreshYearly bypasses the cache and stores a non-empty result.
func (c *Client) RefreshYearly(ctx context.Context, year int) []model.YearlyBoxOfficeEntry {
	u := fmt.Sprintf("%s/getYearData?year=%d", c.baseURL, year)
	root, ok := c.http.FetchJSON(ctx, httpx.Get(u, Referer))
	if !ok {
		return []model.YearlyBoxOfficeEntry{}
	}
	list := jsonx.MapObjects(root.Get("rankList"), toYearly)
	if len(list) > 0 {
		c.yearly.Set(ctx, cache.Key(year), list)
	}
	return list
}

func toYearly(obj jsonx.Node) (model.YearlyBoxOfficeEntry, bool) {
	s := func(key string) string { return obj.Get(key).Str("") }
	return model.YearlyBoxOfficeEntry{
		Code:          s("movieCode"),
		Name:          s("name"),
		PremiereDate:  s("premiereDate"),
		SalesInWan:    s("salesInWan"),
		AvgPrice:      s("avgPrice"),
		AvgSalesCount: s("avgSalesCount"),
	}, true
}
