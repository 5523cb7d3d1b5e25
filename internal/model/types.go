// Package model holds the records produced by the upstream fetchers.
//
// Records are plain values rebuilt on every fetch. Fields an upstream omits
// stay empty; display strings such as "12.3万" are kept exactly as sent.
package model

import (
	"time"

	"github.com/pokerjest/tvboxfeed/internal/normalize"
)

// Movie 豆瓣榜单条目
type Movie struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Cover      string `json:"cover"`
	CoverLarge string `json:"cover_large"`
	Rating     string `json:"rating"`
}

// Anime 番剧索引或排行条目，两种上游结构合并为同一记录
type Anime struct {
	Cover     string `json:"cover"`
	EpCover   string `json:"ep_cover"`
	IndexShow string `json:"index_show"`
	Link      string `json:"link"`
	Rating    string `json:"rating"`
	Title     string `json:"title"`
}

// TimelineDay is one day of the broadcast schedule; Episodes keep upstream order.
type TimelineDay struct {
	Date      string            `json:"date"`
	DayOfWeek int               `json:"day_of_week"`
	IsToday   bool              `json:"is_today"`
	Episodes  []TimelineEpisode `json:"episodes"`
}

type TimelineEpisode struct {
	SeasonID    string `json:"season_id"`
	EpisodeID   string `json:"episode_id"`
	Cover       string `json:"cover"`
	EpCover     string `json:"ep_cover"`
	SquareCover string `json:"square_cover"`
	PubIndex    string `json:"pub_index"`
	PubTime     string `json:"pub_time"`
	Published   bool   `json:"published"`
	Title       string `json:"title"`
}

// BoxOfficeEntry 单日票房。ReleaseDays 为负表示尚未上映，缺失时为 nil
type BoxOfficeEntry struct {
	Code                     string `json:"code"`
	Name                     string `json:"name"`
	OnlineSalesRateDesc      string `json:"online_sales_rate_desc"`
	ReleaseDays              *int   `json:"release_days"`
	ReleaseDesc              string `json:"release_desc"`
	SalesInWanDesc           string `json:"sales_in_wan_desc"`
	SalesRateDesc            string `json:"sales_rate_desc"`
	SeatRateDesc             string `json:"seat_rate_desc"`
	SessionRateDesc          string `json:"session_rate_desc"`
	SplitOnlineSalesRateDesc string `json:"split_online_sales_rate_desc"`
	SplitSalesInWanDesc      string `json:"split_sales_in_wan_desc"`
	SplitSalesRateDesc       string `json:"split_sales_rate_desc"`
	SumSalesDesc             string `json:"sum_sales_desc"`
	SumSplitSalesDesc        string `json:"sum_split_sales_desc"`
}

// DefaultSalesUnit is reported when the upstream omits a unit.
const DefaultSalesUnit = "万"

// NationalSales 全国大盘
type NationalSales struct {
	SalesDesc       string `json:"sales_desc"`
	SalesUnit       string `json:"sales_unit"`
	SplitSalesDesc  string `json:"split_sales_desc"`
	SplitSalesUnit  string `json:"split_sales_unit"`
	UpdateTimestamp string `json:"update_timestamp"`
}

// EmptyNationalSales is the summary returned when nothing could be fetched.
func EmptyNationalSales() NationalSales {
	return NationalSales{SalesUnit: DefaultSalesUnit, SplitSalesUnit: DefaultSalesUnit}
}

// UpdatedAt renders UpdateTimestamp (epoch millis) in loc.
func (n NationalSales) UpdatedAt(loc *time.Location) string {
	return normalize.FormatMillis(n.UpdateTimestamp, loc)
}

type DailyBoxOffice struct {
	Date    string           `json:"date"`
	Entries []BoxOfficeEntry `json:"entries"`
	Summary NationalSales    `json:"summary"`
}

type YearlyBoxOfficeEntry struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	PremiereDate  string `json:"premiere_date"`
	SalesInWan    string `json:"sales_in_wan"`
	AvgPrice      string `json:"avg_price"`
	AvgSalesCount string `json:"avg_sales_count"`
}

// ChannelRating 电视频道实时收视
type ChannelRating struct {
	Key         string `json:"key"`
	ChannelName string `json:"channel_name"`
	ChannelLogo string `json:"channel_logo"`
	OnlineRate  string `json:"online_rate"`
	ProgramName string `json:"program_name"`
	MarketShare string `json:"market_share"`
	ChannelCode string `json:"channel_code"`
}

type UpdateManifest struct {
	VersionName string `json:"version_name"`
	VersionCode string `json:"version_code"`
	AssetName   string `json:"asset_name"`
	AssetSize   int64  `json:"asset_size"`
	DownloadURL string `json:"download_url"`
	ChangeLog   string `json:"change_log"`
}
