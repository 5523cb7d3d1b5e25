package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerjest/tvboxfeed/internal/config"
	"github.com/pokerjest/tvboxfeed/internal/huantv"
	"github.com/pokerjest/tvboxfeed/internal/logging"
	"github.com/pokerjest/tvboxfeed/internal/model"
	"github.com/pokerjest/tvboxfeed/internal/service"
	"github.com/pokerjest/tvboxfeed/internal/upstreamtest"
)

func newTestRegistry(t *testing.T) *service.Registry {
	t.Helper()
	srv := upstreamtest.New(t).
		Handle("/rexxar/api/v2/subject/recent_hot/movie", http.StatusOK, `{"items":[{"id":"1","title":"霸王别姬","rating":{"value":9.6}}]}`).
		Handle("/pgc/web/rank/list", http.StatusOK, `{"result":{"list":[{"title":"葬送的芙莉莲","rating":"9.9"}]}}`).
		Handle("/pgc/web/timeline", http.StatusOK, `{"result":[{"date":"1-1","is_today":1,"episodes":[{"title":"E","pub_time":"22:00"}]},{"date":"1-2"}]}`).
		Handle("/getDayData", http.StatusOK, `{"list":[{"code":"001","name":"Movie","releaseDays":-3}],"nationalSales":{"updateTimestamp":"1735675200000"}}`).
		Handle("/getYearData", http.StatusOK, `{"rankList":[{"name":"长津湖"}]}`).
		Handle(huantv.ChannelsPath, http.StatusOK, `{"data":[{"channelName":"CCTV-1","onlineRate":"0.81"}]}`).
		Handle("/repos/o/r/releases", http.StatusOK, `[{"tag_name":"v1.0.1","body":"notes"}]`)

	cfg := &config.Config{
		HTTP:    config.HTTPConfig{Timeout: 5 * time.Second},
		Cache:   config.CacheConfig{Backend: "memory"},
		Refresh: config.RefreshConfig{BoxOffice: time.Hour, TVRatings: time.Hour},
		Sources: config.SourcesConfig{Douban: srv.URL, Bilibili: srv.URL, CMDB: srv.URL, HuanTV: srv.URL, GitHub: srv.URL},
		Update:  config.UpdateConfig{Source: "github", Repo: "o/r", Key: "tvbox-pjs-update", IV: "tvbox-pjs-update"},
	}
	reg, err := service.New(cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

func TestRunFetch_Tables(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		source string
		opts   fetchOptions
		want   string
	}{
		{"hot", fetchOptions{}, "霸王别姬"},
		{"rank", fetchOptions{}, "葬送的芙莉莲"},
		{"timeline", fetchOptions{}, "1-1 *"},
		{"day", fetchOptions{date: "2025-01-01"}, "-3"},
		{"year", fetchOptions{year: 1}, "all time"},
		{"tv", fetchOptions{}, "CCTV-1"},
		{"update", fetchOptions{version: "1.0.0"}, "1.0.1"},
		{"all", fetchOptions{}, "Douban hot"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			var buf bytes.Buffer
			opts := tt.opts
			require.NoError(t, runFetch(context.Background(), &buf, reg, tt.source, &opts))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestRunFetch_JSON(t *testing.T) {
	reg := newTestRegistry(t)
	var buf bytes.Buffer

	require.NoError(t, runFetch(context.Background(), &buf, reg, "day", &fetchOptions{date: "2025-01-01", asJSON: true}))

	var got model.DailyBoxOffice
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Entries, 1)
	assert.Equal(t, -3, *got.Entries[0].ReleaseDays)
}

func TestRunFetch_Errors(t *testing.T) {
	reg := newTestRegistry(t)
	var buf bytes.Buffer

	assert.Error(t, runFetch(context.Background(), &buf, reg, "day", &fetchOptions{date: "01/01/2025"}))
	assert.Error(t, runFetch(context.Background(), &buf, reg, "nope", &fetchOptions{}))
}

func TestRunWatch_TV(t *testing.T) {
	reg := newTestRegistry(t)
	var buf bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, runWatch(ctx, &buf, reg, "tv", ""))

	assert.Contains(t, buf.String(), "CCTV-1")
	assert.False(t, reg.Scheduler.Active("tv_ratings"))
}

func TestRunWatch_PastDatePrintsOnce(t *testing.T) {
	reg := newTestRegistry(t)
	var buf bytes.Buffer

	require.NoError(t, runWatch(context.Background(), &buf, reg, "boxoffice", "2020-01-01"))
	assert.Contains(t, buf.String(), "Movie")
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "tvbox version dev\n", buf.String())
}

func TestFetchCommand_RejectsUnknownSource(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"fetch", "bogus"})

	assert.Error(t, cmd.Execute())
}
