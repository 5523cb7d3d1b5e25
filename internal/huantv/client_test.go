package huantv

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerjest/tvboxfeed/internal/config"
	"github.com/pokerjest/tvboxfeed/internal/httpx"
	"github.com/pokerjest/tvboxfeed/internal/model"
	"github.com/pokerjest/tvboxfeed/internal/upstreamtest"
)

func TestChannels(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"data.list", `{"code":0,"data":{"list":[{"key":"1","channelName":"CCTV-1","channelLogo":"http://logo/1.png","onlineRate":"0.8123","programName":"新闻联播","marketShare":"5.12","channelCode":"cctv1"},"x"]}}`},
		{"data array", `{"data":[{"key":1,"channelName":"CCTV-1","channelLogo":"http://logo/1.png","onlineRate":0.8123,"programName":"新闻联播","marketShare":5.12,"channelCode":"cctv1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := upstreamtest.New(t).Handle(ChannelsPath, http.StatusOK, tt.body)

			list := NewClient(httpx.NewClient(httpx.Options{}), srv.URL, nil).Channels(context.Background())

			require.Len(t, list, 1)
			assert.Equal(t, model.ChannelRating{
				Key:         "1",
				ChannelName: "CCTV-1",
				ChannelLogo: "https://logo/1.png",
				OnlineRate:  "0.8123",
				ProgramName: "新闻联播",
				MarketShare: "5.12",
				ChannelCode: "cctv1",
			}, list[0])

			last, _ := srv.Last()
			assert.Equal(t, Referer, last.Header.Get("Referer"))
			assert.Equal(t, config.UserAgentDesktop, last.Header.Get("User-Agent"))
		})
	}
}

func TestChannels_Failures(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		srv := upstreamtest.New(t).Handle(ChannelsPath, status, `{"data":[]}`)
		list := NewClient(httpx.NewClient(httpx.Options{}), srv.URL, nil).Channels(context.Background())
		assert.NotNil(t, list)
		assert.Empty(t, list)
	}

	srv := upstreamtest.New(t).Handle(ChannelsPath, http.StatusOK, `{"data":{"total":0}}`)
	assert.Empty(t, NewClient(httpx.NewClient(httpx.Options{}), srv.URL, nil).Channels(context.Background()))

	dead := NewClient(httpx.NewClient(httpx.Options{}), upstreamtest.DeadURL(t), nil)
	assert.Empty(t, dead.Channels(context.Background()))
}
