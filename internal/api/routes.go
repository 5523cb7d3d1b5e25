package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/pokerjest/tvboxfeed/internal/service"
)

// Server exposes every fetch operation over HTTP.
type Server struct {
	reg *service.Registry
	log log.FieldLogger
}

func NewServer(reg *service.Registry, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Server{reg: reg, log: logger.WithField("component", "api")}
}

func (s *Server) InitRoutes(r *gin.Engine) {
	r.Use(RequestLogger(s.log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.reg.Metrics, promhttp.HandlerOpts{})))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/douban/hot", s.DoubanHotHandler)
		apiGroup.GET("/douban/top", s.DoubanTopHandler)

		apiGroup.GET("/bilibili/index", s.BiliIndexHandler)
		apiGroup.GET("/bilibili/rank", s.BiliRankHandler)
		apiGroup.GET("/bilibili/timeline", s.BiliTimelineHandler)

		apiGroup.GET("/cmdb/day", s.BoxOfficeDayHandler)
		apiGroup.GET("/cmdb/year", s.BoxOfficeYearHandler)

		apiGroup.GET("/huantv/channels", s.ChannelsHandler)
		apiGroup.GET("/update", s.UpdateHandler)
		apiGroup.GET("/discover", s.DiscoverHandler)

		// Server-Sent Events，连接存活期间保持刷新
		apiGroup.GET("/live/boxoffice", s.LiveBoxOfficeHandler)
		apiGroup.GET("/live/tv", s.LiveTVHandler)
	}
}

// NewRouter builds a gin engine with recovery and all routes.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	s.InitRoutes(r)
	return r
}
