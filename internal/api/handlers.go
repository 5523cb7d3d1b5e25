package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pokerjest/tvboxfeed/internal/bilibili"
	"github.com/pokerjest/tvboxfeed/internal/cmdb"
	"github.com/pokerjest/tvboxfeed/internal/update"
)

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// wantsRefresh is ?refresh=1 (or true) on a cached endpoint.
func wantsRefresh(c *gin.Context) bool {
	b, _ := strconv.ParseBool(c.Query("refresh"))
	return b
}

// === Douban ===

func (s *Server) DoubanHotHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.reg.Douban.Hot(c.Request.Context()))
}

func (s *Server) DoubanTopHandler(c *gin.Context) {
	start := queryInt(c, "start", 0)
	if wantsRefresh(c) {
		c.JSON(http.StatusOK, s.reg.Douban.RefreshTop(c.Request.Context(), start))
		return
	}
	c.JSON(http.StatusOK, s.reg.Douban.Top(c.Request.Context(), start))
}

// === Bilibili ===

func (s *Server) BiliIndexHandler(c *gin.Context) {
	def := bilibili.DefaultIndexQuery()
	q := bilibili.IndexQuery{
		Order: queryInt(c, "order", def.Order),
		Page:  queryInt(c, "page", def.Page),
		Sort:  queryInt(c, "sort", def.Sort),
	}
	if wantsRefresh(c) {
		c.JSON(http.StatusOK, s.reg.Bilibili.RefreshIndex(c.Request.Context(), q))
		return
	}
	c.JSON(http.StatusOK, s.reg.Bilibili.Index(c.Request.Context(), q))
}

func (s *Server) BiliRankHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.reg.Bilibili.Rank(c.Request.Context()))
}

func (s *Server) BiliTimelineHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.reg.Bilibili.Timeline(c.Request.Context()))
}

// === Box office ===

func (s *Server) BoxOfficeDayHandler(c *gin.Context) {
	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}
	c.JSON(http.StatusOK, s.reg.CMDB.Daily(c.Request.Context(), date))
}

func (s *Server) BoxOfficeYearHandler(c *gin.Context) {
	year := queryInt(c, "year", cmdb.AllYears)
	if wantsRefresh(c) {
		c.JSON(http.StatusOK, s.reg.CMDB.RefreshYearly(c.Request.Context(), year))
		return
	}
	c.JSON(http.StatusOK, s.reg.CMDB.Yearly(c.Request.Context(), year))
}

// === TV / update / discover ===

func (s *Server) ChannelsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.reg.HuanTV.Channels(c.Request.Context()))
}

func (s *Server) UpdateHandler(c *gin.Context) {
	m := s.reg.Update.Latest(c.Request.Context(), s.reg.Diagnostics)
	if m == nil {
		c.JSON(http.StatusOK, gin.H{"available": false, "manifest": nil})
		return
	}
	resp := gin.H{"manifest": m}
	if v := c.Query("version"); v != "" {
		resp["available"] = update.IsAvailable(m, v)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) DiscoverHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.reg.Discover(c.Request.Context()))
}
