package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pokerjest/tvboxfeed/internal/event"
	"github.com/pokerjest/tvboxfeed/internal/service"
)

// streamEvents pushes bus events accepted by filter to the client until it
// disconnects. watch is called after subscribing so the loop's first result
// is not missed; when it joins a loop that is already running, initial is
// sent instead.
func (s *Server) streamEvents(c *gin.Context, topic event.Topic, filter func(event.Event) bool,
	watch func() (func(), bool), initial func() any) {

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan any, 10)

	bridgeHandler := func(e event.Event) {
		if filter != nil && !filter(e) {
			return
		}
		// 非阻塞发送，避免慢客户端阻塞刷新循环
		select {
		case clientChan <- e.Payload:
		default:
			s.log.WithField("topic", topic).Debug("sse client lagging, dropping event")
		}
	}
	subID := s.reg.Bus.Subscribe(topic, bridgeHandler)
	release, started := watch()
	defer func() {
		release()
		s.reg.Bus.Unsubscribe(topic, subID)
		s.log.WithField("topic", topic).Debug("sse client disconnected")
	}()

	c.SSEvent("message", "connected")
	c.Writer.Flush()

	if !started {
		s.send(c, topic, initial())
	}

	ctx := c.Request.Context()
	for {
		select {
		case payload := <-clientChan:
			s.send(c, topic, payload)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) send(c *gin.Context, topic event.Topic, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.WithError(err).Warn("sse marshal failed")
		return
	}
	// 事件名即为 Topic
	c.SSEvent(string(topic), string(data))
	c.Writer.Flush()
}

// LiveBoxOfficeHandler streams box office updates for ?date= (default today).
func (s *Server) LiveBoxOfficeHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = s.reg.CMDB.Today()
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	s.streamEvents(c, event.TopicBoxOffice,
		func(e event.Event) bool {
			_, ok := service.BoxOfficeFor(e, date)
			return ok
		},
		func() (func(), bool) { return s.reg.WatchBoxOffice(date) },
		func() any { return s.reg.CMDB.Daily(c.Request.Context(), date) },
	)
}

// LiveTVHandler streams channel rating updates.
func (s *Server) LiveTVHandler(c *gin.Context) {
	s.streamEvents(c, event.TopicTVRatings, nil,
		s.reg.WatchTVRatings,
		func() any { return s.reg.HuanTV.Channels(c.Request.Context()) },
	)
}
