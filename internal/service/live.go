package service

import (
	"context"

	"github.com/pokerjest/tvboxfeed/internal/event"
	"github.com/pokerjest/tvboxfeed/internal/model"
)

func noop() {}

// BoxOfficeKey names the refresh loop for one date.
func BoxOfficeKey(date string) string {
	return string(event.TopicBoxOffice) + ":" + date
}

// WatchBoxOffice keeps date's box office refreshing on the event bus while
// the caller holds it. Past dates never change, so they get no loop and
// started is false.
func (r *Registry) WatchBoxOffice(date string) (release func(), started bool) {
	if date == "" {
		date = r.CMDB.Today()
	}
	if !r.CMDB.IsToday(date) {
		return noop, false
	}
	return r.Scheduler.Acquire(BoxOfficeKey(date), r.refresh.BoxOffice, func(ctx context.Context) {
		daily := r.CMDB.Daily(ctx, date)
		if ctx.Err() != nil {
			return
		}
		r.Bus.Publish(event.TopicBoxOffice, daily)
	})
}

// WatchTVRatings keeps channel ratings refreshing on the event bus while the
// caller holds it.
func (r *Registry) WatchTVRatings() (release func(), started bool) {
	return r.Scheduler.Acquire(string(event.TopicTVRatings), r.refresh.TVRatings, func(ctx context.Context) {
		channels := r.HuanTV.Channels(ctx)
		if ctx.Err() != nil {
			return
		}
		r.Bus.Publish(event.TopicTVRatings, channels)
	})
}

// BoxOfficeFor reports whether an event payload belongs to date.
func BoxOfficeFor(e event.Event, date string) (model.DailyBoxOffice, bool) {
	d, ok := e.Payload.(model.DailyBoxOffice)
	return d, ok && d.Date == date
}
