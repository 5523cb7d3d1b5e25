package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pokerjest/tvboxfeed/internal/event"
	"github.com/pokerjest/tvboxfeed/internal/model"
	"github.com/pokerjest/tvboxfeed/internal/service"
)

func newWatchCommand(root *rootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:       "watch <boxoffice|tv>",
		Short:     "Keep printing a live source until interrupted",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"boxoffice", "tv"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, _, err := root.setup()
			if err != nil {
				return err
			}
			defer reg.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), reg, args[0], date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "box office date YYYY-MM-DD (default today)")
	return cmd
}

// runWatch prints every refresh result until ctx ends.
func runWatch(ctx context.Context, w io.Writer, reg *service.Registry, source, date string) error {
	events := make(chan event.Event, 4)
	forward := func(e event.Event) {
		select {
		case events <- e:
		default:
		}
	}

	var (
		topic   event.Topic
		release func()
		started bool
		show    func(any)
	)
	loc := reg.Location()
	switch source {
	case "boxoffice":
		if date == "" {
			date = reg.CMDB.Today()
		} else if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
		}
		topic = event.TopicBoxOffice
		id := reg.Bus.Subscribe(topic, func(e event.Event) {
			if _, ok := service.BoxOfficeFor(e, date); ok {
				forward(e)
			}
		})
		defer reg.Bus.Unsubscribe(topic, id)
		release, started = reg.WatchBoxOffice(date)
		show = func(v any) { renderDaily(w, v.(model.DailyBoxOffice), loc) }
		if !started {
			show(reg.CMDB.Daily(ctx, date))
			if !reg.CMDB.IsToday(date) {
				// 历史日期不会变化，打印一次即可
				release()
				return nil
			}
		}
	case "tv":
		topic = event.TopicTVRatings
		id := reg.Bus.Subscribe(topic, forward)
		defer reg.Bus.Unsubscribe(topic, id)
		show = func(v any) { renderChannels(w, v.([]model.ChannelRating)) }
		release, started = reg.WatchTVRatings()
		if !started {
			show(reg.HuanTV.Channels(ctx))
		}
	default:
		return fmt.Errorf("unknown live source %q", source)
	}
	defer release()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			fmt.Fprintf(w, "\n%s\n", time.Now().In(loc).Format("15:04:05"))
			show(e.Payload)
		}
	}
}
