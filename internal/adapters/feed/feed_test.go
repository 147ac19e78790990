package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	feed "github.com/marquee-live/marquee/internal/adapters/feed"
	"github.com/marquee-live/marquee/internal/domain/model"
	"github.com/marquee-live/marquee/internal/domain/normalize"
	logging "github.com/marquee-live/marquee/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type memCatalog struct {
	mu       sync.Mutex
	entities map[string]model.Entity
}

func newMemCatalog() *memCatalog {
	return &memCatalog{entities: make(map[string]model.Entity)}
}

func (m *memCatalog) Upsert(ctx context.Context, e model.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[e.Key()] = e
	return nil
}

func (m *memCatalog) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entities)
}

func upstream(body string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestClientFetch(t *testing.T) {
	Convey("Given an upstream entity feed", t, func() {
		ctx := context.Background()

		Convey("When the feed is a JSON array", func() {
			ts := upstream(`[
				{"id":"1","type":"show","is_recurring":true,"recurrence_type":"daily","scheduled_time":"18:30"},
				{"id":"2","type":"event","scheduled_time":"2024-06-05T19:00:00Z"}
			]`, http.StatusOK)
			defer ts.Close()

			records, err := feed.NewClient(ts.URL).Fetch(ctx)

			Convey("Then every record is decoded", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)
				So(records[0].ID, ShouldEqual, "1")
				So(records[1].Scheduled, ShouldEqual, "2024-06-05T19:00:00Z")
			})
		})

		Convey("When the feed wraps records in an envelope", func() {
			ts := upstream(`{"entities":[{"id":"1","type":"show","scheduled_time":"2024-06-05T19:00:00Z"}]}`, http.StatusOK)
			defer ts.Close()

			records, err := feed.NewClient(ts.URL).Fetch(ctx)

			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 1)
		})

		Convey("When the upstream returns an error status", func() {
			ts := upstream(`oops`, http.StatusBadGateway)
			defer ts.Close()

			_, err := feed.NewClient(ts.URL).Fetch(ctx)

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "502")
		})

		Convey("When the payload is not an entity feed", func() {
			ts := upstream(`"just a string"`, http.StatusOK)
			defer ts.Close()

			_, err := feed.NewClient(ts.URL).Fetch(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("When the upstream is unreachable", func() {
			_, err := feed.NewClient("http://127.0.0.1:1").Fetch(ctx)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRefreshNow(t *testing.T) {
	Convey("Given a refresher over a mixed-quality feed", t, func() {
		_ = logging.Init()
		ctx := context.Background()

		ts := upstream(`[
			{"id":"good-1","type":"show","is_recurring":true,"recurrence_type":"daily","scheduled_time":"18:30"},
			{"id":"","type":"show","scheduled_time":"2024-06-05T19:00:00Z"},
			{"id":"good-2","type":"event","scheduled_time":"2024-06-05T19:00:00Z"},
			{"id":"bad","type":"movie","scheduled_time":"2024-06-05T19:00:00Z"}
		]`, http.StatusOK)
		defer ts.Close()

		catalog := newMemCatalog()
		r := feed.NewRefresher(feed.NewClient(ts.URL), normalize.New(), catalog, "*/15 * * * *")

		Convey("When refreshing once", func() {
			err := r.RefreshNow(ctx)

			Convey("Then valid records land and bad ones are skipped", func() {
				So(err, ShouldBeNil)
				So(catalog.count(), ShouldEqual, 2)
			})
		})

		Convey("When the fetch itself fails", func() {
			broken := feed.NewRefresher(feed.NewClient("http://127.0.0.1:1"), normalize.New(), catalog, "*/15 * * * *")

			So(broken.RefreshNow(ctx), ShouldNotBeNil)
			So(catalog.count(), ShouldEqual, 0)
		})
	})
}
