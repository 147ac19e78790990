package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	service "github.com/marquee-live/marquee/internal/app"
	"github.com/marquee-live/marquee/internal/domain/model"
	"github.com/marquee-live/marquee/internal/domain/projector"
	"github.com/marquee-live/marquee/internal/domain/types"
	logging "github.com/marquee-live/marquee/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// monday is 2024-06-03.
var monday = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func startedService(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func show(id, schedule string, kind model.RuleKind, anchor int) model.Entity {
	return model.Entity{
		ID:        id,
		Type:      model.TypeShow,
		Recurring: true,
		Rule:      &model.RecurrenceRule{Kind: kind, AnchorDay: anchor},
		Schedule:  schedule,
	}
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		_ = logging.Init()

		Convey("When starting and stopping", func() {
			svc := service.New(service.WithWorkerCount(2))
			So(svc.Start(context.Background()), ShouldBeNil)

			Convey("Then starting twice is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})

			svc.Stop()

			Convey("And stopping twice is safe", func() {
				svc.Stop()
			})
		})
	})
}

func TestServiceIngest(t *testing.T) {
	Convey("Given a started service", t, func() {
		_ = logging.Init()
		svc := startedService(service.WithWorkerCount(2))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When recording submission IDs", func() {
			Convey("Then the first sighting is new and the second is not", func() {
				So(svc.SeenAndRecord(ctx, "sub-1"), ShouldBeFalse)
				So(svc.SeenAndRecord(ctx, "sub-1"), ShouldBeTrue)
			})

			Convey("And unrecording reopens the ID", func() {
				svc.SeenAndRecord(ctx, "sub-2")
				svc.Unrecord(ctx, "sub-2")
				So(svc.SeenAndRecord(ctx, "sub-2"), ShouldBeFalse)
			})
		})

		Convey("When enqueueing a wire record", func() {
			ok := svc.Enqueue(ctx, types.WireEntity{
				ID: "1", Type: "show", IsRecurring: true, Recurrence: "daily", Scheduled: "18:30",
			})

			Convey("Then the workers catalog it", func() {
				So(ok, ShouldBeTrue)

				deadline := time.Now().Add(2 * time.Second)
				for svc.Count(ctx) == 0 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				So(svc.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When enqueueing past the queue bound", func() {
			small := startedService(service.WithWorkerCount(1), service.WithQueueSize(1))
			defer small.Stop()

			// No guarantee which submissions the worker drains first, so
			// only check that pressure eventually rejects.
			rejected := false
			for i := 0; i < 1000 && !rejected; i++ {
				rejected = !small.Enqueue(ctx, types.WireEntity{ID: fmt.Sprintf("%d", i), Type: "show", IsRecurring: true, Recurrence: "daily", Scheduled: "18:30"})
			}
			So(rejected, ShouldBeTrue)
		})
	})
}

func TestServiceProjection(t *testing.T) {
	Convey("Given a started service with a populated catalog", t, func() {
		_ = logging.Init()
		svc := startedService(service.WithWorkerCount(1))
		defer svc.Stop()
		ctx := context.Background()

		week := model.NewWindow(monday, monday.AddDate(0, 0, 7))

		So(svc.Upsert(ctx, show("mon", "18:30", model.KindSpecificDay, 0)), ShouldBeNil)
		So(svc.Upsert(ctx, model.Entity{
			ID: "solo", Type: model.TypeEvent, Schedule: "2024-06-05T19:00:00Z",
		}), ShouldBeNil)

		Convey("When projecting the window", func() {
			occs, err := svc.Project(ctx, week, "")

			Convey("Then recurring and one-off occurrences merge in time order", func() {
				So(err, ShouldBeNil)
				So(occs, ShouldHaveLength, 2)
				So(occs[0].EntityID, ShouldEqual, "mon")
				So(occs[1].EntityID, ShouldEqual, "solo")
				So(occs[0].At.Before(occs[1].At), ShouldBeTrue)
			})

			Convey("And projecting again returns the identical slice", func() {
				again, err := svc.Project(ctx, week, "")
				So(err, ShouldBeNil)
				So(again, ShouldResemble, occs)
			})
		})

		Convey("When filtering by type", func() {
			onlyEvents, err := svc.Project(ctx, week, model.TypeEvent)

			So(err, ShouldBeNil)
			So(onlyEvents, ShouldHaveLength, 1)
			So(onlyEvents[0].EntityType, ShouldEqual, model.TypeEvent)
		})

		Convey("When the window is invalid", func() {
			_, err := svc.Project(ctx, model.NewWindow(monday, monday), "")
			So(err, ShouldNotBeNil)
		})

		Convey("When the catalog changes between projections", func() {
			first, err := svc.Project(ctx, week, "")
			So(err, ShouldBeNil)

			So(svc.Upsert(ctx, show("tue", "09:00", model.KindSpecificDay, 1)), ShouldBeNil)
			second, err := svc.Project(ctx, week, "")

			Convey("Then the new entity shows up despite the cache", func() {
				So(err, ShouldBeNil)
				So(len(second), ShouldEqual, len(first)+1)
			})
		})
	})
}

func TestProjectAll(t *testing.T) {
	Convey("Given a started service", t, func() {
		_ = logging.Init()
		svc := startedService(service.WithWorkerCount(1))
		defer svc.Stop()
		ctx := context.Background()

		week := model.NewWindow(monday, monday.AddDate(0, 0, 7))

		Convey("When two entities collide on (id, type, day)", func() {
			first := show("dup", "18:30", model.KindDaily, 0)
			second := show("dup", "20:00", model.KindDaily, 0)

			occs := svc.ProjectAll(ctx, []model.Entity{first, second}, week, "")

			Convey("Then the first occurrence per day wins", func() {
				So(occs, ShouldHaveLength, 7)
				for _, o := range occs {
					So(o.At.Hour(), ShouldEqual, 18)
				}
			})
		})

		Convey("When the same ID appears under both types", func() {
			a := show("42", "18:30", model.KindDaily, 0)
			b := model.Entity{
				ID: "42", Type: model.TypeEvent, Recurring: true,
				Rule:     &model.RecurrenceRule{Kind: model.KindDaily},
				Schedule: "18:30",
			}

			occs := svc.ProjectAll(ctx, []model.Entity{a, b}, week, "")

			Convey("Then both survive deduplication", func() {
				So(occs, ShouldHaveLength, 14)
			})
		})

		Convey("When occurrences tie on the instant", func() {
			a := show("b-show", "10:00", model.KindDaily, 0)
			b := show("a-show", "10:00", model.KindDaily, 0)
			c := model.Entity{
				ID: "a-event", Type: model.TypeEvent, Recurring: true,
				Rule:     &model.RecurrenceRule{Kind: model.KindDaily},
				Schedule: "10:00",
			}

			day := model.NewWindow(monday, monday.AddDate(0, 0, 1))
			occs := svc.ProjectAll(ctx, []model.Entity{a, b, c}, day, "")

			Convey("Then ties break by type then ID", func() {
				So(occs, ShouldHaveLength, 3)
				So(occs[0].EntityType, ShouldEqual, model.TypeEvent)
				So(occs[1].EntityID, ShouldEqual, "a-show")
				So(occs[2].EntityID, ShouldEqual, "b-show")
			})
		})

		Convey("When a malformed entity sits in the batch", func() {
			var skips []projector.Skip
			diag := startedService(
				service.WithWorkerCount(1),
				service.WithDiagnostics(func(s projector.Skip) { skips = append(skips, s) }),
			)
			defer diag.Stop()

			broken := model.Entity{ID: "broken", Type: model.TypeShow, Recurring: true, Schedule: "18:30"}
			healthy := show("ok", "18:30", model.KindDaily, 0)

			occs := diag.ProjectAll(ctx, []model.Entity{broken, healthy}, week, "")

			Convey("Then the healthy entity still projects", func() {
				So(occs, ShouldHaveLength, 7)
				for _, o := range occs {
					So(o.EntityID, ShouldEqual, "ok")
				}
			})

			Convey("And the skip reaches the diagnostics callback", func() {
				So(skips, ShouldHaveLength, 1)
				So(skips[0].EntityID, ShouldEqual, "broken")
				So(skips[0].Reason, ShouldEqual, projector.SkipMissingRule)
			})
		})

		Convey("When projecting the same input twice", func() {
			entities := []model.Entity{
				show("a", "10:00", model.KindWeekdays, 0),
				show("b", "12:00", model.KindWeekends, 0),
			}

			first := svc.ProjectAll(ctx, entities, week, "")
			second := svc.ProjectAll(ctx, entities, week, "")

			Convey("Then the outputs are list-equal", func() {
				So(second, ShouldResemble, first)
			})
		})
	})
}
