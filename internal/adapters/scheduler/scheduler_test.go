package scheduler_test

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grimaarkan/speedruntracker/internal/adapters/scheduler"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type cyclerFunc func(ctx context.Context) error

func (f cyclerFunc) Cycle(ctx context.Context) error { return f(ctx) }

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestScheduler(t *testing.T) {
	Convey("Given a scheduler whose cycles succeed", t, func() {
		var calls atomic.Int64
		s := scheduler.New(cyclerFunc(func(context.Context) error {
			calls.Add(1)
			return nil
		}), scheduler.WithInterval(time.Hour), scheduler.WithRecoveryInterval(time.Millisecond))

		Convey("When started twice", func() {
			first := s.Start(context.Background())
			second := s.Start(context.Background())
			defer func() { _ = s.Shutdown(context.Background()) }()

			Convey("Then only one loop runs and the first cycle starts immediately", func() {
				So(first, ShouldBeTrue)
				So(second, ShouldBeFalse)
				So(eventually(func() bool { return calls.Load() == 1 }), ShouldBeTrue)
				time.Sleep(30 * time.Millisecond)
				So(calls.Load(), ShouldEqual, 1)
				So(s.Running(), ShouldBeTrue)
			})
		})

		Convey("When shut down", func() {
			s.Start(context.Background())
			So(eventually(func() bool { return calls.Load() == 1 }), ShouldBeTrue)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err := s.Shutdown(ctx)

			Convey("Then the loop exits promptly", func() {
				So(err, ShouldBeNil)
				So(s.Running(), ShouldBeFalse)
				So(s.Shutdown(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a scheduler whose cycles fail as a whole", t, func() {
		var calls atomic.Int64
		s := scheduler.New(cyclerFunc(func(context.Context) error {
			calls.Add(1)
			return errors.New("misconfigured")
		}), scheduler.WithInterval(time.Hour), scheduler.WithRecoveryInterval(5*time.Millisecond))

		s.Start(context.Background())
		defer func() { _ = s.Shutdown(context.Background()) }()

		Convey("Then it retries after the recovery interval, not the full interval", func() {
			So(eventually(func() bool { return calls.Load() >= 3 }), ShouldBeTrue)
			So(s.Cycles(), ShouldBeGreaterThanOrEqualTo, 3)
		})
	})

	Convey("Given a cycle that panics", t, func() {
		var calls atomic.Int64
		s := scheduler.New(cyclerFunc(func(context.Context) error {
			if calls.Add(1) == 1 {
				panic("boom")
			}
			return nil
		}), scheduler.WithInterval(time.Hour), scheduler.WithRecoveryInterval(5*time.Millisecond))

		s.Start(context.Background())
		defer func() { _ = s.Shutdown(context.Background()) }()

		Convey("Then the loop survives and runs again after recovery", func() {
			So(eventually(func() bool { return calls.Load() == 2 }), ShouldBeTrue)
			So(s.Running(), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled parent context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		s := scheduler.New(cyclerFunc(func(context.Context) error { return nil }), scheduler.WithInterval(time.Hour))

		s.Start(ctx)
		cancel()

		Convey("Then the loop stops on its own", func() {
			So(eventually(func() bool { return !s.Running() }), ShouldBeTrue)
		})
	})

	Convey("Given a scheduler that never started", t, func() {
		s := scheduler.New(cyclerFunc(func(context.Context) error { return nil }))

		So(s.Running(), ShouldBeFalse)
		So(s.Shutdown(context.Background()), ShouldBeNil)
	})
}
