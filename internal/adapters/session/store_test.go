package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/internal/domain/model"
	"github.com/okian/vitrine/internal/domain/navigation"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func initialState() navigation.State {
	return navigation.State{Category: model.CategoryExperiences, Index: 2}
}

func TestStoreAcquire(t *testing.T) {
	Convey("Given a store with a TTL", t, func() {
		ctx := context.Background()
		clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
		s := NewStore(initialState, WithTTL(time.Hour), WithClock(clock.Now))

		Convey("When acquiring with no id", func() {
			sess, created := s.Acquire(ctx, "")

			Convey("Then a fresh session with a uuid and initial state is made", func() {
				So(created, ShouldBeTrue)
				_, err := uuid.Parse(sess.ID)
				So(err, ShouldBeNil)
				So(sess.Nav(), ShouldResemble, initialState())
				So(sess.History(), ShouldBeEmpty)
				So(s.Len(), ShouldEqual, 1)
			})

			Convey("And acquiring by its id returns the same session", func() {
				again, created := s.Acquire(ctx, sess.ID)
				So(created, ShouldBeFalse)
				So(again, ShouldEqual, sess)
			})

			Convey("And an expired session is replaced", func() {
				clock.Advance(2 * time.Hour)
				fresh, created := s.Acquire(ctx, sess.ID)
				So(created, ShouldBeTrue)
				So(fresh.ID, ShouldNotEqual, sess.ID)
				So(s.Len(), ShouldEqual, 1)
			})
		})

		Convey("When an unknown id is presented", func() {
			sess, created := s.Acquire(ctx, "not-a-session")
			So(created, ShouldBeTrue)
			So(sess.ID, ShouldNotEqual, "not-a-session")
		})

		Convey("When sweeping", func() {
			old, _ := s.Acquire(ctx, "")
			clock.Advance(50 * time.Minute)
			recent, _ := s.Acquire(ctx, "")
			clock.Advance(20 * time.Minute)

			removed := s.Sweep(ctx)

			Convey("Then only idle sessions are removed", func() {
				So(removed, ShouldEqual, 1)
				_, ok := s.Get(old.ID)
				So(ok, ShouldBeFalse)
				_, ok = s.Get(recent.ID)
				So(ok, ShouldBeTrue)
			})
		})
	})

	Convey("Given a store without TTL", t, func() {
		s := NewStore(nil)
		s.Acquire(context.Background(), "")
		So(s.Sweep(context.Background()), ShouldEqual, 0)
		So(s.Len(), ShouldEqual, 1)
	})
}

func TestSessionState(t *testing.T) {
	Convey("Given a session", t, func() {
		ctx := context.Background()
		s := NewStore(initialState, WithChatRate(60, 2), WithDedupeSize(4))
		sess, _ := s.Acquire(ctx, "")

		Convey("History is copied in and out", func() {
			h := chat.History{{User: "hi", Assistant: "hello"}}
			sess.SetHistory(h)
			h[0].User = "changed"
			got := sess.History()
			So(got[0].User, ShouldEqual, "hi")
			got[0].User = "again"
			So(sess.History()[0].User, ShouldEqual, "hi")
		})

		Convey("Navigation state is replaced", func() {
			sess.UpdateNav(func(navigation.State) navigation.State {
				return navigation.State{Category: model.CategorySkills}
			})
			So(sess.Nav().Category, ShouldEqual, model.CategorySkills)
		})

		Convey("Concurrent navigation updates are applied one at a time", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					sess.UpdateNav(func(st navigation.State) navigation.State {
						st.Index++
						return st
					})
				}()
			}
			wg.Wait()
			So(sess.Nav().Index, ShouldEqual, initialState().Index+50)

			prev, next := sess.UpdateNav(func(st navigation.State) navigation.State {
				st.Category = model.CategoryEducation
				return st
			})
			So(prev.Category, ShouldNotEqual, model.CategoryEducation)
			So(next.Category, ShouldEqual, model.CategoryEducation)
		})

		Convey("The limiter admits the burst then rejects", func() {
			So(sess.AllowChat(), ShouldBeTrue)
			So(sess.AllowChat(), ShouldBeTrue)
			So(sess.AllowChat(), ShouldBeFalse)
		})

		Convey("Request ids are remembered until forgotten", func() {
			So(sess.SeenRequest(ctx, "r1"), ShouldBeFalse)
			So(sess.SeenRequest(ctx, "r1"), ShouldBeTrue)
			sess.ForgetRequest(ctx, "r1")
			So(sess.SeenRequest(ctx, "r1"), ShouldBeFalse)
		})

		Convey("Turns are serialised", func() {
			release := sess.BeginTurn()
			done := make(chan struct{})
			go func() {
				defer close(done)
				sess.BeginTurn()()
			}()
			concurrent := false
			select {
			case <-done:
				concurrent = true
			case <-time.After(20 * time.Millisecond):
			}
			So(concurrent, ShouldBeFalse)
			release()
			<-done
		})
	})

	Convey("Without a rate every chat is allowed", t, func() {
		sess, _ := NewStore(nil).Acquire(context.Background(), "")
		for i := 0; i < 100; i++ {
			So(sess.AllowChat(), ShouldBeTrue)
		}
	})
}

func TestRun(t *testing.T) {
	Convey("Given the janitor", t, func() {
		s := NewStore(nil, WithTTL(time.Nanosecond))

		Convey("A negative interval is rejected", func() {
			So(s.Run(context.Background(), -time.Second), ShouldEqual, ErrInvalidInterval)
		})

		Convey("It stops when the context ends", func() {
			ctx, cancel := context.WithCancel(context.Background())
			errc := make(chan error, 1)
			go func() { errc <- s.Run(ctx, time.Millisecond) }()
			cancel()
			So(<-errc, ShouldBeNil)
		})
	})
}

func TestCookie(t *testing.T) {
	Convey("Given the session cookie helpers", t, func() {
		rec := httptest.NewRecorder()
		SetCookie(rec, "abc", time.Hour)
		cookies := rec.Result().Cookies()
		So(cookies, ShouldHaveLength, 1)
		So(cookies[0].Name, ShouldEqual, CookieName)
		So(cookies[0].HttpOnly, ShouldBeTrue)
		So(cookies[0].MaxAge, ShouldEqual, 3600)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		So(FromRequest(req), ShouldEqual, "")
		req.AddCookie(cookies[0])
		So(FromRequest(req), ShouldEqual, "abc")
	})
}
