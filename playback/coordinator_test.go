package playback

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type stubHandle struct{ id ID }

func (s stubHandle) ID() ID { return s.id }

func (stubHandle) Play(context.Context) error { return nil }

func TestCoordinator(t *testing.T) {
	Convey("Given a coordinator", t, func() {
		c := NewCoordinator()

		var seen []ID
		unsubscribe := c.Subscribe(func(holder ID) {
			seen = append(seen, holder)
		})

		Convey("It starts without a holder", func() {
			So(c.Current(), ShouldEqual, None)
			So(c.Holds("verse-1"), ShouldBeFalse)
		})

		Convey("When play is requested", func() {
			c.RequestPlay("verse-1")

			Convey("Then the requester holds the slot and subscribers are told", func() {
				So(c.Current(), ShouldEqual, ID("verse-1"))
				So(c.Holds("verse-1"), ShouldBeTrue)
				So(seen, ShouldResemble, []ID{"verse-1"})
			})

			Convey("Then a repeated request is not a change", func() {
				c.RequestPlay("verse-1")
				So(seen, ShouldHaveLength, 1)
			})

			Convey("Then a stale release is ignored", func() {
				c.Release("verse-2")
				So(c.Current(), ShouldEqual, ID("verse-1"))
				So(seen, ShouldHaveLength, 1)
			})

			Convey("Then the holder's release clears the slot", func() {
				c.Release("verse-1")
				So(c.Current(), ShouldEqual, None)
				So(seen, ShouldResemble, []ID{"verse-1", None})
			})

			Convey("Then a later request supersedes it", func() {
				c.RequestPlay("full")
				So(c.Current(), ShouldEqual, ID("full"))
				So(seen, ShouldResemble, []ID{"verse-1", "full"})
			})
		})

		Convey("When a subscriber unsubscribes", func() {
			unsubscribe()
			c.RequestPlay("verse-3")
			So(seen, ShouldBeEmpty)
		})

		Convey("Subscribers may call back into the coordinator", func() {
			c.Subscribe(func(holder ID) {
				if holder == "verse-9" {
					c.Release("verse-9")
				}
			})
			c.RequestPlay("verse-9")
			So(c.Current(), ShouldEqual, None)
		})

		Convey("With hundreds of subscribers each change reaches every one once", func() {
			counts := make([]int, 300)
			for i := range counts {
				i := i
				c.Subscribe(func(ID) { counts[i]++ })
			}
			c.RequestPlay("verse-1")
			c.RequestPlay("verse-2")
			for _, n := range counts {
				So(n, ShouldEqual, 2)
			}
		})

		Convey("The registry", func() {
			unregister, err := c.Register(stubHandle{id: "verse-1"})
			So(err, ShouldBeNil)

			Convey("Finds handles by id", func() {
				h, ok := c.Lookup("verse-1").Get()
				So(ok, ShouldBeTrue)
				So(h.ID(), ShouldEqual, ID("verse-1"))
				So(c.Lookup("verse-2").IsPresent(), ShouldBeFalse)
			})

			Convey("Rejects duplicate ids", func() {
				_, err := c.Register(stubHandle{id: "verse-1"})
				So(errors.Is(err, ErrDuplicateID), ShouldBeTrue)
			})

			Convey("Forgets unregistered handles", func() {
				unregister()
				So(c.Lookup("verse-1").IsPresent(), ShouldBeFalse)
			})
		})

		Convey("Watchers receive published events", func() {
			var events []Event
			cancel := c.Watch(func(e Event) { events = append(events, e) })
			c.Publish(Event{ID: "verse-1", Kind: EventEnded})
			cancel()
			c.Publish(Event{ID: "verse-2", Kind: EventEnded})
			So(events, ShouldHaveLength, 1)
			So(events[0].Kind, ShouldEqual, EventEnded)
		})

		Convey("Replay suppression is a plain switch", func() {
			So(c.ReplaySuppressed(), ShouldBeFalse)
			c.SuppressReplay(true)
			So(c.ReplaySuppressed(), ShouldBeTrue)
		})
	})
}
