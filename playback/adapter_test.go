package playback

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAdapterScenario(t *testing.T) {
	Convey("Given a full-surah adapter and three verse adapters on one page", t, func() {
		ctx := context.Background()
		p := newPage(nil, "full", "verse-1", "verse-2", "verse-3")
		full, verse1 := p.adapters["full"], p.adapters["verse-1"]

		Convey("When verse-1 is played", func() {
			So(verse1.Play(ctx), ShouldBeNil)

			Convey("Then verse-1 holds the slot and is the only one playing", func() {
				So(p.coord.Current(), ShouldEqual, ID("verse-1"))
				So(verse1.Status(), ShouldEqual, StatusPlaying)
				So(full.Status(), ShouldNotEqual, StatusPlaying)
				So(verse1.Snapshot().Holder, ShouldBeTrue)
			})

			Convey("When full is played afterwards", func() {
				So(full.Play(ctx), ShouldBeNil)

				Convey("Then full holds the slot and verse-1 is paused without releasing", func() {
					So(p.coord.Current(), ShouldEqual, ID("full"))
					So(full.Status(), ShouldEqual, StatusPlaying)
					So(verse1.Status(), ShouldEqual, StatusPaused)
					So(p.audible(), ShouldResemble, []ID{"full"})
				})
			})
		})
	})
}

func TestMutualExclusion(t *testing.T) {
	Convey("For any sequence of requests across many adapters", t, func() {
		ctx := context.Background()
		ids := []ID{"full", "verse-1", "verse-2", "verse-3", "verse-4", "verse-5"}
		p := newPage(nil, ids...)
		rng := rand.New(rand.NewSource(7))

		for step := 0; step < 500; step++ {
			a := p.adapters[ids[rng.Intn(len(ids))]]
			switch rng.Intn(4) {
			case 0, 1:
				_ = a.Play(ctx)
			case 2:
				_ = a.Toggle(ctx)
			case 3:
				if a.Status() == StatusPlaying {
					p.elements[a.ID()].finish()
				}
			}

			So(len(p.playing()), ShouldBeLessThanOrEqualTo, 1)
			So(len(p.audible()), ShouldBeLessThanOrEqualTo, 1)

			if holder := p.coord.Current(); holder != None {
				So(p.adapters[holder].Status(), ShouldEqual, StatusPlaying)
			}
		}
	})
}

func TestReleaseOnSupersede(t *testing.T) {
	Convey("Given A playing", t, func() {
		ctx := context.Background()
		p := newPage(nil, "a", "b")
		a, b := p.adapters["a"], p.adapters["b"]
		So(a.Play(ctx), ShouldBeNil)

		Convey("When B is requested, A is paused before B's element starts", func() {
			var aAudible bool
			p.elements["b"].beforePlay = func() {
				aAudible = p.elements["a"].isPlaying()
			}
			So(b.Play(ctx), ShouldBeNil)

			So(aAudible, ShouldBeFalse)
			So(a.Status(), ShouldEqual, StatusPaused)
			So(b.Status(), ShouldEqual, StatusPlaying)
			So(p.coord.Current(), ShouldEqual, ID("b"))
		})
	})
}

func TestToggle(t *testing.T) {
	Convey("Given a playing adapter", t, func() {
		ctx := context.Background()
		p := newPage(nil, "verse-1")
		a, el := p.adapters["verse-1"], p.elements["verse-1"]
		So(a.Toggle(ctx), ShouldBeNil)
		So(a.Status(), ShouldEqual, StatusPlaying)

		var events []Event
		p.coord.Watch(func(e Event) { events = append(events, e) })

		Convey("When it is toggled, it stops and releases the slot", func() {
			So(a.Toggle(ctx), ShouldBeNil)
			So(a.Status(), ShouldEqual, StatusPaused)
			So(p.coord.Current(), ShouldEqual, None)
			So(el.isPlaying(), ShouldBeFalse)
			So(events, ShouldResemble, []Event{{ID: "verse-1", Kind: EventStopped}})

			Convey("When it is toggled again, it plays afresh without error", func() {
				So(a.Toggle(ctx), ShouldBeNil)
				So(a.Status(), ShouldEqual, StatusPlaying)
				So(p.coord.Current(), ShouldEqual, ID("verse-1"))

				loads, _, _ := el.counts()
				So(loads, ShouldEqual, 1)
			})
		})

		Convey("Playing it again keeps it playing", func() {
			So(a.Play(ctx), ShouldBeNil)
			So(a.Status(), ShouldEqual, StatusPlaying)
			_, plays, _ := el.counts()
			So(plays, ShouldEqual, 1)
		})
	})
}

func TestAdapterErrors(t *testing.T) {
	Convey("Given an adapter", t, func() {
		ctx := context.Background()
		p := newPage(nil, "verse-1")
		a, el := p.adapters["verse-1"], p.elements["verse-1"]

		var events []Event
		p.coord.Watch(func(e Event) { events = append(events, e) })

		Convey("A load failure is reported and releases the slot", func() {
			el.loadErr = errors.New("connection refused")
			err := a.Play(ctx)
			So(errors.Is(err, ErrLoadFailure), ShouldBeTrue)
			So(a.Status(), ShouldEqual, StatusError)
			So(a.Snapshot().ErrorMessage, ShouldEqual, Message(ErrLoadFailure))
			So(p.coord.Current(), ShouldEqual, None)
			So(events, ShouldHaveLength, 1)
			So(events[0].Kind, ShouldEqual, EventFailed)
		})

		Convey("A load that never becomes ready times out", func() {
			a.loadTimeout = 20 * time.Millisecond
			el.hangLoad = true
			err := a.Play(ctx)
			So(errors.Is(err, ErrLoadTimeout), ShouldBeTrue)
			So(a.Status(), ShouldEqual, StatusError)
			So(p.coord.Current(), ShouldEqual, None)
		})

		Convey("A rejected play is reported as a playback failure", func() {
			el.playErr = errors.New("autoplay blocked")
			err := a.Play(ctx)
			So(errors.Is(err, ErrPlaybackRejected), ShouldBeTrue)
			So(a.Status(), ShouldEqual, StatusError)
			So(p.coord.Current(), ShouldEqual, None)
		})

		Convey("A missing source never takes the slot", func() {
			So(a.SetSource(ctx, "", false), ShouldBeNil)
			err := a.Play(ctx)
			So(errors.Is(err, ErrNoSource), ShouldBeTrue)
			So(a.Status(), ShouldEqual, StatusError)
			So(p.coord.Current(), ShouldEqual, None)
		})

		Convey("A cancelled context leaves the adapter idle", func() {
			el.hangLoad = true
			cctx, cancel := context.WithCancel(ctx)
			go func() {
				time.Sleep(10 * time.Millisecond)
				cancel()
			}()
			err := a.Play(cctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(a.Status(), ShouldEqual, StatusIdle)
			So(events, ShouldBeEmpty)
		})

		Convey("After an error a new attempt can succeed", func() {
			el.playErr = errors.New("decode error")
			_ = a.Play(ctx)
			el.playErr = nil
			So(a.Play(ctx), ShouldBeNil)
			So(a.Status(), ShouldEqual, StatusPlaying)
		})
	})
}

func TestNaturalEnd(t *testing.T) {
	Convey("Given a playing adapter", t, func() {
		ctx := context.Background()
		p := newPage(nil, "full", "verse-1")
		a, el := p.adapters["full"], p.elements["full"]

		var events []Event
		p.coord.Watch(func(e Event) { events = append(events, e) })

		Convey("Without replay, the end releases the slot and goes idle", func() {
			So(a.Play(ctx), ShouldBeNil)
			el.finish()
			So(a.Status(), ShouldEqual, StatusIdle)
			So(p.coord.Current(), ShouldEqual, None)
			So(events, ShouldHaveLength, 1)
			So(events[0].Kind, ShouldEqual, EventEnded)
			So(p.clock.Pending(), ShouldEqual, 0)
		})

		Convey("With replay enabled", func() {
			a.SetReplayOnEnd(true)
			So(a.Play(ctx), ShouldBeNil)
			el.finish()

			Convey("The end schedules a replay and pauses", func() {
				So(a.Status(), ShouldEqual, StatusPaused)
				So(a.Snapshot().ReplayPending, ShouldBeTrue)
				So(p.clock.Pending(), ShouldEqual, 1)
			})

			Convey("Nothing happens before the replay delay", func() {
				p.clock.Advance(DefaultReplayDelay - time.Millisecond)
				So(a.Status(), ShouldEqual, StatusPaused)
			})

			Convey("The replay restarts the source from zero", func() {
				p.clock.Advance(DefaultReplayDelay)
				So(a.Status(), ShouldEqual, StatusPlaying)
				So(p.coord.Current(), ShouldEqual, ID("full"))
				loads, _, _ := el.counts()
				So(loads, ShouldEqual, 2)
			})

			Convey("A manual play before the timer cancels the replay", func() {
				So(a.Toggle(ctx), ShouldBeNil)
				So(p.clock.Pending(), ShouldEqual, 0)
				_, plays, _ := el.counts()

				p.clock.Advance(DefaultReplayDelay)
				_, after, _ := el.counts()
				So(after, ShouldEqual, plays)
				So(a.Status(), ShouldEqual, StatusPlaying)
			})

			Convey("Another item starting cancels the replay", func() {
				So(p.adapters["verse-1"].Play(ctx), ShouldBeNil)
				p.clock.Advance(DefaultReplayDelay)
				So(a.Status(), ShouldEqual, StatusPaused)
				So(p.coord.Current(), ShouldEqual, ID("verse-1"))
			})

			Convey("Closing the adapter cancels the replay", func() {
				So(a.Close(), ShouldBeNil)
				p.clock.Advance(DefaultReplayDelay)
				So(p.coord.Current(), ShouldEqual, None)
				So(p.clock.Pending(), ShouldEqual, 0)
			})
		})

		Convey("Replay is suppressed while the coordinator says so", func() {
			a.SetReplayOnEnd(true)
			p.coord.SuppressReplay(true)
			So(a.Play(ctx), ShouldBeNil)
			el.finish()
			So(a.Status(), ShouldEqual, StatusIdle)
			So(p.clock.Pending(), ShouldEqual, 0)
		})
	})
}

func TestSetSource(t *testing.T) {
	Convey("Given a playing adapter", t, func() {
		ctx := context.Background()
		p := newPage(nil, "full")
		a, el := p.adapters["full"], p.elements["full"]
		So(a.Play(ctx), ShouldBeNil)
		So(el.Seek(42*time.Second), ShouldBeNil)

		Convey("Switching with resume restarts at zero on the new source", func() {
			So(a.SetSource(ctx, "https://cdn.example/other.mp3", true), ShouldBeNil)
			So(a.Status(), ShouldEqual, StatusPlaying)
			So(el.loaded, ShouldEqual, "https://cdn.example/other.mp3")
			pos, _ := el.Position()
			So(pos, ShouldEqual, 0)
			So(p.coord.Current(), ShouldEqual, ID("full"))
		})

		Convey("Switching without resume pauses, releases and reports the stop", func() {
			var events []Event
			p.coord.Watch(func(e Event) { events = append(events, e) })

			So(a.SetSource(ctx, "https://cdn.example/other.mp3", false), ShouldBeNil)
			So(a.Status(), ShouldEqual, StatusIdle)
			So(el.isPlaying(), ShouldBeFalse)
			So(p.coord.Current(), ShouldEqual, None)
			So(events, ShouldResemble, []Event{{ID: "full", Kind: EventStopped}})
		})
	})
}

func TestClose(t *testing.T) {
	Convey("Given a playing adapter", t, func() {
		ctx := context.Background()
		p := newPage(nil, "verse-1")
		a, el := p.adapters["verse-1"], p.elements["verse-1"]
		So(a.Play(ctx), ShouldBeNil)

		Convey("Closing pauses, releases and unregisters it", func() {
			So(a.Close(), ShouldBeNil)
			So(el.isPlaying(), ShouldBeFalse)
			So(p.coord.Current(), ShouldEqual, None)
			So(p.coord.Lookup("verse-1").IsPresent(), ShouldBeFalse)
			So(el.closes, ShouldEqual, 1)

			Convey("And later calls report it closed", func() {
				So(errors.Is(a.Play(ctx), ErrClosed), ShouldBeTrue)
				So(a.Close(), ShouldBeNil)
			})

			Convey("And the id can be mounted again", func() {
				_, err := NewAdapter(p.coord, "verse-1", newFakeElement(), AdapterOptions{})
				So(err, ShouldBeNil)
			})
		})
	})
}
