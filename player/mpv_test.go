package player

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		for _, ok := range []string{
			"https://cdn.example/audio-full/Misyari-Rasyid-Al-Afasi/001.mp3",
			"http://cdn.example/001.mp3",
		} {
			target, err := sanitizeMediaTarget(ok)
			So(err, ShouldBeNil)
			So(target, ShouldEqual, ok)
		}

		target, err := sanitizeMediaTarget(" /tmp/../tmp/001.mp3 ")
		So(err, ShouldBeNil)
		So(target, ShouldEqual, "/tmp/001.mp3")

		for _, bad := range []string{"", "--script=evil.lua", "file:///etc/passwd", "https://x/\n--flag", "ytdl://x"} {
			_, err := sanitizeMediaTarget(bad)
			So(err, ShouldNotBeNil)
		}
	})

	Convey("sanitizeTitle", t, func() {
		So(sanitizeTitle(" Al-Fatihah\n\tverse 1\x00 "), ShouldEqual, "Al-Fatihah  verse 1")
	})
}

func TestIPC(t *testing.T) {
	Convey("Given an mpv socket", t, func() {
		fake := newFakeMpv(t)

		Convey("Responses are matched to their request past interleaved events", func() {
			data, err := doSendCommand(fake.path, []any{"get_property", "duration"})
			So(err, ShouldBeNil)
			So(data, ShouldEqual, 30.0)
		})

		Convey("Errors reported by mpv are returned without retrying", func() {
			m := NewMPV(Options{})
			m.socketPath = fake.path

			_, err := m.sendCommand("get_property", "chapter-list")
			var mpvErr mpvError
			So(errors.As(err, &mpvErr), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "property unavailable")
			So(fake.count("get_property"), ShouldEqual, 1)
		})

		Convey("A missing socket fails after retries", func() {
			m := NewMPV(Options{})
			m.socketPath = fake.path + ".missing"
			_, err := m.sendCommand("get_property", "pid")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "3 attempts")
		})
	})
}

func TestMPVElements(t *testing.T) {
	Convey("Given two elements sharing one mpv process", t, func() {
		ctx := context.Background()
		fake := newFakeMpv(t)
		engine := fake.attach(t)

		a := engine.NewElement("verse-1")
		b := engine.NewElement("verse-2")
		So(a.Load(ctx, "https://cdn.example/001001.mp3"), ShouldBeNil)

		Convey("A loaded element owns the process, paused", func() {
			So(engine.owns(a.(*mpvElement)), ShouldBeTrue)
			So(fake.prop("path"), ShouldEqual, "https://cdn.example/001001.mp3")
			So(fake.prop("pause"), ShouldEqual, true)

			d, err := a.Duration()
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 30*time.Second)
		})

		Convey("Play unpauses at the element's volume", func() {
			So(a.SetVolume(0.5), ShouldBeNil)
			So(a.Play(ctx), ShouldBeNil)
			So(fake.prop("pause"), ShouldEqual, false)
			So(fake.prop("volume"), ShouldEqual, 50.0)
		})

		Convey("When another element takes the process", func() {
			So(a.Play(ctx), ShouldBeNil)
			fake.set("time-pos", 12.5)
			So(a.Pause(), ShouldBeNil)
			So(b.Load(ctx, "https://cdn.example/001002.mp3"), ShouldBeNil)

			Convey("The first keeps its position", func() {
				So(engine.owns(a.(*mpvElement)), ShouldBeFalse)
				pos, err := a.Position()
				So(err, ShouldBeNil)
				So(pos, ShouldEqual, 12500*time.Millisecond)
			})

			Convey("Playing the first again reloads it where it was", func() {
				So(a.Play(ctx), ShouldBeNil)
				So(engine.owns(a.(*mpvElement)), ShouldBeTrue)
				So(fake.prop("path"), ShouldEqual, "https://cdn.example/001001.mp3")
				So(fake.prop("time-pos"), ShouldEqual, 12.5)
				So(fake.prop("pause"), ShouldEqual, false)
			})

			Convey("Pausing or closing the first leaves the second alone", func() {
				So(a.Pause(), ShouldBeNil)
				So(a.Close(), ShouldBeNil)
				So(engine.owns(b.(*mpvElement)), ShouldBeTrue)
				So(fake.count("stop"), ShouldEqual, 0)
			})
		})

		Convey("The end of the file is reported to its owner only", func() {
			ended := make(chan string, 2)
			a.OnEnded(func() { ended <- "verse-1" })
			b.OnEnded(func() { ended <- "verse-2" })
			So(a.Play(ctx), ShouldBeNil)

			fake.broadcast(`{"event":"end-file","reason":"eof"}`)
			select {
			case id := <-ended:
				So(id, ShouldEqual, "verse-1")
			case <-time.After(2 * time.Second):
				So("no end-file dispatched", ShouldBeEmpty)
			}
			So(engine.owns(a.(*mpvElement)), ShouldBeFalse)
		})

		Convey("A file mpv cannot open fails the load", func() {
			fake.misbehave(true, false)
			err := b.Load(ctx, "https://cdn.example/broken.mp3")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "loading failed")
			So(engine.owns(b.(*mpvElement)), ShouldBeFalse)
		})

		Convey("A load that never finishes is abandoned with its context", func() {
			fake.misbehave(false, true)
			cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
			defer cancel()

			err := b.Load(cctx, "https://cdn.example/slow.mp3")
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			So(engine.owns(b.(*mpvElement)), ShouldBeFalse)
			So(fake.count("stop"), ShouldEqual, 1)
		})

		Convey("Unsafe sources never reach mpv", func() {
			before := fake.count("loadfile")
			So(b.Load(ctx, "--input-ipc-server=/tmp/x"), ShouldNotBeNil)
			So(fake.count("loadfile"), ShouldEqual, before)
		})

		Convey("Play without a source does nothing", func() {
			before := fake.count("set_property")
			So(b.Play(ctx), ShouldBeNil)
			So(fake.count("set_property"), ShouldEqual, before)
		})
	})
}
