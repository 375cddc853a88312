package cmd

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/config"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/playback"
	"github.com/tilawah-cli/tilawah/quran"
	"github.com/tilawah-cli/tilawah/reader"
)

// element finishes every source shortly after it starts playing.
type element struct {
	mu      sync.Mutex
	ended   func()
	volume  float64
	playErr error
}

func (e *element) Load(context.Context, string) error { return nil }

func (e *element) Play(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playErr != nil {
		return e.playErr
	}
	if fn := e.ended; fn != nil {
		time.AfterFunc(20*time.Millisecond, fn)
	}
	return nil
}

func (e *element) Pause() error                     { return nil }
func (e *element) Seek(time.Duration) error         { return nil }
func (e *element) Position() (time.Duration, error) { return 0, nil }
func (e *element) Duration() (time.Duration, error) { return time.Second, nil }
func (e *element) Close() error                     { return nil }
func (e *element) Volume() float64                  { e.mu.Lock(); defer e.mu.Unlock(); return e.volume }
func (e *element) SetVolume(v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = v
	return nil
}
func (e *element) OnEnded(fn func()) { e.mu.Lock(); defer e.mu.Unlock(); e.ended = fn }

type factory struct {
	mu       sync.Mutex
	elements map[playback.ID]*element
	failing  map[playback.ID]error
}

func (f *factory) NewElement(id playback.ID) playback.Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	el := &element{volume: 1, playErr: f.failing[id]}
	f.elements[id] = el
	return el
}

func ikhlas() *quran.Surah {
	verse := func(n int, text string) quran.Verse {
		return quran.Verse{
			Number:      n,
			Arabic:      text,
			Translation: "verse " + text,
			Audio:       map[string]string{"05": "https://cdn.example/112" + text + ".mp3"},
		}
	}

	return &quran.Surah{
		Number:     112,
		Name:       "الإخلاص",
		NameLatin:  "Al-Ikhlas",
		VerseCount: 4,
		Revelation: "Mekah",
		Meaning:    "Ikhlas",
		AudioFull:  map[string]string{"05": "https://cdn.example/112.mp3"},
		Verses:     []quran.Verse{verse(1, "a"), verse(2, "b"), verse(3, "c"), verse(4, "d")},
	}
}

func TestRecite(t *testing.T) {
	Convey("Given a surah and a backend whose audio ends quickly", t, func() {
		viper.Set(key.TUIShowTranslation, true)
		Reset(viper.Reset)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		f := &factory{elements: make(map[playback.ID]*element), failing: make(map[playback.ID]error)}
		options := reader.Options{Reciter: "05", SettleDelay: time.Millisecond, LoadTimeout: time.Second}
		var out bytes.Buffer

		Convey("Selected verses are printed and recited in order", func() {
			So(recite(ctx, &out, ikhlas(), f, options, false, []int{3, 1}), ShouldBeNil)
			So(ctx.Err(), ShouldBeNil)

			text := out.String()
			So(text, ShouldContainSubstring, "2 verses")
			So(text, ShouldContainSubstring, "112:3")
			So(text, ShouldContainSubstring, "112:1")
			So(text, ShouldNotContainSubstring, "112:2")
			So(text, ShouldContainSubstring, "verse c")
			So(bytes.Index(out.Bytes(), []byte("112:3")), ShouldBeLessThan, bytes.Index(out.Bytes(), []byte("112:1")))
		})

		Convey("A verse that cannot be played is reported and skipped", func() {
			f.failing[quran.VerseID(2)] = errors.New("unsupported format")

			So(recite(ctx, &out, ikhlas(), f, options, false, []int{1, 2, 3}), ShouldBeNil)
			So(ctx.Err(), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "verse-2 skipped")
			So(out.String(), ShouldContainSubstring, "112:3")
		})

		Convey("The full surah returns once it ends", func() {
			So(recite(ctx, &out, ikhlas(), f, options, true, nil), ShouldBeNil)
			So(ctx.Err(), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "Misyari Rasyid Al-Afasi")
		})

		Convey("A full surah that fails to play returns its error", func() {
			f.failing[quran.FullID] = errors.New("unsupported format")
			So(recite(ctx, &out, ikhlas(), f, options, true, nil), ShouldNotBeNil)
		})

		Convey("Cancelling stops a replaying surah", func() {
			options.ReplayOnEnd = true
			options.ReplayDelay = time.Hour

			short, stop := context.WithTimeout(ctx, 200*time.Millisecond)
			defer stop()

			So(recite(short, &out, ikhlas(), f, options, true, nil), ShouldBeNil)
			So(short.Err(), ShouldNotBeNil)
		})
	})
}

func TestParseValue(t *testing.T) {
	Convey("Values are converted to the type of the default", t, func() {
		v, err := parseValue(config.Default[key.PlayerLoadTimeout], "15")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 15)

		v, err = parseValue(config.Default[key.PlayerReplayOnEnd], "true")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, true)

		_, err = parseValue(config.Default[key.PlayerLoadTimeout], "soon")
		So(err, ShouldNotBeNil)
	})

	Convey("Restricted values are validated", t, func() {
		v, err := parseValue(config.Default[key.PlayerBackend], "beep")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "beep")

		_, err = parseValue(config.Default[key.PlayerBackend], "vlc")
		So(err, ShouldNotBeNil)
	})

	Convey("Unknown keys suggest the closest one", t, func() {
		So(errUnknownKey("player.backnd").Error(), ShouldContainSubstring, key.PlayerBackend)
	})
}

func TestSurahLine(t *testing.T) {
	Convey("A surah line names the surah", t, func() {
		line := surahLine(ikhlas())
		So(line, ShouldContainSubstring, "Al-Ikhlas")
		So(line, ShouldContainSubstring, "4 verses")
		So(line, ShouldContainSubstring, "mekah")
	})
}
