package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/spf13/afero"
	"github.com/tilawah-cli/tilawah/filesystem"
	"github.com/tilawah-cli/tilawah/log"
	"github.com/tilawah-cli/tilawah/network"
	"github.com/tilawah-cli/tilawah/playback"
	"github.com/tilawah-cli/tilawah/util"
	"github.com/tilawah-cli/tilawah/where"
)

// speakerRate is fixed so the device is initialized once; sources are resampled to it.
var speakerRate = beep.SampleRate(44100)

// Beep is an engine that downloads sources into the audio cache and mixes them in-process.
type Beep struct {
	once    sync.Once
	initErr error

	// initSpeaker is replaced in tests, which have no audio device.
	initSpeaker func() error
}

func NewBeep() *Beep {
	return &Beep{
		initSpeaker: func() error {
			return speaker.Init(speakerRate, speakerRate.N(time.Second/10))
		},
	}
}

func (b *Beep) NewElement(id playback.ID) playback.Element {
	return &beepElement{engine: b, id: id, volume: 1}
}

func (b *Beep) speaker() error {
	b.once.Do(func() {
		b.initErr = b.initSpeaker()
	})
	return b.initErr
}

// Close silences the mixer.
func (b *Beep) Close() error {
	if b.speaker() == nil {
		speaker.Clear()
	}
	return nil
}

type beepElement struct {
	engine *Beep
	id     playback.ID

	mu      sync.Mutex
	stream  beep.StreamSeekCloser
	format  beep.Format
	ctrl    *beep.Ctrl
	vol     *effects.Volume
	volume  float64
	started bool
	ended   func()
}

// decode picks a decoder by extension and takes ownership of f.
func decode(f afero.File, name string) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".ogg":
		stream, format, err = vorbis.Decode(f)
	default:
		err = fmt.Errorf("unsupported audio format %q", ext)
	}

	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, err
	}
	return stream, format, nil
}

func (e *beepElement) Load(ctx context.Context, source string) error {
	local, err := fetch(ctx, source)
	if err != nil {
		return err
	}

	f, err := filesystem.API().Open(local)
	if err != nil {
		return err
	}
	stream, format, err := decode(f, local)
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(local), err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.detachLocked()
	e.stream = stream
	e.format = format
	e.vol = &effects.Volume{
		Streamer: beep.Resample(4, format.SampleRate, speakerRate, stream),
		Base:     10,
		Volume:   gain(e.volume),
		Silent:   e.volume <= 0,
	}
	e.ctrl = &beep.Ctrl{Streamer: e.vol, Paused: true}
	e.started = false

	log.Debugf("beep: %s loaded %s (%s)", e.id, local, format.SampleRate.D(stream.Len()))
	return nil
}

// Play starts or resumes the stream. Without a stream it only brings up the audio device.
func (e *beepElement) Play(context.Context) error {
	if err := e.engine.speaker(); err != nil {
		return fmt.Errorf("audio device: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctrl == nil {
		return nil
	}

	if !e.started {
		e.started = true
		ctrl, ended := e.ctrl, e.ended
		speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
			// Runs on the speaker goroutine with the speaker locked.
			go e.finished(ctrl, ended)
		})))
	}

	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (e *beepElement) finished(ctrl *beep.Ctrl, fn func()) {
	e.mu.Lock()
	current := e.ctrl == ctrl
	if current {
		e.started = false
		e.ctrl.Paused = true
		_ = e.stream.Seek(0)
	}
	e.mu.Unlock()

	if current && fn != nil {
		fn()
	}
}

func (e *beepElement) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctrl == nil || !e.started {
		return nil
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

func (e *beepElement) Seek(position time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stream == nil {
		return nil
	}

	n := util.Clamp(e.format.SampleRate.N(position), 0, e.stream.Len())
	if !e.started {
		return e.stream.Seek(n)
	}

	speaker.Lock()
	defer speaker.Unlock()
	return e.stream.Seek(n)
}

func (e *beepElement) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *beepElement) SetVolume(volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.volume = util.Clamp(volume, 0, 1)
	if e.vol == nil {
		return nil
	}

	if e.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	e.vol.Volume = gain(e.volume)
	e.vol.Silent = e.volume <= 0
	return nil
}

func (e *beepElement) Position() (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stream == nil {
		return 0, nil
	}
	if e.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return e.format.SampleRate.D(e.stream.Position()), nil
}

func (e *beepElement) Duration() (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stream == nil {
		return 0, errors.New("nothing loaded")
	}
	return e.format.SampleRate.D(e.stream.Len()), nil
}

func (e *beepElement) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ended = fn
}

func (e *beepElement) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detachLocked()
}

// detachLocked silences and closes the current stream. Callers hold e.mu.
func (e *beepElement) detachLocked() error {
	if e.stream == nil {
		return nil
	}

	if e.started {
		speaker.Lock()
		e.ctrl.Paused = true
		e.ctrl.Streamer = nil
		speaker.Unlock()
	}

	err := e.stream.Close()
	e.stream, e.ctrl, e.vol = nil, nil, nil
	e.started = false
	return err
}

// gain maps a linear volume in [0, 1] to the exponent effects.Volume expects, -40dB to 0dB.
func gain(volume float64) float64 {
	return -4 + 4*util.Clamp(volume, 0, 1)
}

// fetch returns a local path for source, downloading remote sources into the audio cache once.
func fetch(ctx context.Context, source string) (string, error) {
	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		if _, statErr := filesystem.API().Stat(source); statErr != nil {
			return "", statErr
		}
		return source, nil
	}

	local := filepath.Join(where.Audio(), util.SanitizeFilename(u.Host+u.Path))
	if ext := path.Ext(u.Path); ext != "" && filepath.Ext(local) != ext {
		local += ext
	}
	if exists, _ := filesystem.API().Exists(local); exists {
		return local, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", err
	}
	resp, err := network.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", source, resp.Status)
	}

	partial := local + ".part"
	f, err := filesystem.API().OpenFile(partial, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = filesystem.API().Remove(partial)
		return "", fmt.Errorf("download %s: %w", source, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if err := filesystem.API().Rename(partial, local); err != nil {
		return "", err
	}
	return local, nil
}
