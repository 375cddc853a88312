package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tilawah-cli/tilawah/log"
	"github.com/tilawah-cli/tilawah/playback"
)

// mpvElement is one playback ID's view of the shared mpv process.
// While it does not own the process it remembers its source, position and volume.
type mpvElement struct {
	engine *MPV
	id     playback.ID

	mu       sync.Mutex
	source   string
	position time.Duration
	duration time.Duration
	volume   float64
	ended    func()
}

func (e *mpvElement) Load(ctx context.Context, source string) error {
	target, err := sanitizeMediaTarget(source)
	if err != nil {
		return err
	}

	if err := e.engine.start(ctx); err != nil {
		return err
	}

	w := e.engine.claim(e)
	if err := e.engine.set("pause", true); err != nil {
		e.engine.abandon(w)
		return err
	}
	if _, err := e.engine.sendCommand("loadfile", target, "replace"); err != nil {
		e.engine.abandon(w)
		return err
	}

	select {
	case err := <-w.done:
		if err != nil {
			e.engine.abandon(w)
			return err
		}
	case <-ctx.Done():
		e.engine.abandon(w)
		_, _ = e.engine.sendCommand("stop")
		return ctx.Err()
	}

	e.mu.Lock()
	e.source = source
	e.position = 0
	volume := e.volume
	e.mu.Unlock()

	_ = e.engine.set("volume", volume*100)
	if d, err := e.engine.float("duration"); err == nil {
		e.mu.Lock()
		e.duration = time.Duration(d * float64(time.Second))
		e.mu.Unlock()
	}

	log.Debugf("mpv: %s loaded %s", e.id, source)
	return nil
}

// Play resumes the element, reloading its source at the saved position if another element took the process.
// Without a source there is nothing to unlock or start, so it succeeds.
func (e *mpvElement) Play(ctx context.Context) error {
	e.mu.Lock()
	source, position, volume := e.source, e.position, e.volume
	e.mu.Unlock()

	if source == "" {
		return nil
	}

	if !e.engine.owns(e) {
		if err := e.Load(ctx, source); err != nil {
			return err
		}
		if position > 0 {
			if err := e.Seek(position); err != nil {
				return err
			}
		}
	}

	if err := e.engine.set("volume", volume*100); err != nil {
		return err
	}
	return e.engine.set("pause", false)
}

func (e *mpvElement) Pause() error {
	if !e.engine.owns(e) {
		return nil
	}

	if pos, err := e.engine.float("time-pos"); err == nil {
		e.mu.Lock()
		e.position = time.Duration(pos * float64(time.Second))
		e.mu.Unlock()
	}
	return e.engine.set("pause", true)
}

func (e *mpvElement) Seek(position time.Duration) error {
	e.mu.Lock()
	e.position = position
	e.mu.Unlock()

	if !e.engine.owns(e) {
		return nil
	}
	_, err := e.engine.sendCommand("seek", position.Seconds(), "absolute")
	return err
}

func (e *mpvElement) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *mpvElement) SetVolume(volume float64) error {
	e.mu.Lock()
	e.volume = volume
	e.mu.Unlock()

	if !e.engine.owns(e) {
		return nil
	}
	return e.engine.set("volume", volume*100)
}

func (e *mpvElement) Position() (time.Duration, error) {
	if e.engine.owns(e) {
		if pos, err := e.engine.float("time-pos"); err == nil {
			return time.Duration(pos * float64(time.Second)), nil
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position, nil
}

func (e *mpvElement) Duration() (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.duration == 0 {
		return 0, errors.New("duration unknown")
	}
	return e.duration, nil
}

func (e *mpvElement) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ended = fn
}

// finished runs when mpv reached the end of this element's file.
func (e *mpvElement) finished() {
	e.mu.Lock()
	e.position = 0
	fn := e.ended
	e.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (e *mpvElement) Close() error {
	if e.engine.release(e) {
		_, _ = e.engine.sendCommand("stop")
	}
	return nil
}
