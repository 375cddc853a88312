package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tilawah-cli/tilawah/log"
)

const (
	// DefaultLoadTimeout bounds the wait for a source to become ready to play.
	DefaultLoadTimeout = 10 * time.Second

	// DefaultReplayDelay is the pause between a natural end and the replay.
	DefaultReplayDelay = 3 * time.Second
)

// AdapterOptions tunes an Adapter. Zero values fall back to the defaults.
type AdapterOptions struct {
	Source      string
	Clock       Clock
	Shim        *UnlockShim
	LoadTimeout time.Duration
	ReplayDelay time.Duration
	ReplayOnEnd bool

	// OnChange is called after every state change, outside of any lock.
	OnChange func(Snapshot)
}

// Snapshot is a point-in-time view of an Adapter for the UI layer.
type Snapshot struct {
	ID            ID
	Source        string
	Status        Status
	Err           error
	ErrorMessage  string
	Unlocked      bool
	Holder        bool
	ReplayOnEnd   bool
	ReplayPending bool
	Position      time.Duration
	Duration      time.Duration
}

// Adapter wraps one Element and runs its load/playback/error state machine.
//
// Every step that follows a suspension point (unlock, load, play) re-checks the adapter's
// generation; if it was superseded, stopped or closed meanwhile, the element is paused and
// the step is abandoned.
type Adapter struct {
	id    ID
	coord *Coordinator
	el    Element
	shim  *UnlockShim
	clock Clock

	loadTimeout time.Duration
	replayDelay time.Duration
	onChange    func(Snapshot)

	mu          sync.Mutex
	source      string
	loaded      string
	status      Status
	err         error
	replayOnEnd bool
	replay      Timer
	gen         uint64
	closed      bool

	unsubscribe func()
	unregister  func()
}

// NewAdapter creates an adapter for id, registers it with c and subscribes it to holder changes.
func NewAdapter(c *Coordinator, id ID, el Element, options AdapterOptions) (*Adapter, error) {
	a := &Adapter{
		id:          id,
		coord:       c,
		el:          el,
		shim:        options.Shim,
		clock:       options.Clock,
		loadTimeout: options.LoadTimeout,
		replayDelay: options.ReplayDelay,
		onChange:    options.OnChange,
		source:      options.Source,
		replayOnEnd: options.ReplayOnEnd,
	}

	if a.clock == nil {
		a.clock = SystemClock
	}
	if a.loadTimeout <= 0 {
		a.loadTimeout = DefaultLoadTimeout
	}
	if a.replayDelay <= 0 {
		a.replayDelay = DefaultReplayDelay
	}

	unregister, err := c.Register(a)
	if err != nil {
		return nil, err
	}
	a.unregister = unregister
	a.unsubscribe = c.Subscribe(a.onHolderChanged)
	el.OnEnded(a.onEnded)

	return a, nil
}

// ID returns the adapter's identifier.
func (a *Adapter) ID() ID {
	return a.id
}

// Status returns the current state.
func (a *Adapter) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Snapshot returns the adapter state. Position and duration are best effort.
func (a *Adapter) Snapshot() Snapshot {
	a.mu.Lock()
	s := Snapshot{
		ID:            a.id,
		Source:        a.source,
		Status:        a.status,
		Err:           a.err,
		ErrorMessage:  Message(a.err),
		ReplayOnEnd:   a.replayOnEnd,
		ReplayPending: a.replay != nil,
	}
	loaded := a.loaded != "" && !a.closed
	a.mu.Unlock()

	s.Holder = a.coord.Holds(a.id)
	s.Unlocked = a.shim.Unlocked(a.el)
	if loaded {
		s.Position, _ = a.el.Position()
		s.Duration, _ = a.el.Duration()
	}
	return s
}

// SetReplayOnEnd enables or disables replaying the source after it ends naturally.
func (a *Adapter) SetReplayOnEnd(enabled bool) {
	a.mu.Lock()
	a.replayOnEnd = enabled
	if !enabled {
		a.cancelReplayLocked()
	}
	a.mu.Unlock()
	a.changed()
}

// Play starts playback, or keeps playing if this adapter is already audible.
func (a *Adapter) Play(ctx context.Context) error {
	return a.play(ctx)
}

// Toggle is the user's play button: it stops a playing or loading adapter and plays any other.
func (a *Adapter) Toggle(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.status != StatusPlaying && a.status != StatusLoading {
		a.mu.Unlock()
		return a.play(ctx)
	}

	a.gen++
	a.status = StatusPaused
	a.cancelReplayLocked()
	a.mu.Unlock()

	_ = a.el.Pause()
	_ = a.el.Seek(0)
	a.coord.Release(a.id)
	a.changed()
	log.Debugf("playback: %s stopped by user", a.id)
	a.coord.Publish(Event{ID: a.id, Kind: EventStopped})
	return nil
}

// SetSource switches the adapter to a new source, e.g. after the reciter changed.
// Position is never carried over. If resume is set and the adapter was audible,
// it restarts from zero on the new source.
func (a *Adapter) SetSource(ctx context.Context, source string, resume bool) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.source == source {
		a.mu.Unlock()
		return nil
	}

	active := a.status == StatusPlaying || a.status == StatusLoading
	a.source = source
	a.loaded = ""
	a.err = nil
	a.cancelReplayLocked()
	if active || a.status == StatusError || a.status == StatusReady {
		a.gen++
		a.status = StatusIdle
	}
	a.mu.Unlock()

	if active {
		_ = a.el.Pause()
		if !resume {
			a.coord.Release(a.id)
		}
	}
	a.changed()

	if active && resume {
		return a.play(ctx)
	}
	if active {
		a.coord.Publish(Event{ID: a.id, Kind: EventStopped})
	}
	return nil
}

// Close pauses the element, cancels timers and removes the adapter from its coordinator.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.gen++
	a.status = StatusIdle
	a.cancelReplayLocked()
	a.mu.Unlock()

	_ = a.el.Pause()
	a.unsubscribe()
	a.unregister()
	a.coord.Release(a.id)
	a.shim.Forget(a.el)
	return a.el.Close()
}

func (a *Adapter) play(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.status == StatusPlaying && a.coord.Holds(a.id) {
		a.mu.Unlock()
		return nil
	}

	a.cancelReplayLocked()
	a.gen++
	gen := a.gen
	source := a.source
	a.status = StatusLoading
	a.err = nil
	a.mu.Unlock()
	a.changed()

	if source == "" {
		return a.fail(gen, fmt.Errorf("%w for %s", ErrNoSource, a.id), false)
	}

	if !a.shim.EnsureUnlocked(ctx, a.el) {
		return a.fail(gen, ErrUnlockRequired, false)
	}
	if !a.current(gen) {
		return nil
	}

	a.coord.RequestPlay(a.id)

	if a.loadedSource() != source {
		if err := a.load(ctx, source); err != nil {
			if ctx.Err() != nil && !errors.Is(err, ErrLoadTimeout) {
				a.abandon(gen)
				return ctx.Err()
			}
			return a.fail(gen, err, true)
		}

		a.mu.Lock()
		if a.gen == gen && a.source == source {
			a.loaded = source
			a.status = StatusReady
		}
		a.mu.Unlock()
	}

	if !a.current(gen) {
		_ = a.el.Pause()
		return nil
	}

	if err := a.el.Play(ctx); err != nil {
		return a.fail(gen, fmt.Errorf("%w: %w", ErrPlaybackRejected, err), true)
	}

	a.mu.Lock()
	if a.gen != gen || a.closed || !a.coord.Holds(a.id) {
		a.mu.Unlock()
		_ = a.el.Pause()
		return nil
	}
	a.status = StatusPlaying
	a.mu.Unlock()

	a.changed()
	log.Debugf("playback: %s playing %s", a.id, source)
	return nil
}

// load waits for the element to become ready, bounded by the load timeout.
func (a *Adapter) load(ctx context.Context, source string) error {
	loadCtx, cancel := context.WithTimeout(ctx, a.loadTimeout)
	defer cancel()

	err := a.el.Load(loadCtx, source)
	if err == nil {
		return nil
	}

	if ctx.Err() == nil && errors.Is(loadCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrLoadTimeout, a.loadTimeout)
	}
	return fmt.Errorf("%w: %w", ErrLoadFailure, err)
}

// fail records err, releases the slot if asked and publishes the failure.
// Failures of superseded attempts are returned but otherwise ignored.
func (a *Adapter) fail(gen uint64, err error, release bool) error {
	a.mu.Lock()
	if a.gen != gen || a.closed {
		a.mu.Unlock()
		return err
	}
	a.status = StatusError
	a.err = err
	a.mu.Unlock()

	_ = a.el.Pause()
	if release {
		a.coord.Release(a.id)
	}

	log.Warnf("playback: %s: %v", a.id, err)
	a.changed()
	a.coord.Publish(Event{ID: a.id, Kind: EventFailed, Err: err})
	return err
}

// abandon handles a cancelled context: the attempt ends without an error state.
func (a *Adapter) abandon(gen uint64) {
	a.mu.Lock()
	if a.gen != gen || a.closed {
		a.mu.Unlock()
		return
	}
	a.gen++
	a.status = StatusIdle
	a.mu.Unlock()

	_ = a.el.Pause()
	a.coord.Release(a.id)
	a.changed()
}

func (a *Adapter) onHolderChanged(holder ID) {
	if holder == a.id {
		return
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}

	// Someone else started: a pending replay must not steal the slot back.
	if holder != None {
		a.cancelReplayLocked()
	}

	switch a.status {
	case StatusPlaying:
		a.status = StatusPaused
	case StatusLoading:
		if a.loaded == a.source && a.loaded != "" {
			a.status = StatusReady
		} else {
			a.status = StatusIdle
		}
	default:
		a.mu.Unlock()
		return
	}
	a.gen++
	a.mu.Unlock()

	// The coordinator already moved ownership; no Release here.
	_ = a.el.Pause()
	a.changed()
}

func (a *Adapter) onEnded() {
	a.mu.Lock()
	if a.closed || a.status != StatusPlaying {
		a.mu.Unlock()
		return
	}

	a.gen++
	gen := a.gen
	a.loaded = ""
	replay := a.replayOnEnd && !a.coord.ReplaySuppressed()
	if replay {
		a.status = StatusPaused
	} else {
		a.status = StatusIdle
	}
	a.mu.Unlock()

	a.coord.Release(a.id)

	if replay {
		a.mu.Lock()
		if a.gen == gen && !a.closed {
			a.cancelReplayLocked()
			a.replay = a.clock.AfterFunc(a.replayDelay, func() {
				a.fireReplay(gen)
			})
		}
		a.mu.Unlock()
	}

	a.changed()
	a.coord.Publish(Event{ID: a.id, Kind: EventEnded})
}

func (a *Adapter) fireReplay(gen uint64) {
	a.mu.Lock()
	if a.closed || a.gen != gen {
		a.mu.Unlock()
		return
	}
	a.replay = nil
	a.mu.Unlock()

	log.Debugf("playback: replaying %s", a.id)
	_ = a.play(context.Background())
}

// cancelReplayLocked stops a pending replay. Callers hold a.mu.
func (a *Adapter) cancelReplayLocked() {
	if a.replay != nil {
		a.replay.Stop()
		a.replay = nil
	}
}

func (a *Adapter) current(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen == gen && !a.closed
}

func (a *Adapter) loadedSource() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

func (a *Adapter) changed() {
	if a.onChange != nil {
		a.onChange(a.Snapshot())
	}
}
