package playback

import (
	"context"
	"strings"
	"sync"

	"github.com/tilawah-cli/tilawah/constant"
	"github.com/tilawah-cli/tilawah/log"
)

// UnlockMode selects when the unlock cycle runs.
type UnlockMode string

const (
	UnlockAuto   UnlockMode = "auto"
	UnlockAlways UnlockMode = "always"
	UnlockNever  UnlockMode = "never"
)

// UnlockModes lists the accepted modes.
func UnlockModes() []string {
	return []string{string(UnlockAuto), string(UnlockAlways), string(UnlockNever)}
}

// UnlockShim performs a silent play/pause cycle on an element before its first real playback,
// on platforms whose audio output is not reliable until that has happened.
// All platform branching lives here; adapters only call EnsureUnlocked.
type UnlockShim struct {
	required bool

	mu       sync.Mutex
	unlocked map[Element]struct{}
}

// NewUnlockShim resolves the platform policy once. In auto mode the cycle is required on darwin and ios.
func NewUnlockShim(mode UnlockMode, goos string) *UnlockShim {
	var required bool
	switch UnlockMode(strings.ToLower(string(mode))) {
	case UnlockAlways:
		required = true
	case UnlockNever:
		required = false
	default:
		required = goos == constant.Darwin || goos == constant.IOS
	}

	return &UnlockShim{
		required: required,
		unlocked: make(map[Element]struct{}),
	}
}

// Required reports whether this platform needs the unlock cycle.
func (s *UnlockShim) Required() bool {
	return s != nil && s.required
}

// Unlocked reports whether el has already been unlocked.
func (s *UnlockShim) Unlocked(el Element) bool {
	if s == nil {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.unlocked[el]
	return ok
}

// EnsureUnlocked unlocks el once. Repeated calls after success are no-ops.
// It never panics; false means the caller should ask the user to try again.
func (s *UnlockShim) EnsureUnlocked(ctx context.Context, el Element) (ok bool) {
	if s == nil || s.Unlocked(el) {
		return true
	}

	if s.required {
		if !s.cycle(ctx, el) {
			return false
		}
	}

	s.mu.Lock()
	s.unlocked[el] = struct{}{}
	s.mu.Unlock()
	return true
}

// Forget drops el from the unlocked set when its adapter is destroyed.
func (s *UnlockShim) Forget(el Element) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.unlocked, el)
}

// cycle mutes el, plays it, immediately pauses and rewinds it, then restores the volume.
func (s *UnlockShim) cycle(ctx context.Context, el Element) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("unlock: recovered from %v", r)
			ok = false
		}
	}()

	volume := el.Volume()
	if err := el.SetVolume(0); err != nil {
		log.Warnf("unlock: mute: %v", err)
		return false
	}
	defer func() {
		if err := el.SetVolume(volume); err != nil {
			log.Warnf("unlock: restore volume: %v", err)
		}
	}()

	if err := el.Play(ctx); err != nil {
		log.Warnf("unlock: play: %v", err)
		return false
	}
	_ = el.Pause()
	_ = el.Seek(0)

	return true
}
