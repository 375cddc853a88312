package playback

import "time"

// Timer is a pending scheduled action.
type Timer interface {
	// Stop prevents the action from running. It reports whether the call stopped it.
	Stop() bool
}

// Clock schedules delayed actions. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock schedules actions with the time package.
var SystemClock Clock = systemClock{}
