package playback

import "errors"

var (
	// ErrLoadTimeout is reported when the source was not ready to play within the load timeout.
	ErrLoadTimeout = errors.New("timed out loading audio")

	// ErrLoadFailure is reported when the source could not be fetched or decoded.
	ErrLoadFailure = errors.New("failed to load audio")

	// ErrPlaybackRejected is reported when the backend refused to start playback.
	ErrPlaybackRejected = errors.New("playback was rejected")

	// ErrUnlockRequired is reported when the platform needs a user gesture before audio can play.
	ErrUnlockRequired = errors.New("audio is locked by the platform")

	// ErrNoSource is reported when no playable source exists for an item.
	ErrNoSource = errors.New("no audio source")

	// ErrEmptyPlaylist is returned by Driver.Start for an empty playlist.
	ErrEmptyPlaylist = errors.New("playlist is empty")

	// ErrDuplicateID is returned when two handles are registered under the same ID.
	ErrDuplicateID = errors.New("duplicate playback id")

	// ErrClosed is returned by operations on a closed Adapter.
	ErrClosed = errors.New("adapter is closed")
)

// Message returns the user-facing text for a playback error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoadTimeout), errors.Is(err, ErrLoadFailure):
		return "Could not load the recitation. Check your connection and try again."
	case errors.Is(err, ErrPlaybackRejected):
		return "The recitation could not be played."
	case errors.Is(err, ErrUnlockRequired):
		return "Audio is not enabled yet. Press play again to start the recitation."
	case errors.Is(err, ErrNoSource):
		return "No recitation is available for this selection."
	default:
		return err.Error()
	}
}
