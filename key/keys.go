// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount is the number of registered configuration fields.
const DefinedFieldsCount = 19

// Playback backend and timing.
const (
	PlayerBackend     = "player.backend"
	PlayerMpvPath     = "player.mpv_path"
	PlayerUnlock      = "player.unlock"
	PlayerLoadTimeout = "player.load_timeout"
	PlayerReplayDelay = "player.replay_delay"
	PlayerSettleDelay = "player.settle_delay_ms"
	PlayerReplayOnEnd = "player.replay_on_end"
)

// Qur'an data source - these keys select the reciter and the API used to resolve audio.
const (
	QuranReciter       = "quran.reciter"
	QuranAPIURL        = "quran.api_url"
	QuranCacheLifetime = "quran.cache_lifetime_hours"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Terminal User Interface (TUI) - these keys define the primary interactive environment's styling and logic.
const (
	TUIItemSpacing     = "tui.item_spacing"
	TUIShowTranslation = "tui.show_translation"
	TUIShowLatin       = "tui.show_latin"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
