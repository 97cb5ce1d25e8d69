package ui

import "github.com/dgnsrekt/readalong/tts"

// Config contains TUI-specific configuration.
type Config struct {
	HomeDir     string `env:"HOME"`
	EnableMouse bool

	// Document being read
	Path string

	// Restore the saved position on start
	FromBookmark bool

	// Narration settings, filled in from the config file
	TTS tts.Config

	// Maximum width of the reading column; 0 follows the terminal
	MaxWidth uint

	// For debugging the UI
	AltScreen     bool `env:"READALONG_ALT_SCREEN"     envDefault:"true"`
	WatchDocument bool `env:"READALONG_WATCH_DOCUMENT" envDefault:"true"`
}
