package tts

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads narration configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	return LoadConfig(viper.GetViper())
}

// LoadConfig loads narration configuration from v.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	// Prefetch settings
	if v.IsSet("tts.lookahead") {
		cfg.Lookahead = v.GetInt("tts.lookahead")
	}

	// Playback settings
	if v.IsSet("tts.autoplay") {
		cfg.AutoPlay = v.GetBool("tts.autoplay")
	}
	if v.IsSet("tts.words_per_minute") {
		cfg.WordsPerMinute = v.GetInt("tts.words_per_minute")
	}

	// Visual settings
	if v.IsSet("tts.highlight_enabled") {
		cfg.HighlightEnabled = v.GetBool("tts.highlight_enabled")
	}
	if v.IsSet("tts.highlight_color") {
		cfg.HighlightColor = v.GetString("tts.highlight_color")
	}
	if v.IsSet("tts.wrap_width") {
		cfg.WrapWidth = v.GetInt("tts.wrap_width")
	}

	// Bookmarks
	if v.IsSet("tts.bookmarks.enabled") {
		cfg.Bookmarks.Enabled = v.GetBool("tts.bookmarks.enabled")
	}
	if v.IsSet("tts.bookmarks.path") {
		cfg.Bookmarks.Path = v.GetString("tts.bookmarks.path")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid TTS configuration: %w", err)
	}

	return cfg, nil
}

// SetDefaults sets default values in Viper for narration configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("tts.lookahead", defaults.Lookahead)

	viper.SetDefault("tts.autoplay", defaults.AutoPlay)
	viper.SetDefault("tts.words_per_minute", defaults.WordsPerMinute)

	viper.SetDefault("tts.highlight_enabled", defaults.HighlightEnabled)
	viper.SetDefault("tts.highlight_color", defaults.HighlightColor)
	viper.SetDefault("tts.wrap_width", defaults.WrapWidth)

	viper.SetDefault("tts.bookmarks.enabled", defaults.Bookmarks.Enabled)
	viper.SetDefault("tts.bookmarks.path", defaults.Bookmarks.Path)
}
