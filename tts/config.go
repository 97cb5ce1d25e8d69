package tts

import (
	"fmt"
	"strings"
	"time"
)

// Config contains all narration configuration options.
type Config struct {
	// Prefetch settings
	Lookahead int `yaml:"lookahead" env:"READALONG_TTS_LOOKAHEAD" envDefault:"3"`

	// Playback settings
	AutoPlay       bool `yaml:"autoplay" env:"READALONG_TTS_AUTOPLAY" envDefault:"false"`
	WordsPerMinute int  `yaml:"words_per_minute" env:"READALONG_TTS_WORDS_PER_MINUTE" envDefault:"180"`

	// Visual settings
	HighlightEnabled bool   `yaml:"highlight_enabled" env:"READALONG_TTS_HIGHLIGHT_ENABLED" envDefault:"true"`
	HighlightColor   string `yaml:"highlight_color" env:"READALONG_TTS_HIGHLIGHT_COLOR" envDefault:"yellow"`
	WrapWidth        int    `yaml:"wrap_width" env:"READALONG_TTS_WRAP_WIDTH" envDefault:"0"`

	// Bookmarks
	Bookmarks BookmarkConfig `yaml:"bookmarks"`
}

// BookmarkConfig controls where reading positions are saved.
type BookmarkConfig struct {
	Enabled bool   `yaml:"enabled" env:"READALONG_BOOKMARKS_ENABLED" envDefault:"true"`
	Path    string `yaml:"path" env:"READALONG_BOOKMARKS_PATH"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Lookahead: 3,

		AutoPlay:       false,
		WordsPerMinute: 180,

		HighlightEnabled: true,
		HighlightColor:   "yellow",
		WrapWidth:        0,

		Bookmarks: BookmarkConfig{
			Enabled: true,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Lookahead < 1 || c.Lookahead > 20 {
		return fmt.Errorf("%w: lookahead must be between 1 and 20, got %d", ErrInvalidConfig, c.Lookahead)
	}

	if c.WordsPerMinute < 50 || c.WordsPerMinute > 500 {
		return fmt.Errorf("%w: words_per_minute must be between 50 and 500, got %d", ErrInvalidConfig, c.WordsPerMinute)
	}

	if c.WrapWidth < 0 {
		return fmt.Errorf("%w: wrap_width cannot be negative, got %d", ErrInvalidConfig, c.WrapWidth)
	}

	validColors := []string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white", "none"}
	colorValid := false
	for _, color := range validColors {
		if strings.EqualFold(c.HighlightColor, color) {
			colorValid = true
			c.HighlightColor = strings.ToLower(c.HighlightColor)
			break
		}
	}
	if !colorValid {
		return fmt.Errorf("%w: invalid highlight color '%s': must be one of %v", ErrInvalidConfig, c.HighlightColor, validColors)
	}

	return nil
}

// UtteranceDelay estimates how long speaking text takes at the configured
// words per minute.
func (c *Config) UtteranceDelay(text string) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 {
		words = 1
	}
	wpm := c.WordsPerMinute
	if wpm <= 0 {
		wpm = DefaultConfig().WordsPerMinute
	}
	seconds := float64(words) * 60.0 / float64(wpm)
	return time.Duration(seconds * float64(time.Second))
}
