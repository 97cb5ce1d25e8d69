// Package main provides the entry point for the readalong CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/muesli/gitcha"
	gap "github.com/muesli/go-app-paths"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/readalong/internal/bookmark"
	"github.com/dgnsrekt/readalong/internal/dom"
	"github.com/dgnsrekt/readalong/internal/session"
	"github.com/dgnsrekt/readalong/tts"
	"github.com/dgnsrekt/readalong/ui"
	"github.com/dgnsrekt/readalong/utils"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	readmeNames   = []string{"README.md", "README", "Readme.md", "Readme", "readme.md", "readme"}
	documentGlobs = []string{"*.md", "*.mdown", "*.mkdn", "*.mkd", "*.markdown", "*.html", "*.htm", "*.xhtml"}

	configFile   string
	tui          bool
	width        uint
	fromBookmark bool
	showStats    bool
	play         bool
	showIDs      bool
	mouse        bool
	ttsConfig    tts.Config

	rootCmd = &cobra.Command{
		Use:   "readalong [FILE|DIR]",
		Short: "Read documents sentence by sentence",
		Long: paragraph(
			fmt.Sprintf("\nRead Markdown and HTML documents %s, with a location for every sentence.", keyword("sentence by sentence")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	tui = viper.GetBool("tui")

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	var err error
	ttsConfig, err = tts.LoadConfigFromViper()
	if err != nil {
		return err //nolint:wrapcheck
	}

	if play && tui {
		return errors.New("cannot use both play and tui")
	}
	if showStats && (play || tui) {
		return errors.New("--stats cannot be combined with play or tui")
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func sessionOptions() []session.Option {
	return []session.Option{
		session.WithConfig(ttsConfig),
		session.WithLogger(log.Default()),
	}
}

func execute(cmd *cobra.Command, args []string) error {
	// if stdin is a pipe then use stdin for input. note that you can also
	// explicitly use a - to read from stdin.
	pipe, err := stdinIsPipe()
	if err != nil {
		return err
	}
	if pipe || (len(args) == 1 && args[0] == "-") {
		s, err := sessionFromReader(os.Stdin)
		if err != nil {
			return err
		}
		return executeSession(cmd, s, nil, os.Stdout)
	}

	arg := "."
	if len(args) == 1 {
		arg = args[0]
	}
	path, err := resolveDocument(arg)
	if err != nil {
		return err
	}

	s, err := session.Open(path, sessionOptions()...)
	if err != nil {
		return err //nolint:wrapcheck
	}
	store, err := openBookmarks()
	if err != nil {
		return err
	}
	return executeSession(cmd, s, store, os.Stdout)
}

// sessionFromReader reads Markdown from r. Such sessions have no path, so
// they are never bookmarked or watched.
func sessionFromReader(r io.Reader) (*session.Session, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read from reader: %w", err)
	}
	doc, err := dom.ParseMarkdown(utils.RemoveFrontmatter(b))
	if err != nil {
		return nil, fmt.Errorf("unable to parse markdown: %w", err)
	}
	return session.New(doc, "", sessionOptions()...), nil
}

// resolveDocument turns arg into a readable file. For a directory the
// README is used, or the only document in it.
func resolveDocument(arg string) (string, error) {
	arg = utils.ExpandPath(arg)
	st, err := os.Stat(arg)
	if err != nil {
		return "", fmt.Errorf("unable to open file: %w", err)
	}
	if !st.IsDir() {
		return arg, nil
	}

	dir, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("unable to get absolute path: %w", err)
	}
	for _, name := range readmeNames {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p, nil
		}
	}

	ch, err := gitcha.FindFilesExcept(dir, documentGlobs, nil)
	if err != nil {
		return "", fmt.Errorf("unable to search %s: %w", dir, err)
	}
	var found []string
	for res := range ch {
		found = append(found, res.Path)
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("no document found in %s", dir)
	case 1:
		return found[0], nil
	default:
		rel := make([]string, len(found))
		for i, p := range found {
			rel[i], _ = filepath.Rel(dir, p)
		}
		return "", fmt.Errorf("%d documents found in %s, pick one: %s", len(found), dir, strings.Join(rel, ", "))
	}
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func openBookmarks() (*bookmark.Store, error) {
	if !ttsConfig.Bookmarks.Enabled {
		return nil, nil
	}
	path := ttsConfig.Bookmarks.Path
	if path != "" {
		path = utils.ExpandPath(path)
	}
	store, err := bookmark.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load bookmarks: %w", err)
	}
	return store, nil
}

func executeSession(cmd *cobra.Command, s *session.Session, store *bookmark.Store, w io.Writer) error {
	if s.Path == "" {
		store = nil
	}

	if fromBookmark {
		if store == nil {
			return errors.New("bookmarks are not available for this document")
		}
		if _, err := s.RestoreBookmark(store); err != nil {
			return fmt.Errorf("unable to restore bookmark: %w", err)
		}
	}

	switch {
	case showStats:
		return printStats(s, store, w)
	case play:
		return runPlayer(s, store, w)
	case tui || cmd.Flags().Changed("tui"):
		return runTUI(s, store)
	default:
		return printSentences(s, w, !fromBookmark)
	}
}

// printSentences writes every sentence, wrapped, followed by its location.
func printSentences(s *session.Session, w io.Writer, fromStart bool) error {
	out := termenv.NewOutput(w)

	if fromStart {
		if _, ok := s.Start(); !ok {
			return tts.ErrEmptyDocument
		}
	}
	d, ok := s.CurrentDetail()
	for ok {
		text := wordwrap.String(d.Text, int(width)) //nolint:gosec
		line := text + "\n"
		if showIDs && d.LocationID != "" {
			line += indent.String(out.String(string(d.LocationID)).Faint().String(), 2) + "\n"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
		if _, ok = s.Next(false); ok {
			d, ok = s.CurrentDetail()
		}
	}
	return nil
}

type documentStats struct {
	sentences int
	words     int
	chars     int
}

func collectStats(s *session.Session) documentStats {
	var st documentStats
	text, ok := s.Start()
	for ok {
		st.sentences++
		st.words += len(strings.Fields(text))
		st.chars += len([]rune(text))
		text, ok = s.Next(false)
	}
	return st
}

func printStats(s *session.Session, store *bookmark.Store, w io.Writer) error {
	st := collectStats(s)
	reading := time.Duration(float64(st.words) / float64(ttsConfig.WordsPerMinute) * float64(time.Minute))

	var b strings.Builder
	if s.Path != "" {
		fmt.Fprintf(&b, "Document:     %s\n", s.Path)
		if info, err := os.Stat(s.Path); err == nil {
			fmt.Fprintf(&b, "Size:         %s\n", humanize.Bytes(uint64(info.Size()))) //nolint:gosec
		}
	}
	fmt.Fprintf(&b, "Sentences:    %s\n", humanize.Comma(int64(st.sentences)))
	fmt.Fprintf(&b, "Words:        %s\n", humanize.Comma(int64(st.words)))
	fmt.Fprintf(&b, "Characters:   %s\n", humanize.Comma(int64(st.chars)))
	fmt.Fprintf(&b, "Reading time: %s at %d wpm\n", reading.Round(time.Second), ttsConfig.WordsPerMinute)

	if store != nil {
		if bm, err := store.Get(s.Path); err == nil {
			fmt.Fprintf(&b, "Bookmark:     sentence %s, %s (%q)\n",
				humanize.Comma(int64(bm.Sentence+1)), humanize.Time(bm.Updated), bm.Preview)
		}
	}

	if _, err := fmt.Fprint(w, b.String()); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}
	return nil
}

// runPlayer prints sentences at reading pace until the document ends or
// the user interrupts.
func runPlayer(s *session.Session, store *bookmark.Store, w io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sink := session.SinkFunc(func(_ context.Context, u session.Utterance) error {
		_, err := fmt.Fprintln(w, wordwrap.String(u.Detail.Text, int(width))) //nolint:gosec
		return err //nolint:wrapcheck
	})
	player := session.NewPlayer(s, sink, session.WithPlayerLogger(log.Default()))
	if err := player.Play(ctx); err != nil {
		return fmt.Errorf("unable to play: %w", err)
	}

	if store != nil {
		if err := s.SaveBookmark(store); err != nil {
			log.Error("unable to save bookmark", "path", s.Path, "error", err)
		}
	}
	return nil
}

func runTUI(s *session.Session, store *bookmark.Store) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Path = s.Path
	cfg.FromBookmark = fromBookmark
	cfg.TTS = ttsConfig
	cfg.MaxWidth = width
	cfg.EnableMouse = mouse

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, s, store, sessionOptions()...).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().Bool("debug", false, "write debug logs")
	rootCmd.Flags().BoolVarP(&tui, "tui", "t", false, "read in the interactive reader")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to detect)")
	rootCmd.Flags().BoolVarP(&fromBookmark, "from-bookmark", "b", false, "start at the saved bookmark")
	rootCmd.Flags().BoolVar(&showStats, "stats", false, "print sentence and word counts")
	rootCmd.Flags().BoolVar(&play, "play", false, "print sentences at reading pace")
	rootCmd.Flags().BoolVar(&showIDs, "ids", true, "print the location of each sentence")
	rootCmd.Flags().Bool("autoplay", false, "start the reader playing (TUI-mode only)")
	rootCmd.Flags().Int("wpm", 0, "reading pace in words per minute")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("tui", rootCmd.Flags().Lookup("tui"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("tts.autoplay", rootCmd.Flags().Lookup("autoplay"))
	_ = viper.BindPFlag("tts.words_per_minute", rootCmd.Flags().Lookup("wpm"))

	viper.SetDefault("width", 0)
	tts.SetDefaults()

	rootCmd.AddCommand(configCmd, manCmd, bookmarksCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "readalong")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "readalong")}, dirs...)
	}

	if c := os.Getenv("READALONG_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("readalong")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("readalong")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "readalong.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
