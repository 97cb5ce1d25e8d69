package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/readalong/tts"
)

// burstWords bounds how many words a single wait can cover.
const burstWords = 64

// Utterance is one sentence handed to a Sink, with the sentences after it
// so the sink can synthesize ahead.
type Utterance struct {
	Index    int
	Detail   tts.Detail
	Prefetch []tts.Detail
}

// Sink speaks utterances. Speak blocks until the utterance is done or ctx
// is cancelled.
type Sink interface {
	Speak(ctx context.Context, u Utterance) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, u Utterance) error

// Speak calls f.
func (f SinkFunc) Speak(ctx context.Context, u Utterance) error {
	return f(ctx, u)
}

// Interrupted is returned by a Sink that stopped partway through an
// utterance. Offset is the byte offset into the utterance's text.
type Interrupted struct {
	Offset int
}

func (e *Interrupted) Error() string {
	return fmt.Sprintf("speech interrupted at offset %d", e.Offset)
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithLimiter replaces the words-per-minute limiter.
func WithLimiter(l *rate.Limiter) PlayerOption {
	return func(p *Player) { p.limiter = l }
}

// WithPlayerLogger sets the logger.
func WithPlayerLogger(l *log.Logger) PlayerOption {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// Player reads a session aloud through a Sink, pacing sentences at the
// configured words per minute.
type Player struct {
	session *Session
	sink    Sink
	limiter *rate.Limiter
	logger  *log.Logger

	mu    sync.Mutex
	state *tts.StateMachine
}

// NewPlayer creates a paused player for s.
func NewPlayer(s *Session, sink Sink, opts ...PlayerOption) *Player {
	wpm := s.Config().WordsPerMinute
	if wpm <= 0 {
		wpm = tts.DefaultConfig().WordsPerMinute
	}
	p := &Player{
		session: s,
		sink:    sink,
		limiter: rate.NewLimiter(rate.Limit(float64(wpm)/60), burstWords),
		logger:  s.logger,
		state:   tts.NewStateMachine(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.state.OnEnter(tts.StateFinished, func() {
		p.logger.Debug("Playback finished")
	})
	// Start with an empty bucket so the first sentences are paced too.
	p.limiter.AllowN(time.Now(), p.limiter.Burst())
	return p
}

// State returns the player's state and position.
func (p *Player) State() tts.State {
	p.mu.Lock()
	current := p.state.Current()
	p.mu.Unlock()
	return p.session.State(current)
}

// Play speaks from the current sentence until the document ends, the sink
// is interrupted or ctx is cancelled. Cancellation and interruption pause
// the player and return nil; the next Play resumes where speech stopped.
func (p *Player) Play(ctx context.Context) error {
	restart := p.transition(tts.StatePlaying) == tts.StateFinished

	var (
		text string
		ok   bool
	)
	if restart {
		text, ok = p.session.Start()
	} else {
		text, ok = p.session.Resume()
	}

	lookahead := p.session.Config().Lookahead
	for ok {
		d, _ := p.session.CurrentDetail()
		d.Text = text
		u := Utterance{
			Index:    p.session.State(tts.StatePlaying).Sentence,
			Detail:   d,
			Prefetch: p.session.CollectDetails(lookahead, tts.CollectOptions{Offset: tts.DefaultOffset}),
		}

		if err := p.sink.Speak(ctx, u); err != nil {
			var in *Interrupted
			switch {
			case errors.As(err, &in):
				p.session.MarkResume(in.Offset)
				p.transition(tts.StatePaused)
				p.logger.Debug("Speech interrupted", "sentence", u.Index, "offset", in.Offset)
				return nil
			case ctx.Err() != nil:
				p.transition(tts.StatePaused)
				return nil
			}
			p.transition(tts.StatePaused)
			return tts.NewError(err, "player", "speak").WithContext("sentence", u.Index)
		}

		if err := p.limiter.WaitN(ctx, min(wordCount(text), p.limiter.Burst())); err != nil {
			p.transition(tts.StatePaused)
			if ctx.Err() != nil {
				// The sentence was spoken in full; resume after it.
				if _, ok := p.session.Next(false); !ok {
					p.transition(tts.StateFinished)
				}
				return nil
			}
			return fmt.Errorf("unable to pace playback: %w", err)
		}

		text, ok = p.session.Next(false)
	}

	p.transition(tts.StateFinished)
	return nil
}

// transition moves the state machine and returns the state it left.
func (p *Player) transition(to tts.StateType) tts.StateType {
	p.mu.Lock()
	defer p.mu.Unlock()
	from := p.state.Current()
	if !p.state.Transition(to) {
		p.logger.Debug("Ignored state change", "from", from, "to", to)
	}
	return from
}

func wordCount(text string) int {
	return max(len(strings.Fields(text)), 1)
}
