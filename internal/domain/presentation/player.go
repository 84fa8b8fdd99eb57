package presentation

import (
	"errors"
	"sync"
	"time"
)

// FadeDelay is how long a slide stays blanked before the index moves.
const FadeDelay = 150 * time.Millisecond

// State is the player lifecycle.
type State string

const (
	StateIdle          State = "idle"
	StateShowing       State = "showing"
	StateTransitioning State = "transitioning"
)

// Direction of a pending transition.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// String returns the wire name of the direction.
func (d Direction) String() string {
	if d == Backward {
		return "previous"
	}
	return "next"
}

// ErrNoSlides is returned when opening a presentation without content.
var ErrNoSlides = errors.New("presentation needs at least one slide")

// Slide is one page of a presentation. Body is markdown.
type Slide struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Timer is the handle of a scheduled transition.
type Timer interface {
	Stop() bool
}

// ScheduleFunc runs f once after d. time.AfterFunc satisfies it.
type ScheduleFunc func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Player.
type Option func(*Player)

// WithSchedule replaces the timer source (tests drive transitions by hand).
func WithSchedule(fn ScheduleFunc) Option {
	return func(p *Player) { p.schedule = fn }
}

// WithDelay overrides FadeDelay.
func WithDelay(d time.Duration) Option {
	return func(p *Player) { p.delay = d }
}

// Player is the slideshow state machine: idle, showing(i), transitioning(i, dir).
// Navigation is circular. A navigation request that arrives while a transition
// is pending is dropped, so every accepted request moves the index by exactly one.
type Player struct {
	mu        sync.Mutex
	schedule  ScheduleFunc
	delay     time.Duration
	title     string
	slides    []Slide
	index     int
	state     State
	direction Direction
	pending   Timer
	gen       uint64
}

// NewPlayer creates an idle player.
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		schedule: afterFunc,
		delay:    FadeDelay,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open starts playback of a snapshot of slides at index 0.
// PRE: len(slides) > 0
// POST: state is showing(0); any previous presentation and pending transition are discarded
// INVARIANT: later changes to the caller's slice are not observed
func (p *Player) Open(title string, slides []Slide) error {
	if len(slides) == 0 {
		return ErrNoSlides
	}
	snapshot := append([]Slide(nil), slides...)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopPendingLocked()
	p.gen++
	p.title = title
	p.slides = snapshot
	p.index = 0
	p.state = StateShowing
	return nil
}

// Next requests a forward transition. Returns false when the request was dropped.
func (p *Player) Next() bool {
	return p.navigate(Forward)
}

// Previous requests a backward transition. Returns false when the request was dropped.
func (p *Player) Previous() bool {
	return p.navigate(Backward)
}

func (p *Player) navigate(dir Direction) bool {
	p.mu.Lock()
	if p.state != StateShowing {
		p.mu.Unlock()
		return false
	}
	p.state = StateTransitioning
	p.direction = dir
	p.gen++
	gen := p.gen
	delay := p.delay
	p.mu.Unlock()

	t := p.schedule(delay, func() { p.settle(gen) })

	p.mu.Lock()
	if p.gen == gen && p.state == StateTransitioning {
		p.pending = t
	}
	p.mu.Unlock()
	return true
}

// settle completes the transition scheduled under generation gen.
// Stale callbacks (after Close or a reopen) are ignored.
func (p *Player) settle(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen || p.state != StateTransitioning {
		return
	}
	n := len(p.slides)
	if p.direction == Forward {
		p.index = (p.index + 1) % n
	} else {
		p.index = (p.index - 1 + n) % n
	}
	p.state = StateShowing
	p.pending = nil
}

// Close returns to idle from any state and discards the slides.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopPendingLocked()
	p.gen++
	p.title = ""
	p.slides = nil
	p.index = 0
	p.state = StateIdle
}

func (p *Player) stopPendingLocked() {
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
}

// View is a read-only snapshot of the player.
type View struct {
	State     State  `json:"state"`
	Title     string `json:"title,omitempty"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Direction string `json:"direction,omitempty"`
	Slide     *Slide `json:"slide,omitempty"`
}

// View returns the current state. Slide is nil while idle and while a
// transition blanks the content.
func (p *Player) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := View{
		State: p.state,
		Title: p.title,
		Index: p.index,
		Total: len(p.slides),
	}
	switch p.state {
	case StateShowing:
		s := p.slides[p.index]
		v.Slide = &s
	case StateTransitioning:
		v.Direction = p.direction.String()
	}
	return v
}

// Command is a player action bound to a key.
type Command int

const (
	CommandNone Command = iota
	CommandPrevious
	CommandNext
	CommandClose
)

// CommandForKey maps browser key names onto player commands.
func CommandForKey(key string) Command {
	switch key {
	case "ArrowLeft":
		return CommandPrevious
	case "ArrowRight":
		return CommandNext
	case "Escape":
		return CommandClose
	}
	return CommandNone
}

// HandleKey applies a key press. Keys are ignored while idle.
// Returns true when the key changed or scheduled a change of state.
func (p *Player) HandleKey(key string) bool {
	p.mu.Lock()
	idle := p.state == StateIdle
	p.mu.Unlock()
	if idle {
		return false
	}
	switch CommandForKey(key) {
	case CommandPrevious:
		return p.Previous()
	case CommandNext:
		return p.Next()
	case CommandClose:
		p.Close()
		return true
	}
	return false
}
