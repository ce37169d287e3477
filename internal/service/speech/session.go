package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/myenglish-lookup/internal/config"
	"github.com/heartmarshall/myenglish-lookup/internal/observe"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("speech: session closed")

const subscriberBuffer = 16

// message is a loop input. epoch tags replies of asynchronous work; a reply
// from an earlier epoch is stale.
type message struct {
	ev     event
	epoch  uint64
	tagged bool

	acquired *acquireReply
}

type acquireReply struct {
	rec Recognizer
	err error
}

// Session drives one recognizer through the voice-input state machine. All
// state changes happen on the session loop goroutine.
type Session struct {
	log        *slog.Logger
	engine     Engine
	gate       PermissionGate
	metrics    *observe.Metrics
	opts       Options
	resetDelay time.Duration

	in     chan message
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu         sync.Mutex
	state      State
	subs       map[int]chan State
	nextSub    int
	closed     bool
	transcript func(string)

	// Loop-owned.
	epoch uint64
	rec   Recognizer
	timer *time.Timer
}

// NewSession starts the session loop. Close must be called to release it.
func NewSession(logger *slog.Logger, engine Engine, gate PermissionGate, metrics *observe.Metrics, cfg config.SpeechConfig) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		log:     logger.With("service", "speech_session"),
		engine:  engine,
		gate:    gate,
		metrics: metrics,
		opts: Options{
			Language:      cfg.Language,
			LanguageModel: LanguageModelFreeForm,
		},
		resetDelay: cfg.ResetDelay,
		in:         make(chan message),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		state:      idle,
		subs:       make(map[int]chan State),
	}
	go s.loop()
	return s
}

// OnTranscript sets the handler that receives recognized text. The handler
// runs on its own goroutine.
func (s *Session) OnTranscript(fn func(text string)) {
	s.mu.Lock()
	s.transcript = fn
	s.mu.Unlock()
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a stream of state changes starting with the current
// state, and a func that ends the subscription. A slow subscriber misses
// intermediate states. The stream is closed by cancel or Close.
func (s *Session) Subscribe() (<-chan State, func()) {
	ch := make(chan State, subscriberBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Start requests voice input. It is ignored unless the session is idle.
func (s *Session) Start(ctx context.Context) error {
	return s.send(ctx, message{ev: evStart{granted: s.gate.Granted()}})
}

// Stop abandons the current voice action and returns to idle.
func (s *Session) Stop(ctx context.Context) error {
	return s.send(ctx, message{ev: evStop{}})
}

// Close releases the recognizer, cancels pending work and closes every
// subscription. It is safe to call more than once.
func (s *Session) Close() {
	s.cancel()
	<-s.done
}

func (s *Session) send(ctx context.Context, m message) error {
	select {
	case s.in <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrClosed
	}
}

// post delivers an asynchronous reply. It gives up once the session closes.
func (s *Session) post(m message) bool {
	select {
	case s.in <- m:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case m := <-s.in:
			s.handle(m)
		case <-s.ctx.Done():
			s.shutdown()
			return
		}
	}
}

func (s *Session) handle(m message) {
	if m.tagged && m.epoch != s.epoch {
		if m.acquired != nil && m.acquired.rec != nil {
			s.closeRecognizer(m.acquired.rec)
		}
		return
	}

	if m.acquired != nil {
		s.onAcquired(m.acquired)
		return
	}

	s.apply(m.ev)
}

func (s *Session) onAcquired(r *acquireReply) {
	if r.err != nil {
		s.log.WarnContext(s.ctx, "open recognizer", slog.String("error", r.err.Error()))
		s.metrics.RecordSpeechSession(s.ctx, "open_failed")
		s.apply(evAcquireError{err: r.err})
		return
	}
	if s.rec != nil || s.State().Phase != PhaseListening {
		s.closeRecognizer(r.rec)
		return
	}

	s.rec = r.rec
	s.metrics.RecordSpeechSession(s.ctx, "acquired")
	s.metrics.ActiveRecognizers.Add(s.ctx, 1)
	go s.forward(r.rec, s.epoch)
}

func (s *Session) apply(ev event) {
	prev := s.State()
	next, effects := transition(prev, ev)
	if next == prev {
		return
	}

	if next.Phase == PhaseIdle {
		s.epoch++
	}
	s.publish(next)

	if prev.Phase != PhaseError && next.Phase == PhaseError {
		s.log.InfoContext(s.ctx, "speech failed",
			slog.String("message", next.Message),
			slog.Any("error", next.Err),
		)
	}

	for _, eff := range effects {
		s.run(eff)
	}
}

func (s *Session) run(eff effect) {
	switch eff.kind {
	case effAcquire:
		epoch := s.epoch
		go func() {
			rec, err := s.engine.Open(s.ctx, s.opts)
			m := message{epoch: epoch, tagged: true, acquired: &acquireReply{rec: rec, err: err}}
			if !s.post(m) && rec != nil {
				_ = rec.Close()
			}
		}()

	case effRelease:
		if s.rec != nil {
			s.closeRecognizer(s.rec)
			s.rec = nil
			s.metrics.ActiveRecognizers.Add(s.ctx, -1)
		}

	case effRequestPermission:
		epoch := s.epoch
		go func() {
			ok, err := s.gate.Request(s.ctx)
			s.post(message{ev: evPermission{granted: ok, err: err}, epoch: epoch, tagged: true})
		}()

	case effDeliver:
		s.metrics.RecordSpeechSession(s.ctx, "recognized")
		s.mu.Lock()
		fn := s.transcript
		s.mu.Unlock()
		if fn != nil {
			go fn(eff.text)
		}

	case effScheduleReset:
		s.stopTimer()
		epoch := s.epoch
		s.timer = time.AfterFunc(s.resetDelay, func() {
			s.post(message{ev: evReset{}, epoch: epoch, tagged: true})
		})

	case effCancelReset:
		s.stopTimer()
	}
}

// forward relays recognizer events into the loop until the recognizer is
// closed or the session ends.
func (s *Session) forward(rec Recognizer, epoch uint64) {
	for {
		select {
		case ev, ok := <-rec.Events():
			if !ok {
				return
			}
			if !s.post(message{ev: evRecognizer{ev: ev}, epoch: epoch, tagged: true}) {
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) publish(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
	for id, ch := range s.subs {
		select {
		case ch <- next:
		default:
			s.log.Warn("speech subscriber is slow, state dropped",
				slog.Int("subscriber", id),
				slog.String("phase", next.Phase.String()),
			)
		}
	}
}

func (s *Session) closeRecognizer(rec Recognizer) {
	if err := rec.Close(); err != nil {
		s.log.Warn("close recognizer", slog.String("error", err.Error()))
	}
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) shutdown() {
	s.stopTimer()
	if s.rec != nil {
		s.closeRecognizer(s.rec)
		s.rec = nil
		s.metrics.ActiveRecognizers.Add(context.Background(), -1)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.state = idle
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
