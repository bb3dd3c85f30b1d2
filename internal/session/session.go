package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avelichko/quizduel-client/internal/conn"
	"github.com/avelichko/quizduel-client/internal/engine"
	"github.com/avelichko/quizduel-client/internal/protocol"
)

// idleReturnDelay is how long the result screen stays up before the
// session drops back to the lobby.
const idleReturnDelay = 10 * time.Second

const sendTimeout = 5 * time.Second

type Msg interface{ isSessionMsg() }

// User intents. Each is guarded against the current phase before
// anything goes out on the wire; an intent outside its legal phase is
// silently dropped.
type FindMatch struct {
	TopicID       *int
	TaskCount     int
	MatchDuration int
}

type CreateRoom struct {
	TopicID       *int
	TaskCount     int
	MatchDuration int
}

type JoinRoom struct{ Code string }

type CancelSearch struct{}

type LeaveGame struct{}

type SubmitAnswer struct{ Answer string }

// Transport messages.
type FromServer struct{ Event protocol.Event }

type ConnClosed struct {
	Code   int
	Reason string
	Lost   bool
}

// Infrastructure messages.
type Bind struct{ Sender Sender }

type Subscribe struct {
	ID     string
	Outbox chan Snapshot
}

type Unsubscribe struct{ ID string }

type GetView struct{ Reply chan View }

type Shutdown struct{}

type returnToIdle struct{ gen int }

func (FindMatch) isSessionMsg()    {}
func (CreateRoom) isSessionMsg()   {}
func (JoinRoom) isSessionMsg()     {}
func (CancelSearch) isSessionMsg() {}
func (LeaveGame) isSessionMsg()    {}
func (SubmitAnswer) isSessionMsg() {}
func (FromServer) isSessionMsg()   {}
func (ConnClosed) isSessionMsg()   {}
func (Bind) isSessionMsg()         {}
func (Subscribe) isSessionMsg()    {}
func (Unsubscribe) isSessionMsg()  {}
func (GetView) isSessionMsg()      {}
func (Shutdown) isSessionMsg()     {}
func (returnToIdle) isSessionMsg() {}

// Sender is the outbound half of the connection, satisfied by
// *conn.Conn.
type Sender interface {
	Send(ctx context.Context, cmd protocol.Command) error
}

// Snapshot is what subscribers see after every dispatch.
type Snapshot struct {
	Version     int
	State       engine.State
	Pending     bool
	Outcome     engine.Outcome
	RatingDelta int
	ConnLost    bool
	ConnError   string
}

// View is test-only introspection, answered on the loop so reads never
// race dispatch.
type View struct {
	Version        int
	NumSubscribers int
	State          engine.State
	Pending        bool
}

// Session owns one duel: every inbound server event and every local
// command funnels through a single goroutine, so no two handlers ever
// run concurrently and the state is mutated from exactly one place.
type Session struct {
	inbox         chan Msg
	state         engine.State
	pending       bool
	localPlayerID int
	version       int
	subs          map[string]chan Snapshot
	sender        Sender
	log           *zap.Logger
	idleDelay     time.Duration
	idleGen       int
	outcome       engine.Outcome
	ratingDelta   int
	connLost      bool
	connErr       string
	ctx           context.Context
	cancel        context.CancelFunc
}

func New(parent context.Context, localPlayerID int, log *zap.Logger) *Session {
	return newSession(parent, localPlayerID, log, idleReturnDelay)
}

func newSession(parent context.Context, localPlayerID int, log *zap.Logger, idleDelay time.Duration) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		inbox:         make(chan Msg, 64),
		state:         engine.NewState(),
		localPlayerID: localPlayerID,
		subs:          make(map[string]chan Snapshot),
		log:           log,
		idleDelay:     idleDelay,
		ctx:           ctx,
		cancel:        cancel,
	}
	go s.loop()
	return s
}

// Inbox exposes the dispatch channel to the transport, the UI and
// tests.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// OnMessage implements conn.Handler. Runs on the reader goroutine;
// decode here, dispatch on the loop.
func (s *Session) OnMessage(data []byte) {
	ev, err := protocol.DecodeEvent(data)
	if err != nil {
		s.log.Warn("dropping malformed frame", zap.Error(err))
		return
	}
	s.inbox <- FromServer{Event: ev}
}

// OnClosed implements conn.Handler.
func (s *Session) OnClosed(code int, reason string, lost bool) {
	s.inbox <- ConnClosed{Code: code, Reason: reason, Lost: lost}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Bind:
				s.sender = msg.Sender

			case FromServer:
				s.dispatch(msg.Event)

			case ConnClosed:
				s.handleClosed(msg)

			case FindMatch:
				if s.state.Phase != engine.PhaseIdle {
					s.log.Debug("find_match outside idle", zap.String("phase", string(s.state.Phase)))
					break
				}
				s.send(protocol.FindMatch{TopicID: msg.TopicID, TaskCount: msg.TaskCount, MatchDuration: msg.MatchDuration})
				s.broadcast()

			case CreateRoom:
				if s.state.Phase != engine.PhaseIdle {
					s.log.Debug("create_room outside idle", zap.String("phase", string(s.state.Phase)))
					break
				}
				s.send(protocol.CreateRoom{TopicID: msg.TopicID, TaskCount: msg.TaskCount, MatchDuration: msg.MatchDuration})
				s.broadcast()

			case JoinRoom:
				if s.state.Phase != engine.PhaseIdle || !validRoomCode(msg.Code) {
					s.log.Debug("join_room rejected", zap.String("code", msg.Code))
					break
				}
				s.send(protocol.JoinRoom{Code: msg.Code})
				s.broadcast()

			case CancelSearch:
				if s.state.Phase != engine.PhaseQueued && s.state.Phase != engine.PhaseRoomPending {
					break
				}
				// Fire-and-forget: reset locally without waiting for the ack.
				s.send(protocol.CancelSearch{})
				s.resetToIdle()
				s.broadcast()

			case LeaveGame:
				if s.state.Phase != engine.PhaseActive {
					break
				}
				s.send(protocol.LeaveGame{})
				s.resetToIdle()
				s.broadcast()

			case SubmitAnswer:
				s.submit(msg.Answer)

			case returnToIdle:
				if msg.gen != s.idleGen || s.state.Phase != engine.PhaseFinished {
					break
				}
				s.resetToIdle()
				s.broadcast()

			case Subscribe:
				s.subs[msg.ID] = msg.Outbox
				msg.Outbox <- s.snapshot()

			case Unsubscribe:
				delete(s.subs, msg.ID)

			case GetView:
				msg.Reply <- View{
					Version:        s.version,
					NumSubscribers: len(s.subs),
					State:          s.state,
					Pending:        s.pending,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// dispatch folds one server event into the session. Rejected events
// (wrong phase, duplicate terminal) keep the previous state.
func (s *Session) dispatch(ev protocol.Event) {
	if unk, ok := ev.(protocol.Unknown); ok {
		s.log.Info("ignoring unknown event type", zap.String("type", unk.Type))
		return
	}

	newState, err := engine.Apply(s.state, ev)
	if err != nil {
		s.log.Warn("event rejected",
			zap.String("phase", string(s.state.Phase)),
			zap.Error(err))
		return
	}
	prevPhase := s.state.Phase
	s.state = newState

	// The pending attempt clears only on authoritative events, never on
	// a local timer. An attempt also cannot outlive its match: any event
	// that takes the phase out of active (error, cancel, terminal)
	// discards it.
	switch ev.(type) {
	case protocol.AnswerResult, protocol.AttemptsExhausted, protocol.NextTask, protocol.GameFinished:
		s.pending = false
	}
	if s.state.Phase != engine.PhaseActive {
		s.pending = false
	}

	if prevPhase != engine.PhaseFinished && s.state.Phase == engine.PhaseFinished && s.state.Result != nil {
		s.reconcile(*s.state.Result)
	}
	if prevPhase == engine.PhaseFinished && s.state.Phase != engine.PhaseFinished {
		// Left the result screen by a server-driven reset; stale outcome
		// and timer must not leak into the next match.
		s.outcome = ""
		s.ratingDelta = 0
		s.idleGen++
	}

	s.broadcast()
}

// reconcile classifies the terminal result and schedules the return to
// the lobby. The generation counter kills stale timers after a reset.
func (s *Session) reconcile(r engine.Result) {
	s.outcome = engine.Classify(r, s.localPlayerID)
	s.ratingDelta = engine.RatingDelta(r, s.localPlayerID)
	s.log.Info("match finished",
		zap.String("outcome", string(s.outcome)),
		zap.Int("rating_delta", s.ratingDelta))

	s.idleGen++
	gen := s.idleGen
	time.AfterFunc(s.idleDelay, func() {
		select {
		case s.inbox <- returnToIdle{gen: gen}:
		case <-s.ctx.Done():
		}
	})
}

// submit is the answer gate: one pending attempt, attempts remaining,
// active phase, non-empty value. Anything else is a no-op.
func (s *Session) submit(answer string) {
	if s.state.Phase != engine.PhaseActive || s.state.AttemptsLeft <= 0 || s.pending {
		s.log.Debug("submit rejected",
			zap.String("phase", string(s.state.Phase)),
			zap.Int("attempts_left", s.state.AttemptsLeft),
			zap.Bool("pending", s.pending))
		return
	}
	if strings.TrimSpace(answer) == "" {
		return
	}
	s.pending = true
	s.send(protocol.SubmitAnswer{Answer: answer})
	s.broadcast()
}

func (s *Session) handleClosed(msg ConnClosed) {
	s.resetToIdle()
	if msg.Lost {
		s.connLost = true
		s.connErr = msg.Reason
		if s.connErr == "" {
			s.connErr = "connection lost"
		}
		s.log.Error("connection lost", zap.Int("code", msg.Code), zap.String("reason", msg.Reason))
	} else {
		s.log.Info("connection closed", zap.Int("code", msg.Code))
	}
	s.broadcast()
}

func (s *Session) resetToIdle() {
	s.state = engine.NewState()
	s.pending = false
	s.outcome = ""
	s.ratingDelta = 0
	s.idleGen++
}

func (s *Session) send(cmd protocol.Command) {
	if s.sender == nil {
		s.log.Warn("send before transport bound")
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, sendTimeout)
	defer cancel()
	if err := s.sender.Send(ctx, cmd); err != nil {
		// A dead channel is terminal for the session.
		if errors.Is(err, conn.ErrNotConnected) {
			s.connLost = true
			s.connErr = "connection lost"
		}
		s.log.Error("send failed", zap.Error(err))
	}
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		Version:     s.version,
		State:       s.state,
		Pending:     s.pending,
		Outcome:     s.outcome,
		RatingDelta: s.ratingDelta,
		ConnLost:    s.connLost,
		ConnError:   s.connErr,
	}
}

func (s *Session) broadcast() {
	s.version++
	snap := s.snapshot()
	for id, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Subscriber is slow/full - drop them.
			close(ch)
			delete(s.subs, id)
		}
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.cancel()
}

func validRoomCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
