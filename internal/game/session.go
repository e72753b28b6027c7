package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/silentapi/riftbounddecks/internal/catalog"
	"github.com/silentapi/riftbounddecks/internal/deck"
	"github.com/silentapi/riftbounddecks/internal/game/rules"
	"go.uber.org/zap"
)

// OpponentMirror is the read-only view of the opposing deck shown next to
// the player's zones. It never changes during a session.
type OpponentMirror struct {
	DeckID       string           `json:"deckId"`
	DeckName     string           `json:"deckName"`
	Legend       catalog.CardID   `json:"legend"`
	Champion     catalog.CardID   `json:"champion"`
	Battlefields []catalog.CardID `json:"battlefields"`
	MainCount    int              `json:"mainCount"`
	SideCount    int              `json:"sideCount"`
}

func newOpponentMirror(record deck.Record) OpponentMirror {
	return OpponentMirror{
		DeckID:       record.ID,
		DeckName:     record.Name,
		Legend:       record.Cards.LegendCard,
		Champion:     record.Cards.ChosenChampion,
		Battlefields: record.Cards.BattlefieldCards(),
		MainCount:    len(record.Cards.MainCards()),
		SideCount:    len(record.Cards.SideCards()),
	}
}

// Session binds one deck to one Match and serializes every command on it.
type Session struct {
	ID        string
	DeckID    string
	CreatedAt time.Time

	mu       sync.Mutex
	cards    deck.Cards
	lookup   catalog.Lookup
	match    *Match
	events   *EventBus
	opponent *OpponentMirror
	recorder *ReplayRecorder
	logger   *zap.Logger
}

// Events returns the bus the session's match publishes on.
func (s *Session) Events() *EventBus {
	return s.events
}

// Cards returns the deck the session was created from.
func (s *Session) Cards() deck.Cards {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards
}

// Opponent returns the opponent mirror, if the session has one.
func (s *Session) Opponent() (OpponentMirror, bool) {
	if s.opponent == nil {
		return OpponentMirror{}, false
	}
	mirror := *s.opponent
	mirror.Battlefields = cloneSlice(s.opponent.Battlefields)
	return mirror, true
}

// Validate runs the legality rules against the session's deck.
func (s *Session) Validate() rules.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rules.Validate(s.cards, s.lookup)
}

// Snapshot returns the current zones.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Snapshot()
}

// Dispatch applies one command. Commands on the same session never
// interleave.
func (s *Session) Dispatch(cmd Command) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.match.sequence
	res := s.apply(cmd)

	if res.Err != nil {
		if s.logger != nil {
			s.logger.Debug("command rejected",
				zap.String("session_id", s.ID),
				zap.String("op", string(cmd.Op)),
				zap.Error(res.Err),
			)
		}
		return res
	}

	if s.recorder != nil && res.Snapshot.Sequence != before {
		s.recorder.RecordState(res.Snapshot)
	}
	return res
}

func (s *Session) apply(cmd Command) Result {
	var (
		snap  Snapshot
		count int
		err   error
	)

	switch cmd.Op {
	case OpInitialize:
		snap = s.match.Initialize(s.cards)
	case OpShuffle:
		snap, err = s.match.Shuffle(cmd.Zone)
	case OpDraw:
		snap, err = s.match.Draw()
	case OpShuffleHand:
		snap, err = s.match.ShuffleHand()
	case OpMoveHandCardToDeckTop:
		snap, err = s.match.MoveHandCardToDeckTop(cmd.Index)
	case OpRecycleHandCard:
		snap, err = s.match.RecycleHandCard(cmd.Index)
	case OpDiscardHandCard:
		snap, err = s.match.DiscardHandCard(cmd.Index)
	case OpChannelRunes:
		snap, count, err = s.match.ChannelRunes(cmd.Count)
	case OpExhaustToggle:
		snap, err = s.match.ExhaustToggle(cmd.Index)
	case OpBulkExhaust:
		snap, count, err = s.match.BulkExhaust(cmd.Count)
	case OpBulkAwaken:
		snap, count, err = s.match.BulkAwaken(cmd.Count)
	case OpMoveFieldRuneToDeckTop:
		snap, err = s.match.MoveFieldRuneToDeckTop(cmd.Index)
	case OpRecycleFieldRune:
		snap, err = s.match.RecycleFieldRune(cmd.Index)
	case OpExhaustLegend:
		snap, err = s.match.ExhaustLegend()
	case OpAwakenLegend:
		snap, err = s.match.AwakenLegend()
	case OpSnapshot:
		snap = s.match.Snapshot()
	default:
		err = fmt.Errorf("unsupported command %q", cmd.Op)
	}

	return Result{Snapshot: snap, Count: count, Err: err}
}
