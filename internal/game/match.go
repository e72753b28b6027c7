package game

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/silentapi/riftbounddecks/internal/catalog"
	"github.com/silentapi/riftbounddecks/internal/deck"
	"go.uber.org/zap"
)

// MatchOptions configures a Match.
type MatchOptions struct {
	// SessionID tags snapshots and events.
	SessionID string

	// Rand drives every shuffle. Default: math/rand seeded from crypto/rand.
	Rand Rand

	// RuneTable maps legend colors to rune cards. Default: deck.DefaultRuneTable
	RuneTable deck.RuneTable

	// Events receives an event after every successful mutation. Optional.
	Events *EventBus

	Logger *zap.Logger
}

// Match is the zone state machine of one player in one session.
//
// Every operation either applies fully and returns the resulting snapshot,
// or returns a *RejectedError and leaves the zones untouched. A Match is
// not safe for concurrent use; Session serializes access to it.
type Match struct {
	sessionID string
	lookup    catalog.Lookup
	rng       Rand
	runeTable deck.RuneTable
	events    *EventBus
	logger    *zap.Logger

	zones       zones
	sequence    int
	initialized bool
}

// NewMatch creates an empty, uninitialized match.
func NewMatch(lookup catalog.Lookup, options MatchOptions) *Match {
	if options.Rand == nil {
		seed, err := NewSeed()
		if err != nil && options.Logger != nil {
			options.Logger.Warn("falling back to zero shuffle seed", zap.Error(err))
		}
		options.Rand = NewRand(seed)
	}
	if options.RuneTable == nil {
		options.RuneTable = deck.DefaultRuneTable
	}

	return &Match{
		sessionID: options.SessionID,
		lookup:    lookup,
		rng:       options.Rand,
		runeTable: options.RuneTable,
		events:    options.Events,
		logger:    options.Logger,
	}
}

// Snapshot returns the current state.
func (m *Match) Snapshot() Snapshot {
	return m.zones.snapshot(m.sessionID, m.sequence)
}

// Initialized reports whether Initialize has been called.
func (m *Match) Initialized() bool {
	return m.initialized
}

// Initialize starts a fresh session from a deck: the library is a copy of
// the main deck, the rune library is derived from the legend, the legend and
// champion slots are filled and everything else is cleared. Library and rune
// library are then shuffled once. Calling it again starts over with a new
// shuffle.
func (m *Match) Initialize(cards deck.Cards) Snapshot {
	m.zones = zones{
		library:     cards.MainCards(),
		hand:        make([]catalog.CardID, 0),
		discard:     make([]catalog.CardID, 0),
		runeLibrary: deck.BuildRuneLibraryFor(cards, m.lookup, m.runeTable),
		runeField:   make([]Rune, 0, MaxRuneField),
		legend:      LegendSlot{ID: cards.LegendCard},
		champion:    cards.ChosenChampion,
	}
	if len(m.zones.runeLibrary) > MaxRuneLibrary {
		m.zones.runeLibrary = m.zones.runeLibrary[:MaxRuneLibrary]
	}

	shuffleInPlace(m.zones.library, m.rng)
	shuffleInPlace(m.zones.runeLibrary, m.rng)
	m.initialized = true

	if m.logger != nil {
		m.logger.Info("match initialized",
			zap.String("session_id", m.sessionID),
			zap.Int("library", len(m.zones.library)),
			zap.Int("rune_library", len(m.zones.runeLibrary)),
			zap.String("legend", string(cards.LegendCard)),
			zap.String("champion", string(cards.ChosenChampion)),
		)
	}

	evt := NewEvent(EventMatchInitialized, m.sessionID)
	evt.Amount = len(m.zones.library)
	evt.Metadata["rune_library"] = strconv.Itoa(len(m.zones.runeLibrary))
	return m.commit(evt)
}

// Shuffle reorders the library or the rune library. Shuffling an empty zone
// changes nothing and publishes nothing.
func (m *Match) Shuffle(zone Zone) (Snapshot, error) {
	const op = "shuffle"
	if err := m.ready(op); err != nil {
		return Snapshot{}, err
	}

	var cards []catalog.CardID
	switch zone {
	case ZoneLibrary:
		cards = m.zones.library
	case ZoneRuneLibrary:
		cards = m.zones.runeLibrary
	default:
		return Snapshot{}, reject(op, ReasonInvalidZone, zone, -1)
	}
	if len(cards) == 0 {
		return m.Snapshot(), nil
	}
	shuffleInPlace(cards, m.rng)

	evt := NewEvent(EventZoneShuffled, m.sessionID)
	evt.FromZone, evt.ToZone = zone, zone
	return m.commit(evt), nil
}

// Draw moves the top of the library to the end of the hand.
func (m *Match) Draw() (Snapshot, error) {
	const op = "draw"
	if err := m.ready(op); err != nil {
		return Snapshot{}, err
	}
	if len(m.zones.library) == 0 {
		return Snapshot{}, reject(op, ReasonEmptyZone, ZoneLibrary, -1)
	}

	var card catalog.CardID
	m.zones.library, card = removeAt(m.zones.library, 0)
	m.zones.hand = append(m.zones.hand, card)

	return m.commit(NewMoveEvent(EventCardDrawn, m.sessionID, card, ZoneLibrary, ZoneHand, 0)), nil
}

// ShuffleHand reorders the hand. An empty hand is left as is.
func (m *Match) ShuffleHand() (Snapshot, error) {
	const op = "shuffleHand"
	if err := m.ready(op); err != nil {
		return Snapshot{}, err
	}

	if len(m.zones.hand) == 0 {
		return m.Snapshot(), nil
	}
	shuffleInPlace(m.zones.hand, m.rng)

	evt := NewEvent(EventZoneShuffled, m.sessionID)
	evt.FromZone, evt.ToZone = ZoneHand, ZoneHand
	return m.commit(evt), nil
}

// MoveHandCardToDeckTop puts a hand card on top of the library.
func (m *Match) MoveHandCardToDeckTop(handIndex int) (Snapshot, error) {
	return m.moveFromHand("moveHandCardToDeckTop", handIndex, ZoneLibrary, true)
}

// RecycleHandCard puts a hand card at the bottom of the library.
func (m *Match) RecycleHandCard(handIndex int) (Snapshot, error) {
	return m.moveFromHand("recycleHandCard", handIndex, ZoneLibrary, false)
}

// DiscardHandCard moves a hand card to the end of the discard pile.
func (m *Match) DiscardHandCard(handIndex int) (Snapshot, error) {
	return m.moveFromHand("discardHandCard", handIndex, ZoneDiscard, false)
}

func (m *Match) moveFromHand(op string, handIndex int, to Zone, top bool) (Snapshot, error) {
	if err := m.ready(op); err != nil {
		return Snapshot{}, err
	}
	if handIndex < 0 || handIndex >= len(m.zones.hand) {
		return Snapshot{}, reject(op, ReasonIndexOutOfRange, ZoneHand, handIndex)
	}

	var card catalog.CardID
	m.zones.hand, card = removeAt(m.zones.hand, handIndex)

	eventType := EventZoneChange
	switch {
	case to == ZoneDiscard:
		m.zones.discard = append(m.zones.discard, card)
		eventType = EventCardDiscarded
	case top:
		m.zones.library = pushFront(m.zones.library, card)
	default:
		m.zones.library = append(m.zones.library, card)
	}

	evt := NewMoveEvent(eventType, m.sessionID, card, ZoneHand, to, handIndex)
	evt.Metadata["position"] = position(top)
	return m.commit(evt), nil
}

// ChannelRunes moves up to n runes from the top of the rune library to the
// end of the field. The count actually moved is
// min(n, |rune library|, 12-|field|); moving fewer than n, or none, is not an
// error.
func (m *Match) ChannelRunes(n int) (Snapshot, int, error) {
	const op = "channelRunes"
	if err := m.ready(op); err != nil {
		return Snapshot{}, 0, err
	}

	k := minInt(n, len(m.zones.runeLibrary), MaxRuneField-len(m.zones.runeField))
	if k <= 0 {
		return m.Snapshot(), 0, nil
	}

	channeled := m.zones.runeLibrary[:k]
	for _, id := range channeled {
		m.zones.runeField = append(m.zones.runeField, Rune{ID: id, Token: uuid.New().String()})
	}
	m.zones.runeLibrary = cloneSlice(m.zones.runeLibrary[k:])

	evt := NewEvent(EventRunesChanneled, m.sessionID)
	evt.FromZone, evt.ToZone = ZoneRuneLibrary, ZoneRuneField
	evt.Amount = k
	evt.Metadata["requested"] = strconv.Itoa(n)
	return m.commit(evt), k, nil
}

// ExhaustToggle flips the exhausted flag of the rune at fieldIndex.
func (m *Match) ExhaustToggle(fieldIndex int) (Snapshot, error) {
	const op = "exhaustToggle"
	if err := m.ready(op); err != nil {
		return Snapshot{}, err
	}
	if fieldIndex < 0 || fieldIndex >= len(m.zones.runeField) {
		return Snapshot{}, reject(op, ReasonIndexOutOfRange, ZoneRuneField, fieldIndex)
	}

	r := &m.zones.runeField[fieldIndex]
	r.Exhausted = !r.Exhausted

	eventType := EventRuneAwakened
	if r.Exhausted {
		eventType = EventRuneExhausted
	}
	evt := NewMoveEvent(eventType, m.sessionID, r.ID, ZoneRuneField, ZoneRuneField, fieldIndex)
	evt.Metadata["token"] = r.Token
	return m.commit(evt), nil
}

// BulkExhaust exhausts up to count ready runes, scanning left to right, and
// returns how many it exhausted.
func (m *Match) BulkExhaust(count int) (Snapshot, int, error) {
	return m.bulkSet("bulkExhaust", count, true)
}

// BulkAwaken readies up to count exhausted runes, scanning left to right,
// and returns how many it readied.
func (m *Match) BulkAwaken(count int) (Snapshot, int, error) {
	return m.bulkSet("bulkAwaken", count, false)
}

func (m *Match) bulkSet(op string, count int, exhausted bool) (Snapshot, int, error) {
	if err := m.ready(op); err != nil {
		return Snapshot{}, 0, err
	}

	toggled := 0
	for i := range m.zones.runeField {
		if toggled >= count {
			break
		}
		if m.zones.runeField[i].Exhausted != exhausted {
			m.zones.runeField[i].Exhausted = exhausted
			toggled++
		}
	}
	if toggled == 0 {
		return m.Snapshot(), 0, nil
	}

	eventType := EventRuneAwakened
	if exhausted {
		eventType = EventRuneExhausted
	}
	evt := NewEvent(eventType, m.sessionID)
	evt.FromZone, evt.ToZone = ZoneRuneField, ZoneRuneField
	evt.Amount = toggled
	return m.commit(evt), toggled, nil
}

// MoveFieldRuneToDeckTop returns a field rune to the top of the rune library.
func (m *Match) MoveFieldRuneToDeckTop(fieldIndex int) (Snapshot, error) {
	return m.returnFieldRune("moveFieldRuneToDeckTop", fieldIndex, true)
}

// RecycleFieldRune returns a field rune to the bottom of the rune library.
func (m *Match) RecycleFieldRune(fieldIndex int) (Snapshot, error) {
	return m.returnFieldRune("recycleFieldRune", fieldIndex, false)
}

// returnFieldRune removes the rune at fieldIndex, compacting the field so
// every later rune moves one position left with its flag, and puts the rune
// card back into the rune library. Its instance token and flag are dropped.
func (m *Match) returnFieldRune(op string, fieldIndex int, top bool) (Snapshot, error) {
	if err := m.ready(op); err != nil {
		return Snapshot{}, err
	}
	if fieldIndex < 0 || fieldIndex >= len(m.zones.runeField) {
		return Snapshot{}, reject(op, ReasonIndexOutOfRange, ZoneRuneField, fieldIndex)
	}
	if len(m.zones.runeLibrary) >= MaxRuneLibrary {
		return Snapshot{}, reject(op, ReasonCapacityExceeded, ZoneRuneLibrary, fieldIndex)
	}

	var r Rune
	m.zones.runeField, r = removeAt(m.zones.runeField, fieldIndex)
	if top {
		m.zones.runeLibrary = pushFront(m.zones.runeLibrary, r.ID)
	} else {
		m.zones.runeLibrary = append(m.zones.runeLibrary, r.ID)
	}

	evt := NewMoveEvent(EventZoneChange, m.sessionID, r.ID, ZoneRuneField, ZoneRuneLibrary, fieldIndex)
	evt.Metadata["position"] = position(top)
	evt.Metadata["token"] = r.Token
	return m.commit(evt), nil
}

// ExhaustLegend marks the legend as used.
func (m *Match) ExhaustLegend() (Snapshot, error) {
	return m.setLegend("exhaustLegend", true)
}

// AwakenLegend marks the legend as available.
func (m *Match) AwakenLegend() (Snapshot, error) {
	return m.setLegend("awakenLegend", false)
}

func (m *Match) setLegend(op string, exhausted bool) (Snapshot, error) {
	if err := m.ready(op); err != nil {
		return Snapshot{}, err
	}
	if m.zones.legend.Empty() {
		return Snapshot{}, reject(op, ReasonSlotEmpty, ZoneLegend, -1)
	}

	m.zones.legend.Exhausted = exhausted

	eventType := EventLegendAwakened
	if exhausted {
		eventType = EventLegendExhausted
	}
	evt := NewMoveEvent(eventType, m.sessionID, m.zones.legend.ID, ZoneLegend, ZoneLegend, -1)
	return m.commit(evt), nil
}

func (m *Match) ready(op string) error {
	if !m.initialized {
		return reject(op, ReasonNotInitialized, "", -1)
	}
	return nil
}

// commit bumps the sequence, publishes evt and returns the new snapshot.
func (m *Match) commit(evt Event) Snapshot {
	m.sequence++
	snap := m.Snapshot()
	evt.Sequence = snap.Sequence

	if m.logger != nil {
		m.logger.Debug("match transition",
			zap.String("session_id", m.sessionID),
			zap.String("event", string(evt.Type)),
			zap.String("card_id", string(evt.CardID)),
			zap.String("from_zone", string(evt.FromZone)),
			zap.String("to_zone", string(evt.ToZone)),
			zap.Int("amount", evt.Amount),
			zap.Int("sequence", snap.Sequence),
		)
	}
	if m.events != nil {
		m.events.Publish(evt)
	}

	return snap
}

func position(top bool) string {
	if top {
		return "top"
	}
	return "bottom"
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
