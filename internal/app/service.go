package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/jaminalder/codex-pyramid-solitaire/internal/domain"
)

// Errors exposed by the service layer.
var ErrNotFound = errors.New("game not found")

// Player-facing status lines. The conditions that trigger each are part of
// the game flow; the wording is what the board template displays.
const (
	StatusPairRemoved       = "Pair removed"
	StatusInvalidPair       = "Invalid pair"
	StatusKingRemoved       = "King removed"
	StatusCardCovered       = "Card is covered"
	StatusNothingToUndo     = "Nothing to undo"
	StatusRedealUnavailable = "Redeal unavailable"
	StatusStockEmpty        = "Stock empty"
	StatusRedealt           = "Redealing waste to stock"
	StatusNewGame           = "New game started"
	StatusWon               = "You cleared the pyramid!"
	StatusLost              = "No more moves. You lose."
)

// CellView is one pyramid cell as the presentation layer sees it.
type CellView struct {
	Row, Col int
	Card     domain.Card
	Present  bool
	Exposed  bool
	Selected bool
}

// Snapshot is an immutable view of a game, safe to render outside the lock.
type Snapshot struct {
	ID          string
	Cells       []CellView
	StockCount  int
	WasteCard   domain.Card
	HasWaste    bool
	WasteIndex  int
	Removed     int
	RedealsUsed int
	MaxRedeals  int
	Seed        int64
	HasSeed     bool
	Selected    *domain.Location
	Status      string
	Won         bool
	Lost        bool
	Created     time.Time
	Updated     time.Time
}

// session is the in-memory state tracked per game: the engine plus the
// transient click selection and the last status line.
type session struct {
	id        string
	game      *domain.Game
	selection *domain.Location
	status    string
	created   time.Time
	updated   time.Time
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers.
type Service struct {
	mu     sync.Mutex
	games  map[string]*session
	subs   map[string]map[*subscriber]struct{}
	render func(Snapshot) []byte
}

// NewService creates a service with a no-op broadcast renderer.
func NewService() *Service {
	return NewServiceWithRenderer(func(Snapshot) []byte { return nil })
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(Snapshot) []byte) *Service {
	if renderer == nil {
		renderer = func(Snapshot) []byte { return nil }
	}
	return &Service{
		games:  make(map[string]*session),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: renderer,
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(Snapshot) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(Snapshot) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame deals and registers a new game. A nil seed means a random
// shuffle on every reset of this game.
func (s *Service) CreateGame(seed *int64, maxRedeals int) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := time.Now()
	sess := &session{
		id:      id,
		game:    domain.NewGame(seed, maxRedeals),
		created: now,
		updated: now,
	}
	s.games[id] = sess
	klog.Infof("created game %s (maxRedeals=%d, seeded=%t)", id, maxRedeals, seed != nil)
	return s.snapshotLocked(sess), nil
}

// Get returns a view of the game state if present.
func (s *Service) Get(id string) (*Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	if !ok {
		return nil, false
	}
	return s.snapshotLocked(sess), true
}

// Click handles a card click: Kings are removed immediately, other exposed
// cards toggle selection, and a second selection attempts a pair removal.
func (s *Service) Click(id string, loc domain.Location) (*Snapshot, error) {
	return s.command(id, func(sess *session) {
		card, ok := sess.game.CardAt(loc)
		if !ok {
			// Empty cell or stale waste reference; nothing to do.
			sess.status = ""
			return
		}
		if loc.Kind == domain.PyramidCell && !sess.game.Exposed(loc) {
			sess.status = StatusCardCovered
			return
		}
		if card.Value() == 13 {
			if sess.game.RemoveKing(loc) {
				sess.status = StatusKingRemoved
				sess.selection = nil
			}
			return
		}
		switch {
		case sess.selection != nil && *sess.selection == loc:
			sess.selection = nil
			sess.status = ""
		case sess.selection != nil:
			if sess.game.RemovePair(*sess.selection, loc) {
				sess.status = StatusPairRemoved
			} else {
				sess.status = StatusInvalidPair
			}
			sess.selection = nil
		default:
			sess.selection = &loc
			sess.status = ""
		}
	})
}

// DrawFromStock handles a stock click: draw a card, falling back to an
// automatic redeal once the stock runs out.
func (s *Service) DrawFromStock(id string) (*Snapshot, error) {
	return s.command(id, func(sess *session) {
		sess.selection = nil
		switch {
		case sess.game.Draw():
			sess.status = ""
		case sess.game.Redeal():
			sess.status = StatusRedealt
		default:
			sess.status = StatusStockEmpty
		}
	})
}

// Undo reverts the most recent move.
func (s *Service) Undo(id string) (*Snapshot, error) {
	return s.command(id, func(sess *session) {
		if sess.game.Undo() {
			sess.selection = nil
			sess.status = ""
		} else {
			sess.status = StatusNothingToUndo
		}
	})
}

// Redeal turns the waste back into the stock, if a redeal is left.
func (s *Service) Redeal(id string) (*Snapshot, error) {
	return s.command(id, func(sess *session) {
		if sess.game.Redeal() {
			sess.selection = nil
			sess.status = ""
		} else {
			sess.status = StatusRedealUnavailable
		}
	})
}

// NewGame redeals the same game: the seed is preserved, so a seeded game
// repeats its layout while an unseeded one reshuffles.
func (s *Service) NewGame(id string) (*Snapshot, error) {
	return s.command(id, func(sess *session) {
		sess.game.Reset()
		sess.selection = nil
		sess.status = StatusNewGame
	})
}

// command runs a mutation under the lock, then broadcasts the new state.
func (s *Service) command(id string, apply func(*session)) (*Snapshot, error) {
	s.mu.Lock()
	sess, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	apply(sess)
	sess.updated = time.Now()
	snap := s.snapshotLocked(sess)
	subs := s.copySubsLocked(id)
	payload := s.render(*snap)
	s.mu.Unlock()

	// Fan-out; drop slow subscribers by closing and marking for deletion.
	var toDrop []*subscriber
	for sub := range subs {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) > 0 {
		s.mu.Lock()
		for _, sub := range toDrop {
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
		}
		s.mu.Unlock()
		klog.V(1).Infof("dropped %d slow subscribers from game %s", len(toDrop), id)
	}
	return snap, nil
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		// Create lazily to allow subscriptions before CreateGame in some flows.
		now := time.Now()
		s.games[id] = &session{id: id, game: domain.NewGame(nil, 0), created: now, updated: now}
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}

func (s *Service) snapshotLocked(sess *session) *Snapshot {
	g := sess.game
	snap := &Snapshot{
		ID:          sess.id,
		Cells:       make([]CellView, 0, domain.PyramidSize),
		StockCount:  g.StockCount(),
		Removed:     g.RemovedCount(),
		RedealsUsed: g.RedealsUsed(),
		MaxRedeals:  g.MaxRedeals(),
		Status:      sess.status,
		Created:     sess.created,
		Updated:     sess.updated,
	}
	snap.Seed, snap.HasSeed = g.Seed()
	if card, ok := g.WasteTop(); ok {
		snap.WasteCard = card
		snap.HasWaste = true
		snap.WasteIndex = g.WasteSize() - 1
	}
	if sess.selection != nil {
		sel := *sess.selection
		snap.Selected = &sel
	}
	for cell := range g.Cells() {
		loc := domain.PyramidLocation(cell.Row, cell.Col)
		snap.Cells = append(snap.Cells, CellView{
			Row:      cell.Row,
			Col:      cell.Col,
			Card:     cell.Card,
			Present:  cell.Present,
			Exposed:  g.Exposed(loc),
			Selected: sess.selection != nil && *sess.selection == loc,
		})
	}
	snap.Won = g.HasWon()
	snap.Lost = !snap.Won && !g.LegalMovesRemaining()
	return snap
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
