package domain

import (
	"iter"
	"slices"
)

// stockSize is the number of cards left for the draw pile after the deal.
const stockSize = DeckSize - PyramidSize

// Game holds the complete state of one Pyramid (Match-13) Solitaire game:
// the board, the stock and waste piles, and the move history that makes
// every command exactly reversible.
//
// A Game is the sole mutator of its piles and the sole authority on move
// legality. Commands return false for illegal player moves and leave state
// untouched; they never panic on ordinary misuse.
type Game struct {
	seed        *int64
	maxRedeals  int
	pyramid     *Pyramid
	stock       []Card
	waste       []Card
	removed     int
	redealsUsed int
	history     []move
}

// NewGame creates a game and deals the first layout. A nil seed gives a
// fresh shuffle on every Reset; a non-nil seed reproduces the same game.
// Negative maxRedeals is treated as zero.
func NewGame(seed *int64, maxRedeals int) *Game {
	if maxRedeals < 0 {
		maxRedeals = 0
	}
	g := &Game{seed: seed, maxRedeals: maxRedeals}
	g.Reset()
	return g
}

// Reset reshuffles and deals a fresh game: 28 cards into the pyramid, the
// remaining 24 into the stock, empty waste, cleared history and counters.
func (g *Game) Reset() {
	deck := NewDeck(g.seed)
	layout := make([]Card, PyramidSize)
	for i := range layout {
		layout[i] = deck.Deal()
	}
	g.pyramid = NewPyramid(layout)
	g.stock = make([]Card, 0, stockSize)
	for deck.Remaining() > 0 {
		g.stock = append(g.stock, deck.Deal())
	}
	// Dealing filled the slice top-first; flip it so the stock top
	// (last element) is the next card the deck would have dealt.
	slices.Reverse(g.stock)
	g.waste = nil
	g.removed = 0
	g.redealsUsed = 0
	g.history = nil
}

// CardAt returns the card at the location, if one is there. A waste
// location only resolves while its index is the current waste top.
func (g *Game) CardAt(loc Location) (Card, bool) {
	switch loc.Kind {
	case PyramidCell:
		return g.pyramid.CardAt(loc.Row, loc.Col)
	case WasteCard:
		if len(g.waste) > 0 && loc.Row == len(g.waste)-1 {
			return g.waste[len(g.waste)-1], true
		}
	}
	return Card{}, false
}

// Exposed reports whether the card at the location is playable this turn.
// The waste top is always exposed.
func (g *Game) Exposed(loc Location) bool {
	switch loc.Kind {
	case PyramidCell:
		return g.pyramid.IsExposed(loc.Row, loc.Col)
	case WasteCard:
		return len(g.waste) > 0 && loc.Row == len(g.waste)-1
	}
	return false
}

// Draw moves the top stock card onto the waste. False if the stock is empty.
func (g *Game) Draw() bool {
	if len(g.stock) == 0 {
		return false
	}
	card := g.stock[len(g.stock)-1]
	g.stock = g.stock[:len(g.stock)-1]
	g.waste = append(g.waste, card)
	g.history = append(g.history, drawMove{card: card})
	return true
}

// RemoveKing removes a single exposed King. False if the location holds no
// card, the card is not a King, or it is covered.
func (g *Game) RemoveKing(loc Location) bool {
	card, ok := g.CardAt(loc)
	if !ok || card.Value() != King.Value() || !g.Exposed(loc) {
		return false
	}
	switch loc.Kind {
	case PyramidCell:
		g.removePyramidCard(loc.Row, loc.Col)
		g.history = append(g.history, removeKingPyramidMove{row: loc.Row, col: loc.Col, card: card})
	case WasteCard:
		g.waste = g.waste[:len(g.waste)-1]
		g.history = append(g.history, removeKingWasteMove{card: card})
	}
	return true
}

// RemovePair removes two exposed cards whose values sum to 13. All checks
// happen before any mutation; a failed command never leaves a partial
// removal behind.
func (g *Game) RemovePair(first, second Location) bool {
	if first == second {
		return false
	}
	cardA, okA := g.CardAt(first)
	cardB, okB := g.CardAt(second)
	if !okA || !okB {
		return false
	}
	if cardA.Value()+cardB.Value() != 13 {
		return false
	}
	if !g.Exposed(first) || !g.Exposed(second) {
		return false
	}

	removed := make([]removedCard, 0, 2)
	for _, loc := range [2]Location{first, second} {
		switch loc.Kind {
		case PyramidCell:
			if card, ok := g.removePyramidCard(loc.Row, loc.Col); ok {
				removed = append(removed, removedCard{loc: loc, card: card})
			}
		case WasteCard:
			if len(g.waste) > 0 {
				card := g.waste[len(g.waste)-1]
				g.waste = g.waste[:len(g.waste)-1]
				removed = append(removed, removedCard{loc: loc, card: card})
			}
		}
	}
	if len(removed) != 2 {
		// Unreachable after the checks above; roll back so a failed
		// command stays a perfect no-op.
		for i := len(removed) - 1; i >= 0; i-- {
			g.restoreRemoved(removed[i])
		}
		return false
	}
	g.history = append(g.history, removePairMove{removed: [2]removedCard{removed[0], removed[1]}})
	return true
}

// Redeal turns the waste back into the stock. False once redealsUsed has
// reached maxRedeals, or while the waste is empty. The flipped waste goes
// on top of whatever stock remains, so draws repeat in the original order.
func (g *Game) Redeal() bool {
	if g.redealsUsed >= g.maxRedeals || len(g.waste) == 0 {
		return false
	}
	stockBefore := slices.Clone(g.stock)
	wasteBefore := slices.Clone(g.waste)
	for i := len(g.waste) - 1; i >= 0; i-- {
		g.stock = append(g.stock, g.waste[i])
	}
	g.waste = nil
	g.redealsUsed++
	g.history = append(g.history, redealMove{stockBefore: stockBefore, wasteBefore: wasteBefore})
	return true
}

// Undo reverts the most recent command exactly. False if nothing happened
// yet. Depth is bounded only by the moves made this game.
func (g *Game) Undo() bool {
	if len(g.history) == 0 {
		return false
	}
	m := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	m.undo(g)
	return true
}

// HasWon reports whether the pyramid has been cleared.
func (g *Game) HasWon() bool { return g.removed >= PyramidSize }

// LegalMovesRemaining reports whether the player can still do anything:
// draw, redeal, remove a King, or remove some exposed pair summing to 13.
// It rescans the board on every call.
func (g *Game) LegalMovesRemaining() bool {
	if len(g.stock) > 0 {
		return true
	}
	if len(g.waste) > 0 && g.redealsUsed < g.maxRedeals {
		return true
	}
	var values []int
	for cell := range g.pyramid.Cells() {
		if !cell.Present || !g.pyramid.IsExposed(cell.Row, cell.Col) {
			continue
		}
		if cell.Card.Value() == King.Value() {
			return true
		}
		values = append(values, cell.Card.Value())
	}
	if len(g.waste) > 0 {
		top := g.waste[len(g.waste)-1]
		if top.Value() == King.Value() {
			return true
		}
		values = append(values, top.Value())
	}
	for i, v := range values {
		for _, w := range values[i+1:] {
			if v+w == 13 {
				return true
			}
		}
	}
	return false
}

// Cells iterates the pyramid in row-major order.
func (g *Game) Cells() iter.Seq[Cell] { return g.pyramid.Cells() }

// StockCount returns the number of undrawn cards.
func (g *Game) StockCount() int { return len(g.stock) }

// WasteSize returns the number of cards in the waste.
func (g *Game) WasteSize() int { return len(g.waste) }

// WasteTop returns the visible waste card, if any.
func (g *Game) WasteTop() (Card, bool) {
	if len(g.waste) == 0 {
		return Card{}, false
	}
	return g.waste[len(g.waste)-1], true
}

// RemovedCount returns how many pyramid cards have been removed.
func (g *Game) RemovedCount() int { return g.removed }

// RedealsUsed returns how many redeals have been spent.
func (g *Game) RedealsUsed() int { return g.redealsUsed }

// MaxRedeals returns the configured redeal limit.
func (g *Game) MaxRedeals() int { return g.maxRedeals }

// Seed returns the configured seed and whether one was set.
func (g *Game) Seed() (int64, bool) {
	if g.seed == nil {
		return 0, false
	}
	return *g.seed, true
}

// HistoryLen returns how many commands can still be undone.
func (g *Game) HistoryLen() int { return len(g.history) }

func (g *Game) removePyramidCard(row, col int) (Card, bool) {
	card, ok := g.pyramid.RemoveCard(row, col)
	if ok {
		g.removed++
	}
	return card, ok
}

func (g *Game) restorePyramidCard(row, col int, card Card) {
	g.pyramid.RestoreCard(row, col, card)
	g.removed--
}

func (g *Game) restoreRemoved(rc removedCard) {
	switch rc.loc.Kind {
	case PyramidCell:
		g.restorePyramidCard(rc.loc.Row, rc.loc.Col, rc.card)
	case WasteCard:
		g.waste = append(g.waste, rc.card)
	}
}
