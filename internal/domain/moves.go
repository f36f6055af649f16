package domain

// move is one reversible history record. Each variant carries exactly the
// fields its inverse needs, so Undo is a single dispatch over the variant.
type move interface {
	undo(g *Game)
}

type drawMove struct {
	card Card
}

func (m drawMove) undo(g *Game) {
	if len(g.waste) == 0 || g.waste[len(g.waste)-1] != m.card {
		panic("domain: undo draw with mismatched waste top")
	}
	g.waste = g.waste[:len(g.waste)-1]
	g.stock = append(g.stock, m.card)
}

type removeKingPyramidMove struct {
	row, col int
	card     Card
}

func (m removeKingPyramidMove) undo(g *Game) {
	g.restorePyramidCard(m.row, m.col, m.card)
}

type removeKingWasteMove struct {
	card Card
}

func (m removeKingWasteMove) undo(g *Game) {
	g.waste = append(g.waste, m.card)
}

// removedCard records where a pair-removal took a card from.
type removedCard struct {
	loc  Location
	card Card
}

type removePairMove struct {
	removed [2]removedCard
}

func (m removePairMove) undo(g *Game) {
	// Restore in reverse removal order.
	for i := len(m.removed) - 1; i >= 0; i-- {
		g.restoreRemoved(m.removed[i])
	}
}

type redealMove struct {
	stockBefore []Card
	wasteBefore []Card
}

func (m redealMove) undo(g *Game) {
	g.stock = m.stockBefore
	g.waste = m.wasteBefore
	g.redealsUsed--
}
