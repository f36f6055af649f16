package domain

import "iter"

const (
	// PyramidRows is the number of rows in the board.
	PyramidRows = 7
	// PyramidSize is the number of cells: rows of length 1..7.
	PyramidSize = 28
)

// Pyramid is the triangular board. Cells are stored row-major; a nil cell
// means the card has been removed. Rows are always fully populated at
// construction, so emptiness only ever results from removal.
type Pyramid struct {
	cells [PyramidSize]*Card
}

// NewPyramid fills the board row by row, left to right, from exactly 28 cards.
func NewPyramid(cards []Card) *Pyramid {
	if len(cards) != PyramidSize {
		panic("domain: pyramid requires exactly 28 cards")
	}
	p := &Pyramid{}
	for i := range cards {
		c := cards[i]
		p.cells[i] = &c
	}
	return p
}

// cellIndex maps (row, col) to the row-major cell index.
func cellIndex(row, col int) int { return row*(row+1)/2 + col }

func validCell(row, col int) bool {
	return row >= 0 && row < PyramidRows && col >= 0 && col <= row
}

// CardAt returns the card at (row, col) if the cell is in range and occupied.
func (p *Pyramid) CardAt(row, col int) (Card, bool) {
	if !validCell(row, col) {
		return Card{}, false
	}
	c := p.cells[cellIndex(row, col)]
	if c == nil {
		return Card{}, false
	}
	return *c, true
}

// RemoveCard clears the cell and returns the previous occupant. Removing
// from an empty or out-of-range cell is a no-op.
func (p *Pyramid) RemoveCard(row, col int) (Card, bool) {
	card, ok := p.CardAt(row, col)
	if !ok {
		return Card{}, false
	}
	p.cells[cellIndex(row, col)] = nil
	return card, true
}

// RestoreCard reinstates a card into a cell. Only undo may call this, with
// the card the move history recorded for that cell; anything else is a
// caller bug.
func (p *Pyramid) RestoreCard(row, col int, card Card) {
	if !validCell(row, col) {
		panic("domain: restore to out-of-range pyramid cell")
	}
	idx := cellIndex(row, col)
	if p.cells[idx] != nil {
		panic("domain: restore to occupied pyramid cell")
	}
	c := card
	p.cells[idx] = &c
}

// IsExposed reports whether the cell holds a card with nothing covering it:
// it is in the last row, or both cells directly below it are empty. This is
// recomputed from board state on every call.
func (p *Pyramid) IsExposed(row, col int) bool {
	if _, ok := p.CardAt(row, col); !ok {
		return false
	}
	if row == PyramidRows-1 {
		return true
	}
	_, left := p.CardAt(row+1, col)
	_, right := p.CardAt(row+1, col+1)
	return !left && !right
}

// Cell is one board position as seen by Cells iteration.
type Cell struct {
	Row, Col int
	Card     Card
	Present  bool
}

// Cells iterates the board in row-major order. The sequence is finite and
// restartable.
func (p *Pyramid) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for row := 0; row < PyramidRows; row++ {
			for col := 0; col <= row; col++ {
				cell := Cell{Row: row, Col: col}
				if c := p.cells[cellIndex(row, col)]; c != nil {
					cell.Card = *c
					cell.Present = true
				}
				if !yield(cell) {
					return
				}
			}
		}
	}
}
