package domain

import "fmt"

// LocationKind discriminates the two places a playable card can live.
type LocationKind uint8

const (
	// PyramidCell addresses a board cell by (Row, Col).
	PyramidCell LocationKind = iota
	// WasteCard addresses a card in the waste by index. Only the current
	// top index is ever live; a stale index no longer refers to a card.
	WasteCard
)

// Location is a reference to a single card slot.
type Location struct {
	Kind LocationKind
	Row  int // pyramid row, or waste index
	Col  int // pyramid column; unused for waste
}

// PyramidLocation addresses the board cell at (row, col).
func PyramidLocation(row, col int) Location {
	return Location{Kind: PyramidCell, Row: row, Col: col}
}

// WasteLocation addresses the waste card at the given index.
func WasteLocation(index int) Location {
	return Location{Kind: WasteCard, Row: index}
}

func (l Location) String() string {
	if l.Kind == WasteCard {
		return fmt.Sprintf("waste(%d)", l.Row)
	}
	return fmt.Sprintf("pyramid(%d,%d)", l.Row, l.Col)
}
