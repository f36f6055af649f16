package domain

// Suit is one of the four playing card suits.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

func (s Suit) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	}
	return "?"
}

// Rank is a card rank from Ace (1) through King (13).
type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Value returns the numeric match value: A=1, 2..10 face, J=11, Q=12, K=13.
func (r Rank) Value() int { return int(r) }

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten:
		return [...]string{"2", "3", "4", "5", "6", "7", "8", "9", "10"}[r-Two]
	}
	return "?"
}

// Card is an immutable playing card. The zero value is not a valid card.
type Card struct {
	Rank Rank
	Suit Suit
}

// Value returns the rank value of the card.
func (c Card) Value() int { return c.Rank.Value() }

func (c Card) String() string { return c.Rank.String() + c.Suit.String() }
