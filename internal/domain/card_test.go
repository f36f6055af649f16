package domain

import "testing"

func TestRankValues(t *testing.T) {
	cases := []struct {
		rank Rank
		want int
	}{
		{Ace, 1}, {Two, 2}, {Three, 3}, {Four, 4}, {Five, 5}, {Six, 6},
		{Seven, 7}, {Eight, 8}, {Nine, 9}, {Ten, 10}, {Jack, 11}, {Queen, 12}, {King, 13},
	}
	for _, c := range cases {
		if got := c.rank.Value(); got != c.want {
			t.Fatalf("value of %v = %d, want %d", c.rank, got, c.want)
		}
	}
}

func TestCardString(t *testing.T) {
	cases := []struct {
		card Card
		want string
	}{
		{Card{Rank: Ace, Suit: Spades}, "A♠"},
		{Card{Rank: Ten, Suit: Diamonds}, "10♦"},
		{Card{Rank: Queen, Suit: Hearts}, "Q♥"},
		{Card{Rank: King, Suit: Clubs}, "K♣"},
	}
	for _, c := range cases {
		if got := c.card.String(); got != c.want {
			t.Fatalf("String of %+v = %q, want %q", c.card, got, c.want)
		}
	}
}
