package domain

import (
	"math/rand"
	"time"
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// Deck is a shuffled standard 52-card deck. It owns its own random
// generator so that independent games never share hidden state.
type Deck struct {
	rng   *rand.Rand
	cards []Card
}

// NewDeck builds a full deck and shuffles it. With a non-nil seed the
// resulting order is a deterministic function of that seed alone; a nil
// seed produces a fresh order on every call.
func NewDeck(seed *int64) *Deck {
	var src rand.Source
	if seed != nil {
		src = rand.NewSource(*seed)
	} else {
		src = rand.NewSource(time.Now().UnixNano())
	}
	d := &Deck{
		rng:   rand.New(src),
		cards: make([]Card, 0, DeckSize),
	}
	for s := Clubs; s <= Spades; s++ {
		for r := Ace; r <= King; r++ {
			d.cards = append(d.cards, Card{Rank: r, Suit: s})
		}
	}
	d.shuffle()
	return d
}

func (d *Deck) shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the top card. The game deals exactly 52 cards
// per reset; dealing from an empty deck is a caller bug.
func (d *Deck) Deal() Card {
	if len(d.cards) == 0 {
		panic("domain: deal from empty deck")
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card
}

// Remaining reports how many cards are left to deal.
func (d *Deck) Remaining() int { return len(d.cards) }
