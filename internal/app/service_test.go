package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jaminalder/codex-pyramid-solitaire/internal/domain"
)

// minimal renderer for tests: encode the stock count as bytes
func testRenderer(snap Snapshot) []byte { return []byte(fmt.Sprintf("stock=%d", snap.StockCount)) }

func seedPtr(v int64) *int64 { return &v }

func newTestGame(t *testing.T, seed int64, maxRedeals int) (*Service, *Snapshot) {
	t.Helper()
	s := NewServiceWithRenderer(testRenderer)
	snap, err := s.CreateGame(seedPtr(seed), maxRedeals)
	if err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}
	return s, snap
}

// exposedNonKings returns the exposed pyramid cells that are not Kings.
func exposedNonKings(snap *Snapshot) []CellView {
	var out []CellView
	for _, cell := range snap.Cells {
		if cell.Present && cell.Exposed && cell.Card.Value() != 13 {
			out = append(out, cell)
		}
	}
	return out
}

func TestCreateAndGet(t *testing.T) {
	s, snap := newTestGame(t, 1, 0)
	if snap.ID == "" {
		t.Fatalf("expected non-empty game ID")
	}
	if snap.StockCount != 24 || snap.HasWaste || snap.Removed != 0 {
		t.Fatalf("unexpected fresh game: stock=%d waste=%v removed=%d", snap.StockCount, snap.HasWaste, snap.Removed)
	}
	if len(snap.Cells) != domain.PyramidSize {
		t.Fatalf("expected %d cells, got %d", domain.PyramidSize, len(snap.Cells))
	}
	if !snap.HasSeed || snap.Seed != 1 {
		t.Fatalf("expected seed 1, got %d (set=%v)", snap.Seed, snap.HasSeed)
	}
	if snap.Created.IsZero() || snap.Updated.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
	got, ok := s.Get(snap.ID)
	if !ok || got.ID != snap.ID {
		t.Fatalf("Get should find created game")
	}
}

func TestCommandsOnUnknownGame(t *testing.T) {
	s := NewServiceWithRenderer(testRenderer)
	if _, err := s.Click("nope", domain.PyramidLocation(6, 0)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Click: expected ErrNotFound, got %v", err)
	}
	if _, err := s.DrawFromStock("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DrawFromStock: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Undo("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Undo: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Redeal("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Redeal: expected ErrNotFound, got %v", err)
	}
	if _, err := s.NewGame("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("NewGame: expected ErrNotFound, got %v", err)
	}
}

func TestClickSelectionToggle(t *testing.T) {
	s, snap := newTestGame(t, 1, 0)
	candidates := exposedNonKings(snap)
	if len(candidates) == 0 {
		t.Fatalf("fresh board has no exposed non-King cards")
	}
	loc := domain.PyramidLocation(candidates[0].Row, candidates[0].Col)
	snap, err := s.Click(snap.ID, loc)
	if err != nil {
		t.Fatalf("click failed: %v", err)
	}
	if snap.Selected == nil || *snap.Selected != loc {
		t.Fatalf("expected %v selected, got %v", loc, snap.Selected)
	}
	snap, _ = s.Click(snap.ID, loc)
	if snap.Selected != nil {
		t.Fatalf("second click should deselect, got %v", snap.Selected)
	}
}

func TestClickCoveredCard(t *testing.T) {
	s, snap := newTestGame(t, 1, 0)
	snap, err := s.Click(snap.ID, domain.PyramidLocation(0, 0))
	if err != nil {
		t.Fatalf("click failed: %v", err)
	}
	if snap.Status != StatusCardCovered {
		t.Fatalf("expected %q, got %q", StatusCardCovered, snap.Status)
	}
	if snap.Selected != nil {
		t.Fatalf("covered click must not select")
	}
}

func TestClickInvalidPair(t *testing.T) {
	s, snap := newTestGame(t, 1, 0)
	candidates := exposedNonKings(snap)
	// With at least three non-King cards exposed, some pair cannot sum
	// to 13 (equal sums would force equal values).
	var a, b *CellView
	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[i].Card.Value()+candidates[j].Card.Value() != 13 {
				a, b = &candidates[i], &candidates[j]
				break
			}
		}
		if a != nil {
			break
		}
	}
	if a == nil {
		t.Fatalf("no mismatched pair found among %d exposed cards", len(candidates))
	}
	s.Click(snap.ID, domain.PyramidLocation(a.Row, a.Col))
	snap, _ = s.Click(snap.ID, domain.PyramidLocation(b.Row, b.Col))
	if snap.Status != StatusInvalidPair {
		t.Fatalf("expected %q, got %q", StatusInvalidPair, snap.Status)
	}
	if snap.Selected != nil {
		t.Fatalf("selection should clear after a failed pair")
	}
	if snap.Removed != 0 {
		t.Fatalf("failed pair must not remove cards")
	}
}

// findKingGame creates seeded games until one has a King in its stock, then
// draws up to it. Games without a single King in 24 stock cards are rare,
// so a handful of seeds always suffices.
func findKingGame(t *testing.T, s *Service) *Snapshot {
	t.Helper()
	for seed := int64(1); seed <= 20; seed++ {
		snap, err := s.CreateGame(seedPtr(seed), 0)
		if err != nil {
			t.Fatalf("CreateGame error: %v", err)
		}
		for i := 0; i < 24; i++ {
			snap, err = s.DrawFromStock(snap.ID)
			if err != nil {
				t.Fatalf("draw error: %v", err)
			}
			if snap.HasWaste && snap.WasteCard.Value() == 13 {
				return snap
			}
		}
	}
	t.Fatalf("no seed in 1..20 put a King in the stock")
	return nil
}

func TestClickWasteKing(t *testing.T) {
	s := NewServiceWithRenderer(testRenderer)
	snap := findKingGame(t, s)
	wasteBefore := snap.WasteIndex
	snap, err := s.Click(snap.ID, domain.WasteLocation(snap.WasteIndex))
	if err != nil {
		t.Fatalf("click failed: %v", err)
	}
	if snap.Status != StatusKingRemoved {
		t.Fatalf("expected %q, got %q", StatusKingRemoved, snap.Status)
	}
	if snap.HasWaste && snap.WasteIndex >= wasteBefore {
		t.Fatalf("waste was not popped")
	}
	if snap.Removed != 0 {
		t.Fatalf("waste King must not change removedCount")
	}
}

func TestDrawAndStockEmpty(t *testing.T) {
	s, snap := newTestGame(t, 2, 0)
	var err error
	for i := 0; i < 24; i++ {
		snap, err = s.DrawFromStock(snap.ID)
		if err != nil {
			t.Fatalf("draw %d error: %v", i, err)
		}
		if snap.Status != "" {
			t.Fatalf("draw %d unexpected status %q", i, snap.Status)
		}
	}
	if snap.StockCount != 0 || snap.WasteIndex != 23 {
		t.Fatalf("after 24 draws: stock=%d wasteIndex=%d", snap.StockCount, snap.WasteIndex)
	}
	snap, _ = s.DrawFromStock(snap.ID)
	if snap.Status != StatusStockEmpty {
		t.Fatalf("expected %q, got %q", StatusStockEmpty, snap.Status)
	}
}

func TestStockClickAutoRedeals(t *testing.T) {
	s, snap := newTestGame(t, 2, 1)
	for i := 0; i < 24; i++ {
		snap, _ = s.DrawFromStock(snap.ID)
	}
	snap, _ = s.DrawFromStock(snap.ID)
	if snap.Status != StatusRedealt {
		t.Fatalf("expected %q, got %q", StatusRedealt, snap.Status)
	}
	if snap.StockCount != 24 || snap.HasWaste {
		t.Fatalf("after auto redeal: stock=%d hasWaste=%v", snap.StockCount, snap.HasWaste)
	}
	if snap.RedealsUsed != 1 {
		t.Fatalf("redealsUsed = %d, want 1", snap.RedealsUsed)
	}
}

func TestRedealButtonUnavailable(t *testing.T) {
	s, snap := newTestGame(t, 3, 0)
	snap, err := s.Redeal(snap.ID)
	if err != nil {
		t.Fatalf("redeal error: %v", err)
	}
	if snap.Status != StatusRedealUnavailable {
		t.Fatalf("expected %q, got %q", StatusRedealUnavailable, snap.Status)
	}
}

func TestUndo(t *testing.T) {
	s, snap := newTestGame(t, 4, 0)
	snap, _ = s.Undo(snap.ID)
	if snap.Status != StatusNothingToUndo {
		t.Fatalf("expected %q, got %q", StatusNothingToUndo, snap.Status)
	}
	snap, _ = s.DrawFromStock(snap.ID)
	if snap.StockCount != 23 {
		t.Fatalf("draw did not reach the waste")
	}
	snap, _ = s.Undo(snap.ID)
	if snap.Status != "" || snap.StockCount != 24 || snap.HasWaste {
		t.Fatalf("undo did not restore: status=%q stock=%d waste=%v", snap.Status, snap.StockCount, snap.HasWaste)
	}
}

func TestNewGamePreservesSeed(t *testing.T) {
	s, first := newTestGame(t, 5, 0)
	moved, _ := s.DrawFromStock(first.ID)
	if moved.StockCount != 23 {
		t.Fatalf("setup draw failed")
	}
	snap, err := s.NewGame(first.ID)
	if err != nil {
		t.Fatalf("new game error: %v", err)
	}
	if snap.Status != StatusNewGame {
		t.Fatalf("expected %q, got %q", StatusNewGame, snap.Status)
	}
	if snap.StockCount != 24 || snap.HasWaste {
		t.Fatalf("reset did not redeal")
	}
	for i, cell := range snap.Cells {
		if cell.Card != first.Cells[i].Card || cell.Present != first.Cells[i].Present {
			t.Fatalf("seeded reset changed the layout at cell %d", i)
		}
	}
}

func TestSubscribeAndBroadcast(t *testing.T) {
	s, snap := newTestGame(t, 6, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	ch, unsub := s.Subscribe(ctx, snap.ID)
	defer unsub()

	if _, err := s.DrawFromStock(snap.ID); err != nil {
		t.Fatalf("draw failed: %v", err)
	}

	select {
	case b, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed unexpectedly")
		}
		if string(b) != "stock=23" {
			t.Fatalf("unexpected broadcast payload: %q", string(b))
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for broadcast")
	}
}

func TestDropSlowSubscriber(t *testing.T) {
	s, snap := newTestGame(t, 7, 0)

	// Slow subscriber: never read
	ctxSlow, cancelSlow := context.WithCancel(context.Background())
	slowCh, _ := s.Subscribe(ctxSlow, snap.ID)
	_ = slowCh // intentionally not read

	// Fast subscriber: will read
	ctxFast, cancelFast := context.WithTimeout(context.Background(), time.Second*2)
	defer cancelFast()
	fastCh, unsubFast := s.Subscribe(ctxFast, snap.ID)
	defer unsubFast()

	// Two quick updates; slow should be dropped to avoid blocking fast
	if _, err := s.DrawFromStock(snap.ID); err != nil {
		t.Fatalf("draw1: %v", err)
	}
	if _, err := s.DrawFromStock(snap.ID); err != nil {
		t.Fatalf("draw2: %v", err)
	}

	// Fast still receives the latest
	got := 0
	for got < 2 {
		select {
		case <-fastCh:
			got++
		case <-ctxFast.Done():
			t.Fatalf("fast subscriber did not receive updates in time")
		}
	}

	// Slow subscriber should be dropped; cancel context and ensure channel closes
	cancelSlow()
}
