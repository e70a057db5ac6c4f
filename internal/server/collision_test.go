package server

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func testPlayer(id string, x, y float64) *Player {
	return &Player{ID: id, Name: id, X: x, Y: y}
}

func TestResolveCollisionsSymmetricPush(t *testing.T) {
	a := testPlayer("a", 400, 300)
	b := testPlayer("b", 420, 300)
	resolveCollisions([]*Player{a, b})

	// Overlap depth is 64-20=44; each side gives way by 22.
	if math.Abs(a.X-378) > tolerance || math.Abs(b.X-442) > tolerance {
		t.Fatalf("positions = %v and %v, want 378 and 442", a.X, b.X)
	}
	if a.Y != 300 || b.Y != 300 {
		t.Fatalf("push leaked onto the y axis: %v, %v", a.Y, b.Y)
	}
}

func TestResolveCollisionsSeparatedPlayersUntouched(t *testing.T) {
	a := testPlayer("a", 100, 100)
	b := testPlayer("b", 300, 300)
	resolveCollisions([]*Player{a, b})

	if a.X != 100 || a.Y != 100 || b.X != 300 || b.Y != 300 {
		t.Fatal("non-overlapping players were displaced")
	}
}

func TestResolveCollisionsNeverLeavesArena(t *testing.T) {
	cases := []struct {
		name string
		ax, ay, bx, by float64
	}{
		{"left edge", playerSize / 2, 300, playerSize/2 + 10, 300},
		{"right edge", arenaWidth - playerSize/2 - 10, 300, arenaWidth - playerSize/2, 300},
		{"top edge", 400, playerSize / 2, 400, playerSize/2 + 5},
		{"corner", playerSize / 2, playerSize / 2, playerSize/2 + 1, playerSize/2 + 1},
	}

	for _, tc := range cases {
		a := testPlayer("a", tc.ax, tc.ay)
		b := testPlayer("b", tc.bx, tc.by)
		resolveCollisions([]*Player{a, b})

		for _, p := range []*Player{a, b} {
			if p.X < playerSize/2 || p.X > arenaWidth-playerSize/2 ||
				p.Y < playerSize/2 || p.Y > arenaHeight-playerSize/2 {
				t.Errorf("%s: player %s pushed out of bounds to (%v, %v)", tc.name, p.ID, p.X, p.Y)
			}
		}
	}
}

func TestResolveCollisionsOrderIndependent(t *testing.T) {
	build := func() []*Player {
		return []*Player{
			testPlayer("a", 380, 300),
			testPlayer("b", 410, 300),
			testPlayer("c", 440, 310),
		}
	}

	forward := build()
	resolveCollisions(forward)

	reversed := build()
	resolveCollisions([]*Player{reversed[2], reversed[1], reversed[0]})

	for i := range forward {
		f, r := forward[i], reversed[i]
		if math.Abs(f.X-r.X) > tolerance || math.Abs(f.Y-r.Y) > tolerance {
			t.Fatalf("player %s rests at (%v, %v) forward but (%v, %v) reversed",
				f.ID, f.X, f.Y, r.X, r.Y)
		}
	}
}

func TestResolveCollisionsCoincidentCenters(t *testing.T) {
	a := testPlayer("a", 400, 300)
	b := testPlayer("b", 400, 300)
	resolveCollisions([]*Player{a, b})

	if a.X >= b.X {
		t.Fatalf("coincident players not separated deterministically: %v, %v", a.X, b.X)
	}
	if a.Y != 300 || b.Y != 300 {
		t.Fatalf("coincident fallback must push along x only, got y %v and %v", a.Y, b.Y)
	}
}
