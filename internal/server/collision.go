package server

import "math"

// resolveCollisions runs one soft-push pass over every unordered pair.
// Overlapping players are displaced symmetrically along the vector
// connecting them, half the overlap depth each. Displacements are
// accumulated against the pre-pass positions and applied afterwards, so
// the resting configuration does not depend on pair order. Results are
// clamped to the arena.
func resolveCollisions(players []*Player) {
	n := len(players)
	if n < 2 {
		return
	}

	pushX := make([]float64, n)
	pushY := make([]float64, n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := players[i], players[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Hypot(dx, dy)
			if dist >= collisionRadius {
				continue
			}

			var ux, uy float64
			if dist > 0 {
				ux, uy = dx/dist, dy/dist
			} else {
				// Coincident centers: push along x, deterministically.
				ux, uy = 1, 0
			}

			depth := collisionRadius - dist
			pushX[i] -= ux * depth / 2
			pushY[i] -= uy * depth / 2
			pushX[j] += ux * depth / 2
			pushY[j] += uy * depth / 2
		}
	}

	for i, p := range players {
		p.X = clampToArena(p.X+pushX[i], arenaWidth)
		p.Y = clampToArena(p.Y+pushY[i], arenaHeight)
	}
}
