package plymg

// Perft counts the leaf positions reachable in exactly depth plies.
func Perft[W Word](p *Position[W], depth int) uint64 {
	if depth == 0 {
		return 1
	}
	succ := Successors(p)
	if depth == 1 {
		return uint64(len(succ))
	}
	var nodes uint64
	for _, s := range succ {
		nodes += Perft(s.Position, depth-1)
	}
	return nodes
}

// PerftDivide returns the perft count below each root move.
func PerftDivide[W Word](p *Position[W], depth int) map[Move]uint64 {
	result := make(map[Move]uint64)
	if depth <= 0 {
		return result
	}
	for _, s := range Successors(p) {
		result[s.Move] = Perft(s.Position, depth-1)
	}
	return result
}
