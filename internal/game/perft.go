package game

// Perft counts the leaf nodes of the legal move tree to the given depth.
// It is the standard check of move generation correctness.
func (s *State) Perft(depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := s.LegalMoves()
	if depth == 1 {
		return int64(len(moves))
	}

	var nodes int64
	for _, m := range moves {
		s.MakeMove(m)
		nodes += s.Perft(depth - 1)
		s.UndoMove()
	}
	return nodes
}

// Divide returns the perft count below each root move, keyed by long
// algebraic notation.
func (s *State) Divide(depth int) map[string]int64 {
	result := make(map[string]int64)
	if depth < 1 {
		return result
	}
	for _, m := range s.LegalMoves() {
		s.MakeMove(m)
		result[m.UCI()] = s.Perft(depth - 1)
		s.UndoMove()
	}
	return result
}
