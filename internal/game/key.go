package game

import "github.com/cespare/xxhash/v2"

// Key returns a 64-bit hash of everything that determines the legal moves from
// here on: piece placement, side to move, castling rights and en passant target.
// The clocks and the move log are not part of the key.
func (s *State) Key() uint64 {
	var buf [64 + 4]byte
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			buf[r*8+c] = byte(s.board[r][c])
		}
	}
	if s.whiteToMove {
		buf[64] = 1
	}
	buf[65] = byte(s.castlingRights)
	buf[66] = byte(s.enPassant.Row + 1)
	buf[67] = byte(s.enPassant.Col + 1)
	return xxhash.Sum64(buf[:])
}
