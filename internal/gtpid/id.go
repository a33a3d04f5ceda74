// Package gtpid implements the pure id-scheme helpers the distributed
// master uses to recover a slave's position in the command history. The
// scheme packs a move number and a reply-required flag into a single
// decimal token: move + entropy*DistGameLen. A zero-entropy id (one
// strictly below DistGameLen) carries no reply-required bit and is only
// ever produced by demoting a live id, never minted directly.
package gtpid

import "fmt"

// DistGameLen bounds the move number component of an id. It must exceed
// MaxGameLen so that move_number(id) never collides with the entropy
// component regardless of how many moves a round runs.
const DistGameLen = 10000

// MaxGameLen is the largest move number the history table indexes.
const MaxGameLen = 700

// MaxCmdsPerMove caps the number of distinct command ids remembered per
// move: kgs-rules, boardsize, clear_board, time_settings, komi, handicap,
// genmoves, play, play, final_status_list in the originating application.
const MaxCmdsPerMove = 10

// EntropySource supplies the random bits force_reply mixes into an id.
// Random-number generation is an external collaborator; callers inject
// their own source rather than this package reaching for math/rand.
type EntropySource interface {
	// Intn returns a value in [0, n). n is always positive.
	Intn(n int) int
}

// MoveNumber extracts the move number encoded in id.
func MoveNumber(id int) int {
	return id % DistGameLen
}

// ReplyRequired reports whether id carries the reply-required bit, i.e.
// whether it was minted by ForceReply rather than produced by PreventReply.
func ReplyRequired(id int) bool {
	return id >= DistGameLen
}

// ForceReply mints an id for the given move with the reply-required bit
// set. The entropy component is drawn from [1, 65535] so it is never zero
// — a zero entropy component would make the id indistinguishable from a
// demoted one.
func ForceReply(move int, entropy EntropySource) int {
	e := 1 + entropy.Intn(65535)
	return move + e*DistGameLen
}

// PreventReply returns the no-reply-required form of id: its move number,
// stripped of any entropy component. This is always less than
// DistGameLen, which is exactly what marks it as reply-not-required.
func PreventReply(id int) int {
	return MoveNumber(id)
}

// FormatID renders id as a zero-padded decimal of the given width, used to
// rewrite an id in place within the command buffer without changing the
// byte length of the line it lives in.
func FormatID(id, width int) string {
	return fmt.Sprintf("%0*d", width, id)
}

// Classifier answers the two predicates the id scheme needs from the
// command grammar. The grammar itself is an external collaborator (spec
// treats command words as opaque); callers supply their own classifier.
type Classifier interface {
	// IsReset reports whether word resets history indexing to move 0,
	// even if the round itself continues (e.g. a mid-round board clear).
	IsReset(word string) bool
	// IsGameStart reports whether word starts an entirely new round,
	// wiping the command buffer and history table.
	IsGameStart(word string) bool
}
