package vm

// memoKey identifies one packrat memo table entry: the parselet being
// matched and the byte offset it was attempted at (spec.md §4.9 — "memo
// table keyed by (byte_offset, parselet_id)").
type memoKey struct {
	byteOffset int
	parselet   int // static index of the parselet in Program.Statics
}

// memoEntry is a cached match result: either an accept (with the reader
// position it left the input at) or a reject.
type memoEntry struct {
	accept     Accept
	reject     Reject
	isReject   bool
	endOffset  int
}
