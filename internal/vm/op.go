// Package vm implements the Tokay bytecode instruction set, the Program
// static table, the Parselet callable, and the packrat/fixed-point stack
// machine (Thread + Context) that executes it.
//
// These four concerns are kept in one package — rather than split across
// separate `bytecode`/`parselet`/`program` packages — because they are
// mutually recursive in the same way `original_source/src/vm/` bundles
// op.rs, program.rs, parselet.rs, context.rs and thread.rs into one Rust
// module: a Parselet's body is a vector of Op, a Program is a table of
// static values that includes compiled Parselets, and the executor needs
// all three to run a single CallStatic. Splitting them would just produce
// an import cycle through three packages instead of one.
package vm

import "fmt"

// Code identifies a bytecode instruction. The set mirrors spec.md §4.3's Op
// enumeration. Ops carry enough operand shape variety (plain indices,
// (idx,n) pairs, jump deltas, and the rare string payload on Error) that a
// tagged struct reads far more clearly than a bit-packed single-word
// encoding would, so Op below is a small struct rather than a machine word.
type Code int

const (
	// --- Stack & locals ---
	OpLoadStatic Code = iota
	OpPushVoid
	OpPushNull
	OpPushTrue
	OpPushFalse
	OpPush0
	OpPush1
	OpLoadFast
	OpStoreFast
	OpStoreFastHold
	OpLoadGlobal
	OpStoreGlobal
	OpCopy
	OpDrop
	OpRot2
	OpDup

	// --- Captures ---
	OpLoadFastCapture
	OpLoadCapture
	OpStoreFastCapture
	OpStoreCapture
	OpStoreFastCaptureHold
	OpStoreCaptureHold
	OpMakeAlias

	// --- Arithmetic / compare ---
	OpBinary
	OpUnary

	// --- Control flow ---
	OpForward
	OpBackward
	OpForwardIfTrue
	OpForwardIfFalse
	OpForwardIfConsumed
	OpForwardIfNotVoid

	// --- Framing ---
	OpFrame
	OpFuse
	OpReset
	OpResetCapture
	OpCollect
	OpClose

	// --- Calls ---
	OpCall
	OpCallArg
	OpCallArgNamed
	OpCallStatic
	OpCallStaticArg
	OpCallStaticArgNamed

	// --- Escape / return ---
	OpAccept
	OpBreak
	OpContinue
	OpExit
	OpPush
	OpRepeat
	OpReject
	OpNext
	OpLoadAccept
	OpLoadBreak
	OpLoadExit
	OpLoadPush
	OpLoadRepeat
	OpError
	OpOffset

	// --- Construction ---
	OpMakeList
	OpMakeDict
	OpLoadAttr
	OpLoadIndex
	OpStoreIndex
	OpStoreIndexHold

	opMax
)

var codeNames = [...]string{
	OpLoadStatic:           "LOAD_STATIC",
	OpPushVoid:             "PUSH_VOID",
	OpPushNull:             "PUSH_NULL",
	OpPushTrue:             "PUSH_TRUE",
	OpPushFalse:            "PUSH_FALSE",
	OpPush0:                "PUSH_0",
	OpPush1:                "PUSH_1",
	OpLoadFast:             "LOAD_FAST",
	OpStoreFast:            "STORE_FAST",
	OpStoreFastHold:        "STORE_FAST_HOLD",
	OpLoadGlobal:           "LOAD_GLOBAL",
	OpStoreGlobal:          "STORE_GLOBAL",
	OpCopy:                 "COPY",
	OpDrop:                 "DROP",
	OpRot2:                 "ROT2",
	OpDup:                  "DUP",
	OpLoadFastCapture:      "LOAD_FAST_CAPTURE",
	OpLoadCapture:          "LOAD_CAPTURE",
	OpStoreFastCapture:     "STORE_FAST_CAPTURE",
	OpStoreCapture:         "STORE_CAPTURE",
	OpStoreFastCaptureHold: "STORE_FAST_CAPTURE_HOLD",
	OpStoreCaptureHold:     "STORE_CAPTURE_HOLD",
	OpMakeAlias:            "MAKE_ALIAS",
	OpBinary:               "BINARY_OP",
	OpUnary:                "UNARY_OP",
	OpForward:              "FORWARD",
	OpBackward:             "BACKWARD",
	OpForwardIfTrue:        "FORWARD_IF_TRUE",
	OpForwardIfFalse:       "FORWARD_IF_FALSE",
	OpForwardIfConsumed:    "FORWARD_IF_CONSUMED",
	OpForwardIfNotVoid:     "FORWARD_IF_NOT_VOID",
	OpFrame:                "FRAME",
	OpFuse:                 "FUSE",
	OpReset:                "RESET",
	OpResetCapture:         "RESET_CAPTURE",
	OpCollect:              "COLLECT",
	OpClose:                "CLOSE",
	OpCall:                 "CALL",
	OpCallArg:              "CALL_ARG",
	OpCallArgNamed:         "CALL_ARG_NAMED",
	OpCallStatic:           "CALL_STATIC",
	OpCallStaticArg:        "CALL_STATIC_ARG",
	OpCallStaticArgNamed:   "CALL_STATIC_ARG_NAMED",
	OpAccept:               "ACCEPT",
	OpBreak:                "BREAK",
	OpContinue:             "CONTINUE",
	OpExit:                 "EXIT",
	OpPush:                 "PUSH",
	OpRepeat:               "REPEAT",
	OpReject:               "REJECT",
	OpNext:                 "NEXT",
	OpLoadAccept:           "LOAD_ACCEPT",
	OpLoadBreak:            "LOAD_BREAK",
	OpLoadExit:             "LOAD_EXIT",
	OpLoadPush:             "LOAD_PUSH",
	OpLoadRepeat:           "LOAD_REPEAT",
	OpError:                "ERROR",
	OpOffset:               "OFFSET",
	OpMakeList:             "MAKE_LIST",
	OpMakeDict:             "MAKE_DICT",
	OpLoadAttr:             "LOAD_ATTR",
	OpLoadIndex:            "LOAD_INDEX",
	OpStoreIndex:           "STORE_INDEX",
	OpStoreIndexHold:       "STORE_INDEX_HOLD",
}

func (c Code) String() string {
	if int(c) >= 0 && int(c) < len(codeNames) && codeNames[c] != "" {
		return codeNames[c]
	}
	return "UNKNOWN"
}

// Op is a single bytecode instruction. A is the primary operand (a slot,
// static index, jump delta, or collect-flags bitset depending on Code); B
// is the secondary operand used by the CallStatic*Arg family's (idx, n)
// pair. Str carries BinaryOp/UnaryOp's operator name or Error's optional
// message.
type Op struct {
	Code Code
	A    int
	B    int
	Str  string
}

// Collect flag bits packed into Op.A for OpCollect; Op.B carries the
// severity floor.
const (
	CollectCopy    = 1 << 0
	CollectSingle  = 1 << 1
	CollectInherit = 1 << 2
)

func simple(c Code) Op             { return Op{Code: c} }
func withA(c Code, a int) Op       { return Op{Code: c, A: a} }
func withAB(c Code, a, b int) Op   { return Op{Code: c, A: a, B: b} }
func withStr(c Code, s string) Op  { return Op{Code: c, Str: s} }

// Constructors, one per spec §4.3 instruction, used by the lowering
// package so call sites read like the spec's own notation.
func LoadStatic(idx int) Op               { return withA(OpLoadStatic, idx) }
func PushVoid() Op                        { return simple(OpPushVoid) }
func PushNull() Op                        { return simple(OpPushNull) }
func PushTrue() Op                        { return simple(OpPushTrue) }
func PushFalse() Op                       { return simple(OpPushFalse) }
func Push0() Op                           { return simple(OpPush0) }
func Push1() Op                           { return simple(OpPush1) }
func LoadFast(slot int) Op                { return withA(OpLoadFast, slot) }
func StoreFast(slot int) Op                { return withA(OpStoreFast, slot) }
func StoreFastHold(slot int) Op            { return withA(OpStoreFastHold, slot) }
func LoadGlobal(slot int) Op               { return withA(OpLoadGlobal, slot) }
func StoreGlobal(slot int) Op              { return withA(OpStoreGlobal, slot) }
func Copy(depth int) Op                    { return withA(OpCopy, depth) }
func Drop() Op                             { return simple(OpDrop) }
func Rot2() Op                             { return simple(OpRot2) }
func Dup() Op                              { return simple(OpDup) }
func LoadFastCapture(i int) Op             { return withA(OpLoadFastCapture, i) }
func LoadCapture() Op                      { return simple(OpLoadCapture) }
func StoreFastCapture(i int) Op            { return withA(OpStoreFastCapture, i) }
func StoreCapture() Op                     { return simple(OpStoreCapture) }
func StoreFastCaptureHold(i int) Op        { return withA(OpStoreFastCaptureHold, i) }
func StoreCaptureHold() Op                 { return simple(OpStoreCaptureHold) }
func MakeAlias() Op                        { return simple(OpMakeAlias) }
func BinaryOp(name string) Op              { return withStr(OpBinary, name) }
func UnaryOp(name string) Op               { return withStr(OpUnary, name) }
func Forward(n int) Op                     { return withA(OpForward, n) }
func Backward(n int) Op                    { return withA(OpBackward, n) }
func ForwardIfTrue(n int) Op               { return withA(OpForwardIfTrue, n) }
func ForwardIfFalse(n int) Op              { return withA(OpForwardIfFalse, n) }
func ForwardIfConsumed(n int) Op           { return withA(OpForwardIfConsumed, n) }
func ForwardIfNotVoid(n int) Op            { return withA(OpForwardIfNotVoid, n) }
func Frame(fuse int) Op                    { return withA(OpFrame, fuse) }
func Fuse(n int) Op                        { return withA(OpFuse, n) }
func Reset() Op                            { return simple(OpReset) }
func ResetCapture() Op                     { return simple(OpResetCapture) }
func Collect(flags, floor int) Op          { return withAB(OpCollect, flags, floor) }
func Close() Op                            { return simple(OpClose) }
func Call() Op                             { return simple(OpCall) }
func CallArg(n int) Op                     { return withA(OpCallArg, n) }
func CallArgNamed(n int) Op                { return withA(OpCallArgNamed, n) }
func CallStatic(idx int) Op                { return withA(OpCallStatic, idx) }
func CallStaticArg(idx, n int) Op          { return withAB(OpCallStaticArg, idx, n) }
func CallStaticArgNamed(idx, n int) Op     { return withAB(OpCallStaticArgNamed, idx, n) }
func Accept() Op                           { return simple(OpAccept) }
func Break() Op                            { return simple(OpBreak) }
func Continue() Op                         { return simple(OpContinue) }
func Exit() Op                             { return simple(OpExit) }
func Push() Op                             { return simple(OpPush) }
func Repeat() Op                           { return simple(OpRepeat) }
func Reject() Op                           { return simple(OpReject) }
func Next() Op                             { return simple(OpNext) }
func LoadAccept() Op                       { return simple(OpLoadAccept) }
func LoadBreak() Op                        { return simple(OpLoadBreak) }
func LoadExit() Op                         { return simple(OpLoadExit) }
func LoadPush() Op                         { return simple(OpLoadPush) }
func LoadRepeat() Op                       { return simple(OpLoadRepeat) }
func Error(msg string) Op                  { return withStr(OpError, msg) }
func OffsetOp(idx int) Op                  { return withA(OpOffset, idx) }
func MakeList(n int) Op                    { return withA(OpMakeList, n) }
func MakeDict(n int) Op                    { return withA(OpMakeDict, n) }
func LoadAttr() Op                         { return simple(OpLoadAttr) }
func LoadIndex() Op                        { return simple(OpLoadIndex) }
func StoreIndex() Op                       { return simple(OpStoreIndex) }
func StoreIndexHold() Op                   { return simple(OpStoreIndexHold) }

// String renders one disassembled instruction line, used by `tokay
// disasm` through Program.Disassemble.
func (op Op) String() string {
	switch op.Code {
	case OpBinary, OpUnary, OpError:
		if op.Str == "" {
			return op.Code.String()
		}
		return fmt.Sprintf("%s %q", op.Code, op.Str)
	case OpCallStaticArg, OpCallStaticArgNamed:
		return fmt.Sprintf("%s %d, %d", op.Code, op.A, op.B)
	case OpCollect:
		return fmt.Sprintf("%s flags=%d floor=%d", op.Code, op.A, op.B)
	case OpLoadStatic, OpLoadFast, OpStoreFast, OpStoreFastHold, OpLoadGlobal,
		OpStoreGlobal, OpCopy, OpLoadFastCapture, OpStoreFastCapture,
		OpStoreFastCaptureHold, OpForward, OpBackward, OpForwardIfTrue,
		OpForwardIfFalse, OpForwardIfConsumed, OpForwardIfNotVoid, OpFrame,
		OpFuse, OpCallArg, OpCallArgNamed, OpCallStatic, OpOffset,
		OpMakeList, OpMakeDict:
		return fmt.Sprintf("%s %d", op.Code, op.A)
	default:
		return op.Code.String()
	}
}
