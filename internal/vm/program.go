package vm

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/tokay-lang/tokay/internal/reader"
	"github.com/tokay-lang/tokay/internal/value"
)

// Program is the finished, ordered static table produced by lowering
// (spec.md §4.6) — the load-bearing artifact a Thread runs. Parselet 0 is
// always `__main__` (spec.md §3), the entry point `tokay run` invokes.
type Program struct {
	Statics   []*value.RefValue // index space shared by LoadStatic/CallStatic
	Offsets   []reader.Offset   // table referenced by OpOffset
	Globals   int               // number of global variable slots
}

// NewProgram creates an empty Program with __main__ reserved at index 0.
func NewProgram() *Program {
	return &Program{Statics: []*value.RefValue{nil}}
}

// AddStatic appends v to the static table and returns its index.
func (p *Program) AddStatic(v *value.RefValue) int {
	p.Statics = append(p.Statics, v)
	return len(p.Statics) - 1
}

// AddOffset appends o to the offset table and returns its index.
func (p *Program) AddOffset(o reader.Offset) int {
	p.Offsets = append(p.Offsets, o)
	return len(p.Offsets) - 1
}

// Main returns the entry parselet (static index 0).
func (p *Program) Main() *Parselet {
	if len(p.Statics) == 0 || p.Statics[0] == nil {
		return nil
	}
	pl, _ := p.Statics[0].Object().(*Parselet)
	return pl
}

// SetMain installs pl as the entry parselet at static index 0.
func (p *Program) SetMain(pl *Parselet) {
	if len(p.Statics) == 0 {
		p.Statics = append(p.Statics, nil)
	}
	p.Statics[0] = value.NewRef(pl)
}

// Disassemble renders every parselet's begin/body/end sequences as text,
// the backing of `tokay disasm` (SPEC_FULL.md §1.1).
func (p *Program) Disassemble() string {
	var sb strings.Builder
	for i, s := range p.Statics {
		if s == nil {
			continue
		}
		pl, ok := s.Object().(*Parselet)
		if !ok {
			continue
		}
		name := pl.Name
		if name == "" {
			name = "anonymous"
		}
		sb.WriteString("parselet #")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(" ")
		sb.WriteString(name)
		sb.WriteString("\n")
		disasmSection(&sb, "begin", pl.Begin)
		disasmSection(&sb, "body", pl.Body)
		disasmSection(&sb, "end", pl.End)
	}
	return sb.String()
}

func disasmSection(sb *strings.Builder, title string, ops []Op) {
	if len(ops) == 0 {
		return
	}
	sb.WriteString("  .")
	sb.WriteString(title)
	sb.WriteString("\n")
	for i, op := range ops {
		sb.WriteString("    ")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(": ")
		sb.WriteString(op.String())
		sb.WriteString("\n")
	}
}

// programBlob is the go-yaml serializable shadow of Program (spec.md's
// Program/C14 "serialize a compiled grammar to a portable blob"). Op is
// flattened to plain scalars since Op carries a Code enum go-yaml doesn't
// know how to marshal directly.
type programBlob struct {
	Globals  int              `yaml:"globals"`
	Statics  []staticBlob     `yaml:"statics"`
	Offsets  []offsetBlob     `yaml:"offsets"`
}

type offsetBlob struct {
	ByteOffset uint64 `yaml:"byte_offset"`
	Row        uint32 `yaml:"row"`
	Col        uint32 `yaml:"col"`
}

type staticBlob struct {
	Kind     string     `yaml:"kind"` // "void","null","bool","int","float","str","parselet"
	Bool     bool       `yaml:"bool,omitempty"`
	Int      string     `yaml:"int,omitempty"` // decimal, arbitrary precision
	Float    float64    `yaml:"float,omitempty"`
	Str      string     `yaml:"str,omitempty"`
	Parselet *parseletBlob `yaml:"parselet,omitempty"`
}

type parseletBlob struct {
	Name          string  `yaml:"name"`
	ConsumingSet  bool    `yaml:"consuming_set"`
	LeftRecursive bool    `yaml:"left_recursive"`
	Severity      uint8   `yaml:"severity"`
	Locals        int     `yaml:"locals"`
	Params        []string `yaml:"params"`
	Begin         []opBlob `yaml:"begin"`
	Body          []opBlob `yaml:"body"`
	End           []opBlob `yaml:"end"`
}

type opBlob struct {
	Code int    `yaml:"code"`
	A    int    `yaml:"a,omitempty"`
	B    int    `yaml:"b,omitempty"`
	Str  string `yaml:"str,omitempty"`
}

// MarshalYAML serializes the Program to the portable blob format (spec.md
// domain stack: go-yaml).
func (p *Program) MarshalYAML() ([]byte, error) {
	blob := programBlob{Globals: p.Globals}
	for _, o := range p.Offsets {
		blob.Offsets = append(blob.Offsets, offsetBlob{ByteOffset: o.ByteOffset, Row: o.Row, Col: o.Col})
	}
	for _, s := range p.Statics {
		blob.Statics = append(blob.Statics, staticToBlob(s))
	}
	return yaml.Marshal(blob)
}

// UnmarshalProgramYAML parses the portable blob format back into a live
// Program.
func UnmarshalProgramYAML(data []byte) (*Program, error) {
	var blob programBlob
	if err := yaml.Unmarshal(data, &blob); err != nil {
		return nil, err
	}
	p := &Program{Globals: blob.Globals}
	for _, o := range blob.Offsets {
		p.Offsets = append(p.Offsets, reader.Offset{ByteOffset: o.ByteOffset, Row: o.Row, Col: o.Col})
	}
	for _, s := range blob.Statics {
		p.Statics = append(p.Statics, blobToStatic(s))
	}
	return p, nil
}

func staticToBlob(v *value.RefValue) staticBlob {
	if v == nil {
		return staticBlob{Kind: "void"}
	}
	switch o := v.Object().(type) {
	case value.Void:
		return staticBlob{Kind: "void"}
	case value.Null:
		return staticBlob{Kind: "null"}
	case value.Bool:
		return staticBlob{Kind: "bool", Bool: bool(o)}
	case value.Int:
		return staticBlob{Kind: "int", Int: o.V.String()}
	case value.Float:
		return staticBlob{Kind: "float", Float: float64(o)}
	case value.Str:
		return staticBlob{Kind: "str", Str: string(o)}
	case *Parselet:
		return staticBlob{Kind: "parselet", Parselet: parseletToBlob(o)}
	default:
		return staticBlob{Kind: "str", Str: o.Repr()}
	}
}

func blobToStatic(b staticBlob) *value.RefValue {
	switch b.Kind {
	case "null":
		return value.NullValue
	case "bool":
		return value.BoolRef(b.Bool)
	case "int":
		bi, ok := new(big.Int).SetString(b.Int, 10)
		if !ok {
			bi = big.NewInt(0)
		}
		return value.NewIntFromBig(bi)
	case "float":
		return value.NewFloat(b.Float)
	case "str":
		return value.NewStr(b.Str)
	case "parselet":
		return value.NewRef(blobToParselet(b.Parselet))
	default:
		return value.VoidValue
	}
}

func parseletToBlob(pl *Parselet) *parseletBlob {
	pb := &parseletBlob{
		Name:          pl.Name,
		ConsumingSet:  pl.Consuming.Set,
		LeftRecursive: pl.Consuming.LeftRecursive,
		Severity:      uint8(pl.Sev),
		Locals:        pl.Locals,
		Params:        pl.paramNames(),
		Begin:         opsToBlob(pl.Begin),
		Body:          opsToBlob(pl.Body),
		End:           opsToBlob(pl.End),
	}
	return pb
}

func blobToParselet(pb *parseletBlob) *Parselet {
	pl := &Parselet{
		Name:      pb.Name,
		Consuming: Consuming{Set: pb.ConsumingSet, LeftRecursive: pb.LeftRecursive},
		Sev:       value.Severity(pb.Severity),
		Locals:    pb.Locals,
		Begin:     blobToOps(pb.Begin),
		Body:      blobToOps(pb.Body),
		End:       blobToOps(pb.End),
	}
	for _, n := range pb.Params {
		pl.Signature = append(pl.Signature, Param{Name: n})
	}
	return pl
}

func opsToBlob(ops []Op) []opBlob {
	out := make([]opBlob, len(ops))
	for i, op := range ops {
		out[i] = opBlob{Code: int(op.Code), A: op.A, B: op.B, Str: op.Str}
	}
	return out
}

func blobToOps(blobs []opBlob) []Op {
	out := make([]Op, len(blobs))
	for i, b := range blobs {
		out[i] = Op{Code: Code(b.Code), A: b.A, B: b.B, Str: b.Str}
	}
	return out
}

