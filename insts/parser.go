package insts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse errors. A *ParseError wraps one of these.
var (
	ErrUnknownOp      = errors.New("unknown operation")
	ErrBadRegister    = errors.New("bad register")
	ErrBadOperands    = errors.New("bad operands")
	ErrBadImmediate   = errors.New("bad immediate")
	ErrUndefinedLabel = errors.New("undefined label")
	ErrDuplicateLabel = errors.New("duplicate label")
)

// ParseError reports a malformed source line.
type ParseError struct {
	Line int    // 1-based source line
	Text string // offending line, comments stripped
	Err  error  // one of the Err* sentinels
	Msg  string // detail
}

func (e *ParseError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("line %d: %v: %s: %q", e.Line, e.Err, e.Msg, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// sourceLine is one instruction-bearing line after comment and label removal.
type sourceLine struct {
	line   int
	text   string
	tokens []string
}

// Parser turns assembly text into a program.
type Parser struct {
	labels map[string]int
	lines  []sourceLine
}

// NewParser creates a new parser.
func NewParser() *Parser {
	return &Parser{labels: make(map[string]int)}
}

// Parse parses an entire assembly source.
func Parse(src string) ([]Instruction, error) {
	return NewParser().Parse(src)
}

// Parse parses src. Blank and comment-only lines do not consume an
// instruction index. Labels are resolved after the whole source is scanned,
// so forward branches work.
func (p *Parser) Parse(src string) ([]Instruction, error) {
	p.labels = make(map[string]int)
	p.lines = p.lines[:0]

	for n, raw := range strings.Split(src, "\n") {
		if err := p.scanLine(n+1, raw); err != nil {
			return nil, err
		}
	}

	prog := make([]Instruction, 0, len(p.lines))
	for idx, sl := range p.lines {
		inst, err := p.parseInstruction(sl, idx)
		if err != nil {
			return nil, err
		}
		prog = append(prog, inst)
	}

	return prog, nil
}

func (p *Parser) scanLine(lineNo int, raw string) error {
	s := strings.ToLower(strings.TrimSpace(stripComment(raw)))

	for {
		colon := strings.IndexByte(s, ':')
		if colon < 0 {
			break
		}
		label := strings.TrimSpace(s[:colon])
		if !isIdent(label) {
			return &ParseError{Line: lineNo, Text: s, Err: ErrBadOperands, Msg: "bad label"}
		}
		if _, dup := p.labels[label]; dup {
			return &ParseError{Line: lineNo, Text: s, Err: ErrDuplicateLabel, Msg: label}
		}
		p.labels[label] = len(p.lines)
		s = strings.TrimSpace(s[colon+1:])
	}

	if s == "" {
		return nil
	}

	p.lines = append(p.lines, sourceLine{line: lineNo, text: s, tokens: tokenize(s)})
	return nil
}

func (p *Parser) parseInstruction(sl sourceLine, idx int) (Instruction, error) {
	inst := Instruction{Index: idx, Text: sl.text}
	toks := sl.tokens
	fail := func(err error, msg string) (Instruction, error) {
		return Instruction{}, &ParseError{Line: sl.line, Text: sl.text, Err: err, Msg: msg}
	}

	switch toks[0] {
	case "nop":
		if len(toks) != 1 {
			return fail(ErrBadOperands, "nop takes no operands")
		}
		return Nop(idx), nil

	case "add", "sub":
		if len(toks) != 4 {
			return fail(ErrBadOperands, "expected: add/sub rd, rs, rt")
		}
		inst.Op = OpADD
		if toks[0] == "sub" {
			inst.Op = OpSUB
		}
		regs, err := parseRegs(toks[1:]...)
		if err != nil {
			return fail(ErrBadRegister, err.Error())
		}
		inst.Rd, inst.Rs, inst.Rt = regs[0], regs[1], regs[2]

	case "lw", "sw":
		if len(toks) != 4 {
			return fail(ErrBadOperands, "expected: lw/sw rt, imm(rs)")
		}
		inst.Op = OpLW
		if toks[0] == "sw" {
			inst.Op = OpSW
		}
		regs, err := parseRegs(toks[1], toks[3])
		if err != nil {
			return fail(ErrBadRegister, err.Error())
		}
		inst.Rt, inst.Rs = regs[0], regs[1]
		imm, err := parseImm(toks[2])
		if err != nil {
			return fail(ErrBadImmediate, err.Error())
		}
		inst.Imm = imm

	case "beq":
		if len(toks) != 4 {
			return fail(ErrBadOperands, "expected: beq rs, rt, imm")
		}
		inst.Op = OpBEQ
		regs, err := parseRegs(toks[1], toks[2])
		if err != nil {
			return fail(ErrBadRegister, err.Error())
		}
		inst.Rs, inst.Rt = regs[0], regs[1]

		if isIdent(toks[3]) {
			target, ok := p.labels[toks[3]]
			if !ok {
				return fail(ErrUndefinedLabel, toks[3])
			}
			inst.Imm = int32(target - (idx + 1))
		} else {
			imm, err := parseImm(toks[3])
			if err != nil {
				return fail(ErrBadImmediate, err.Error())
			}
			inst.Imm = imm
		}

	default:
		return fail(ErrUnknownOp, toks[0])
	}

	return inst, nil
}

// stripComment removes '#' and '//' comments.
func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	return s
}

// tokenize splits on whitespace, commas and parentheses.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '(' || r == ')'
	})
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	// Register names are not labels.
	_, err := ParseRegister(s)
	return err != nil
}

// ParseRegister parses "rN" or "$N" with N in [0,31].
func ParseRegister(tok string) (uint8, error) {
	t := strings.ToLower(tok)
	if len(t) < 2 || (t[0] != 'r' && t[0] != '$') {
		return 0, fmt.Errorf("bad register token %q", tok)
	}
	v, err := strconv.Atoi(t[1:])
	if err != nil {
		return 0, fmt.Errorf("bad register token %q", tok)
	}
	if v < 0 || v >= NumRegs {
		return 0, fmt.Errorf("register out of range: %s", tok)
	}
	return uint8(v), nil
}

func parseRegs(toks ...string) ([]uint8, error) {
	regs := make([]uint8, len(toks))
	for i, t := range toks {
		r, err := ParseRegister(t)
		if err != nil {
			return nil, err
		}
		regs[i] = r
	}
	return regs, nil
}

// parseImm accepts an optionally signed decimal or 0x-prefixed hex value
// that fits a 16-bit field, signed or unsigned.
func parseImm(tok string) (int32, error) {
	digits := tok
	neg := false
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		neg = digits[0] == '-'
		digits = digits[1:]
	}

	base := 10
	if strings.HasPrefix(digits, "0x") {
		base = 16
		digits = digits[2:]
	}

	u, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, fmt.Errorf("bad immediate %q", tok)
	}

	v := int64(u)
	if neg {
		v = -v
	}
	if v < -32768 || v > 65535 {
		return 0, fmt.Errorf("immediate out of 16-bit range: %s", tok)
	}
	return int32(v), nil
}
