// SPDX-License-Identifier: MIT

package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// magic is the fixed prefix of every npy file.
var magic = []byte("\x93NUMPY")

// Header is the decoded preamble of an npy file.
type Header struct {
	Major, Minor byte
	Dtype        Dtype
	FortranOrder bool
	Shape        []int
	DataOffset   int64 // absolute byte offset of the first element
}

// Len returns the product of Shape (1 for a 0-d array).
func (h Header) Len() int {
	n := 1
	for _, s := range h.Shape {
		n *= s
	}

	return n
}

// DataBytes returns the byte length of the array body. ok is false when a
// dimension is negative or the length overflows int64.
func (h Header) DataBytes() (n int64, ok bool) {
	n = int64(h.Dtype.Size)
	for _, s := range h.Shape {
		if s < 0 {
			return 0, false
		}
		if s != 0 && n > math.MaxInt64/int64(s) {
			return 0, false
		}
		n *= int64(s)
	}

	return n, true
}

// checkBody rejects headers whose body does not fit in a file of size bytes.
func checkBody(h Header, size int64) error {
	n, ok := h.DataBytes()
	if !ok {
		return fmt.Errorf("shape %v of %s: %w", h.Shape, h.Dtype, ErrShape)
	}
	if n > size-h.DataOffset {
		return fmt.Errorf("file holds %d bytes after offset %d, header needs %d: %w", size-h.DataOffset, h.DataOffset, n, ErrShape)
	}

	return nil
}

// ReadHeader decodes the npy preamble from r.
// Stage 1: magic and version. Stage 2: header length (u16 for v1, u32 for v2/v3).
// Stage 3: the Python-literal dictionary {'descr', 'fortran_order', 'shape'}.
func ReadHeader(r io.Reader) (Header, error) {
	var pre [8]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return Header{}, fmt.Errorf("preamble: %w", ErrNotNpy)
	}
	if !bytes.Equal(pre[:6], magic) {
		return Header{}, ErrNotNpy
	}

	h := Header{Major: pre[6], Minor: pre[7]}
	var (
		hlen   int
		prefix int64 = 8
	)
	switch h.Major {
	case 1:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Header{}, fmt.Errorf("header length: %w", ErrBadHeader)
		}
		hlen = int(binary.LittleEndian.Uint16(b[:]))
		prefix += 2
	case 2, 3:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Header{}, fmt.Errorf("header length: %w", ErrBadHeader)
		}
		hlen = int(binary.LittleEndian.Uint32(b[:]))
		prefix += 4
	default:
		return Header{}, fmt.Errorf("version %d.%d: %w", h.Major, h.Minor, ErrUnsupportedVersion)
	}

	text := make([]byte, hlen)
	if _, err := io.ReadFull(r, text); err != nil {
		return Header{}, fmt.Errorf("header body: %w", ErrBadHeader)
	}
	h.DataOffset = prefix + int64(hlen)

	if err := h.decodeDict(string(text)); err != nil {
		return Header{}, err
	}

	return h, nil
}

func (h *Header) decodeDict(text string) error {
	p := &literalParser{s: strings.TrimSpace(text)}
	v, err := p.value()
	if err != nil {
		return err
	}
	dict, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("header is not a dict: %w", ErrBadHeader)
	}

	descr, ok := dict["descr"]
	if !ok {
		return fmt.Errorf("missing descr: %w", ErrBadHeader)
	}
	if h.Dtype, err = decodeDescr(descr); err != nil {
		return err
	}

	if h.FortranOrder, ok = dict["fortran_order"].(bool); !ok {
		return fmt.Errorf("fortran_order: %w", ErrBadHeader)
	}

	shape, ok := dict["shape"].([]any)
	if !ok {
		return fmt.Errorf("shape: %w", ErrBadHeader)
	}
	h.Shape = make([]int, len(shape))
	for i, s := range shape {
		n, ok := s.(int64)
		if !ok || n < 0 {
			return fmt.Errorf("shape[%d]: %w", i, ErrBadHeader)
		}
		h.Shape[i] = int(n)
	}

	return nil
}

func decodeDescr(v any) (Dtype, error) {
	switch t := v.(type) {
	case string:
		return ParseScalar(t)
	case []any:
		names := make([]string, 0, len(t))
		types := make([]Dtype, 0, len(t))
		for _, item := range t {
			pair, ok := item.([]any)
			if !ok || len(pair) != 2 {
				// Sub-array members ('x', '<f8', (3,)) and titled names are not used by packages.
				return Dtype{}, fmt.Errorf("descr member %v: %w", item, ErrUnsupportedDtype)
			}
			name, ok1 := pair[0].(string)
			typ, ok2 := pair[1].(string)
			if !ok1 || !ok2 {
				return Dtype{}, fmt.Errorf("descr member %v: %w", item, ErrUnsupportedDtype)
			}
			d, err := ParseScalar(typ)
			if err != nil {
				return Dtype{}, err
			}
			names = append(names, name)
			types = append(types, d)
		}
		return Structure(names, types)
	}

	return Dtype{}, fmt.Errorf("descr %v: %w", v, ErrBadHeader)
}

// encodeHeader renders a v1.0 preamble whose total length is a multiple of 64,
// terminated by '\n' as NumPy writes it.
func encodeHeader(d Dtype, shape []int) []byte {
	var descr string
	if d.Structured() {
		descr = d.String()
	} else {
		descr = "'" + d.String() + "'"
	}
	dims := make([]string, len(shape))
	for i, s := range shape {
		dims[i] = strconv.Itoa(s)
	}
	shapeLit := "(" + strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeLit += ","
	}
	shapeLit += ")"

	dict := fmt.Sprintf("{'descr': %s, 'fortran_order': False, 'shape': %s, }", descr, shapeLit)
	total := len(magic) + 2 + 2 + len(dict) + 1
	pad := (64 - total%64) % 64

	var buf bytes.Buffer
	buf.Write(magic)
	buf.Write([]byte{1, 0})
	var hl [2]byte
	binary.LittleEndian.PutUint16(hl[:], uint16(len(dict)+pad+1))
	buf.Write(hl[:])
	buf.WriteString(dict)
	buf.Write(bytes.Repeat([]byte{' '}, pad))
	buf.WriteByte('\n')

	return buf.Bytes()
}

// ---------- Python literal subset ----------

// literalParser decodes the literal subset NumPy headers use:
// dicts, lists, tuples, quoted strings, integers, True/False/None.
type literalParser struct {
	s   string
	pos int
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\n' || p.s[p.pos] == '\t' || p.s[p.pos] == '\r') {
		p.pos++
	}
}

func (p *literalParser) errorf(what string) error {
	return fmt.Errorf("%s at offset %d: %w", what, p.pos, ErrBadHeader)
}

func (p *literalParser) value() (any, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, p.errorf("unexpected end")
	}
	switch c := p.s[p.pos]; {
	case c == '{':
		return p.dict()
	case c == '[':
		return p.sequence('[', ']')
	case c == '(':
		return p.sequence('(', ')')
	case c == '\'' || c == '"':
		return p.str()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.integer()
	}

	for _, kw := range []struct {
		word string
		val  any
	}{{"True", true}, {"False", false}, {"None", nil}} {
		if strings.HasPrefix(p.s[p.pos:], kw.word) {
			p.pos += len(kw.word)
			return kw.val, nil
		}
	}

	return nil, p.errorf("unexpected token")
}

func (p *literalParser) dict() (any, error) {
	p.pos++ // '{'
	out := make(map[string]any)
	for {
		p.skipSpace()
		if p.pos < len(p.s) && p.s[p.pos] == '}' {
			p.pos++
			return out, nil
		}
		k, err := p.value()
		if err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			return nil, p.errorf("non-string key")
		}
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != ':' {
			return nil, p.errorf("expected ':'")
		}
		p.pos++
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out[key] = v
		if err = p.separator('}'); err != nil {
			return nil, err
		}
	}
}

func (p *literalParser) sequence(open, closing byte) (any, error) {
	p.pos++ // open
	out := []any{}
	for {
		p.skipSpace()
		if p.pos < len(p.s) && p.s[p.pos] == closing {
			p.pos++
			return out, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if err = p.separator(closing); err != nil {
			return nil, err
		}
	}
}

// separator consumes an optional ',' and requires either another item or the closing byte.
func (p *literalParser) separator(closing byte) error {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return p.errorf("unterminated container")
	}
	switch p.s[p.pos] {
	case ',':
		p.pos++
		return nil
	case closing:
		return nil
	}

	return p.errorf("expected ','")
}

func (p *literalParser) str() (any, error) {
	quote := p.s[p.pos]
	end := strings.IndexByte(p.s[p.pos+1:], quote)
	if end < 0 {
		return nil, p.errorf("unterminated string")
	}
	v := p.s[p.pos+1 : p.pos+1+end]
	p.pos += end + 2

	return v, nil
}

func (p *literalParser) integer() (any, error) {
	start := p.pos
	if p.s[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	// Python 2 era headers may carry long literals such as "3L".
	digits := p.s[start:p.pos]
	if p.pos < len(p.s) && p.s[p.pos] == 'L' {
		p.pos++
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, p.errorf("bad integer")
	}

	return n, nil
}
