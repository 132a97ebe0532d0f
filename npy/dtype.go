// SPDX-License-Identifier: MIT

package npy

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the NumPy dtype kind character.
type Kind byte

// Supported kinds.
const (
	KindBool  Kind = 'b'
	KindInt   Kind = 'i'
	KindUint  Kind = 'u'
	KindFloat Kind = 'f'
)

// Dtype describes one element: either a scalar (Kind/Size/Order) or a
// structured record (Fields, packed in declaration order).
type Dtype struct {
	Kind   Kind
	Size   int
	Order  binary.ByteOrder
	Fields []Field
}

// Field is one named member of a structured dtype.
type Field struct {
	Name   string
	Type   Dtype
	Offset int
}

// Common scalar dtypes.
var (
	Float64 = Dtype{Kind: KindFloat, Size: 8, Order: binary.LittleEndian}
	Float32 = Dtype{Kind: KindFloat, Size: 4, Order: binary.LittleEndian}
	Int64   = Dtype{Kind: KindInt, Size: 8, Order: binary.LittleEndian}
	Uint32  = Dtype{Kind: KindUint, Size: 4, Order: binary.LittleEndian}
	Uint8   = Dtype{Kind: KindUint, Size: 1, Order: binary.LittleEndian}
)

// ParseScalar decodes a scalar descriptor such as "<f8", "|u1" or ">i4".
func ParseScalar(s string) (Dtype, error) {
	if len(s) < 2 {
		return Dtype{}, fmt.Errorf("%q: %w", s, ErrUnsupportedDtype)
	}
	var order binary.ByteOrder = binary.LittleEndian
	switch s[0] {
	case '<', '|', '=':
		s = s[1:]
	case '>':
		order = binary.BigEndian
		s = s[1:]
	}
	if len(s) < 2 {
		return Dtype{}, fmt.Errorf("%q: %w", s, ErrUnsupportedDtype)
	}

	kind := Kind(s[0])
	size, err := strconv.Atoi(s[1:])
	if err != nil {
		return Dtype{}, fmt.Errorf("%q: %w", s, ErrUnsupportedDtype)
	}
	d := Dtype{Kind: kind, Size: size, Order: order}
	if !d.supported() {
		return Dtype{}, fmt.Errorf("%q: %w", s, ErrUnsupportedDtype)
	}

	return d, nil
}

// Structure builds a packed structured dtype from (name, scalar) pairs.
func Structure(names []string, types []Dtype) (Dtype, error) {
	if len(names) == 0 || len(names) != len(types) {
		return Dtype{}, fmt.Errorf("structure with %d names, %d types: %w", len(names), len(types), ErrUnsupportedDtype)
	}
	var (
		out    Dtype
		offset int
	)
	for i, name := range names {
		if types[i].Structured() || !types[i].supported() {
			return Dtype{}, fmt.Errorf("field %q: %w", name, ErrUnsupportedDtype)
		}
		out.Fields = append(out.Fields, Field{Name: name, Type: types[i], Offset: offset})
		offset += types[i].Size
	}
	out.Size = offset

	return out, nil
}

func (d Dtype) supported() bool {
	switch d.Kind {
	case KindBool:
		return d.Size == 1
	case KindInt, KindUint:
		return d.Size == 1 || d.Size == 2 || d.Size == 4 || d.Size == 8
	case KindFloat:
		return d.Size == 4 || d.Size == 8
	}
	return false
}

// Structured reports whether d is a record dtype.
func (d Dtype) Structured() bool { return len(d.Fields) > 0 }

// Integral reports whether d is a bool or integer scalar.
func (d Dtype) Integral() bool {
	return d.Kind == KindBool || d.Kind == KindInt || d.Kind == KindUint
}

// Field returns the named member of a structured dtype.
func (d Dtype) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// Names returns the member names of a structured dtype in declaration order.
func (d Dtype) Names() []string {
	out := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		out[i] = f.Name
	}

	return out
}

// String renders the NumPy descriptor: "<f8" for scalars,
// "[('a', '<u4'), ('b', '|u1')]" for records.
func (d Dtype) String() string {
	if d.Structured() {
		parts := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			parts[i] = fmt.Sprintf("('%s', '%s')", f.Name, f.Type.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}

	prefix := "<"
	switch {
	case d.Size == 1:
		prefix = "|"
	case d.Order == binary.BigEndian:
		prefix = ">"
	}

	return prefix + string(d.Kind) + strconv.Itoa(d.Size)
}

// Equal compares two dtypes by layout: kinds, sizes, byte order and field names.
func (d Dtype) Equal(o Dtype) bool {
	return d.String() == o.String()
}

// Float decodes one scalar element to float64.
func (d Dtype) Float(b []byte) float64 {
	switch d.Kind {
	case KindFloat:
		if d.Size == 4 {
			return float64(math.Float32frombits(d.Order.Uint32(b)))
		}
		return math.Float64frombits(d.Order.Uint64(b))
	case KindUint, KindBool:
		return float64(d.uint(b))
	default:
		return float64(d.Int(b))
	}
}

// Int decodes one integral scalar element to int64. Floats are truncated.
func (d Dtype) Int(b []byte) int64 {
	switch d.Kind {
	case KindFloat:
		return int64(d.Float(b))
	case KindUint, KindBool:
		return int64(d.uint(b))
	}
	switch d.Size {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(d.Order.Uint16(b)))
	case 4:
		return int64(int32(d.Order.Uint32(b)))
	default:
		return int64(d.Order.Uint64(b))
	}
}

func (d Dtype) uint(b []byte) uint64 {
	switch d.Size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(d.Order.Uint16(b))
	case 4:
		return uint64(d.Order.Uint32(b))
	default:
		return d.Order.Uint64(b)
	}
}

// putInt encodes v into b according to an integral scalar dtype.
func (d Dtype) putInt(b []byte, v int64) {
	switch d.Size {
	case 1:
		b[0] = byte(v)
	case 2:
		d.Order.PutUint16(b, uint16(v))
	case 4:
		d.Order.PutUint32(b, uint32(v))
	default:
		d.Order.PutUint64(b, uint64(v))
	}
}
