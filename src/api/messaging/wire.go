package messaging

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Every entity is laid out as a protobuf message: structs as numbered
// fields, sum types as one sub-message field per variant. Zero scalars are
// omitted and fields are written in number order, so equal values always
// encode to equal bytes.

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

type encoder struct {
	buf []byte
}

func (e *encoder) uvarint(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, v)
}

func (e *encoder) boolean(num protowire.Number, v bool) {
	if v {
		e.uvarint(num, 1)
	}
}

// bytes omits empty values; use raw for repeated elements.
func (e *encoder) bytes(num protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	e.raw(num, v)
}

func (e *encoder) raw(num protowire.Number, v []byte) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, v)
}

func (e *encoder) str(num protowire.Number, s string) {
	if s == "" {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendString(e.buf, s)
}

// array writes a fixed size value unless it is all zeroes.
func (e *encoder) array(num protowire.Number, v []byte) {
	for _, b := range v {
		if b != 0 {
			e.raw(num, v)
			return
		}
	}
}

// message always writes the field, even when the body is empty, so that
// variant presence and repeated elements survive.
func (e *encoder) message(num protowire.Number, body func(*encoder)) {
	sub := encoder{}
	body(&sub)
	e.raw(num, sub.buf)
}

type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	b   []byte
}

func wireError(n int) error {
	return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
}

// eachField walks the fields of one message. Unknown field numbers are
// passed to fn, which ignores them for structs and rejects them for sums.
func eachField(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return wireError(n)
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return wireError(n)
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (f field) expect(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("%w: field %d has wire type %d, want %d", ErrMalformed, f.num, f.typ, typ)
	}
	return nil
}

func setUint[T unsigned](f field, dst *T) error {
	if err := f.expect(protowire.VarintType); err != nil {
		return err
	}
	v := T(f.v)
	if uint64(v) != f.v {
		return fmt.Errorf("%w: field %d overflows", ErrMalformed, f.num)
	}
	*dst = v
	return nil
}

func setBool(f field, dst *bool) error {
	if err := f.expect(protowire.VarintType); err != nil {
		return err
	}
	*dst = f.v != 0
	return nil
}

// setBytes copies the value so decoded entities never alias the input.
func setBytes[T ~[]byte](f field, dst *T) error {
	if err := f.expect(protowire.BytesType); err != nil {
		return err
	}
	if len(f.b) == 0 {
		*dst = nil
		return nil
	}
	*dst = T(append([]byte(nil), f.b...))
	return nil
}

func setString(f field, dst *string) error {
	if err := f.expect(protowire.BytesType); err != nil {
		return err
	}
	*dst = string(f.b)
	return nil
}

func setArray(f field, dst []byte) error {
	if err := f.expect(protowire.BytesType); err != nil {
		return err
	}
	if len(f.b) != len(dst) {
		return fmt.Errorf("%w: field %d has length %d, want %d", ErrMalformed, f.num, len(f.b), len(dst))
	}
	copy(dst, f.b)
	return nil
}

func setMessage[T any](f field, dec func([]byte) (T, error), dst *T) error {
	if err := f.expect(protowire.BytesType); err != nil {
		return err
	}
	v, err := dec(f.b)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func appendMessage[T any](f field, dec func([]byte) (T, error), dst *[]T) error {
	var v T
	if err := setMessage(f, dec, &v); err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// eachVariant decodes a sum type: exactly one sub-message field must be
// present. fn rejects field numbers it does not know.
func eachVariant(b []byte, what string, fn func(num protowire.Number, body []byte) error) error {
	found := false
	err := eachField(b, func(f field) error {
		if err := f.expect(protowire.BytesType); err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: %s carries more than one variant", ErrMalformed, what)
		}
		found = true
		return fn(f.num, f.b)
	})
	if err == nil && !found {
		err = fmt.Errorf("%w: empty %s", ErrMalformed, what)
	}
	return err
}

func unknownVariant(what string, num protowire.Number) error {
	return fmt.Errorf("%w: %s field %d", ErrUnknownVariant, what, num)
}

func encUint[T unsigned](e *encoder, v T) {
	e.uvarint(1, uint64(v))
}

func decUint[T unsigned](b []byte) (v T, err error) {
	err = eachField(b, func(f field) error {
		if f.num == 1 {
			return setUint(f, &v)
		}
		return nil
	})
	return v, err
}
