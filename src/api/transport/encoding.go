package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	logs "github.com/danmuck/smplog"

	"github.com/danmuck/dps_messaging/src/api/messaging"
)

const (
	HeaderSize   = 4
	MaxFrameSize = 1 << 22 // 4mb, the largest chunk a node stores
)

var (
	ErrFrameTooLarge = errors.New("frame exceeds max frame size")
	// ErrBadEnvelope means the frame was read whole but did not decode;
	// the stream itself is still usable.
	ErrBadEnvelope = errors.New("bad envelope")
)

type Coder interface {
	Encode(*messaging.Envelope) ([]byte, error)
	Decode(io.Reader) (*messaging.Envelope, error)
}

// DefaultCoder frames protobuf encoded envelopes behind a big endian
// length header.
type DefaultCoder struct{}

func (c DefaultCoder) Encode(env *messaging.Envelope) ([]byte, error) {
	body, err := messaging.MarshalEnvelope(env)
	if err != nil {
		return nil, err
	}
	if len(body) > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
	}
	out := make([]byte, HeaderSize, HeaderSize+len(body))
	binary.BigEndian.PutUint32(out, uint32(len(body)))
	out = append(out, body...)
	logs.Debugf("Encode(%s): %d bytes", env.ID().Short(), len(out))
	return out, nil
}

func (c DefaultCoder) Decode(r io.Reader) (*messaging.Envelope, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	env, err := messaging.UnmarshalEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadEnvelope, err)
	}
	logs.Debugf("Decode(%s): %d bytes", env.ID().Short(), n)
	return env, nil
}
