package messaging

import (
	"bytes"
	"fmt"
)

// Envelope is one message in flight: the message, who originated it, and
// every relay that has forwarded it, oldest first.
type Envelope struct {
	Message Message
	Origin  MsgSender
	Proxies []MsgSender
}

// NewEnvelope wraps msg as sent by origin, with no proxies yet.
func NewEnvelope(msg Message, origin MsgSender) *Envelope {
	return &Envelope{Message: msg, Origin: origin}
}

// ID is the wrapped message's id.
func (e *Envelope) ID() MessageID {
	return e.Message.ID()
}

// AddProxy records that proxy forwarded the envelope. The proxy must have
// signed the message already; the signature is recorded, not checked.
func (e *Envelope) AddProxy(proxy MsgSender) {
	e.Proxies = append(e.Proxies, proxy)
}

// MostRecentSender is whoever handed this envelope over: the last proxy,
// or the origin when nobody has forwarded it yet.
func (e *Envelope) MostRecentSender() MsgSender {
	if n := len(e.Proxies); n > 0 {
		return e.Proxies[n-1]
	}
	return e.Origin
}

// Destination is the address the envelope must be delivered to next. It
// is computed from the message alone. Responses and errors name their
// requester inline, so no hop needs to remember where a request came from.
func (e *Envelope) Destination() Address {
	switch m := e.Message.(type) {
	case *CmdMessage:
		return SectionAddress(m.Cmd.DstAddress())
	case *QueryMessage:
		return SectionAddress(m.Query.DstAddress())
	case *EventMessage:
		return ClientAddress(m.Event.DstAddress())
	case *QueryResponseMessage:
		return m.QueryOrigin
	case *CmdErrorMessage:
		return m.CmdOrigin
	case *NetworkCmdMessage:
		return m.Cmd.DstAddress()
	case *NetworkEventMessage:
		return m.Event.DstAddress()
	case *NetworkCmdErrorMessage:
		return m.CmdOrigin
	default:
		panic(fmt.Sprintf("messaging: unknown message kind %T", e.Message))
	}
}

// SignableBytes is the content signed by the origin and every proxy: the
// encoded message, without the sender chain.
func (e *Envelope) SignableBytes() ([]byte, error) {
	return MarshalMessage(e.Message)
}

// Validate checks the message and every sender.
func (e *Envelope) Validate() error {
	if err := Validate(e.Message); err != nil {
		return err
	}
	if err := e.Origin.Validate(); err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	for i, p := range e.Proxies {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("proxy %d: %w", i, err)
		}
	}
	return nil
}

// Equal reports whether both envelopes encode to the same bytes, which is
// field-for-field equality including proxy order.
func (e *Envelope) Equal(o *Envelope) bool {
	if e == nil || o == nil {
		return e == o
	}
	a, err := MarshalEnvelope(e)
	if err != nil {
		return false
	}
	b, err := MarshalEnvelope(o)
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

func (e *Envelope) String() string {
	return fmt.Sprintf("Envelope{%v from %v via %d proxies}", e.Message, e.Origin, len(e.Proxies))
}
