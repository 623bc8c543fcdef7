package messaging

import (
	"errors"
	"fmt"
	"strings"
)

type AdultDuty uint8

const (
	RunAsChunkStore AdultDuty = iota + 1
)

func (d AdultDuty) String() string {
	if d == RunAsChunkStore {
		return "RunAsChunkStore"
	}
	return fmt.Sprintf("AdultDuty(%d)", uint8(d))
}

type ElderDuty uint8

const (
	RunAsGateway ElderDuty = iota + 1
	RunAsMetadata
	RunAsTransfers
	RunAsRewards
)

var elderDutyNames = map[ElderDuty]string{
	RunAsGateway:   "RunAsGateway",
	RunAsMetadata:  "RunAsMetadata",
	RunAsTransfers: "RunAsTransfers",
	RunAsRewards:   "RunAsRewards",
}

func (d ElderDuty) String() string {
	if name, ok := elderDutyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("ElderDuty(%d)", uint8(d))
}

// Duty is the role a node or section was acting under when it sent a
// message. Exactly one of the adult or elder roles is set; the zero Duty
// means no duty.
type Duty struct {
	adult AdultDuty
	elder ElderDuty
}

func AdultRole(d AdultDuty) Duty { return Duty{adult: d} }
func ElderRole(d ElderDuty) Duty { return Duty{elder: d} }

func (d Duty) IsZero() bool { return d == Duty{} }

func (d Duty) Adult() (AdultDuty, bool) { return d.adult, d.adult != 0 }
func (d Duty) Elder() (ElderDuty, bool) { return d.elder, d.elder != 0 }

func (d Duty) String() string {
	switch {
	case d.adult != 0:
		return "Adult(" + d.adult.String() + ")"
	case d.elder != 0:
		return "Elder(" + d.elder.String() + ")"
	default:
		return "None"
	}
}

func (d Duty) validate() error {
	if d.adult != 0 && d.elder != 0 {
		return errBothRoles
	}
	if d.adult > RunAsChunkStore {
		return fmt.Errorf("%w: adult duty %d", ErrUnknownVariant, d.adult)
	}
	if d.elder > RunAsRewards {
		return fmt.Errorf("%w: elder duty %d", ErrUnknownVariant, d.elder)
	}
	return nil
}

// ParseDuty accepts the forms printed by Duty.String, e.g.
// "Elder(RunAsGateway)", or a bare role name.
func ParseDuty(s string) (Duty, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return Duty{}, nil
	}
	role := s
	if open := strings.IndexByte(s, '('); open != -1 && strings.HasSuffix(s, ")") {
		role = s[open+1 : len(s)-1]
	}
	if role == RunAsChunkStore.String() {
		return AdultRole(RunAsChunkStore), nil
	}
	for d, name := range elderDutyNames {
		if role == name {
			return ElderRole(d), nil
		}
	}
	return Duty{}, fmt.Errorf("unknown duty %q", s)
}

var errBothRoles = errors.New("duty carries both adult and elder roles")

type SenderKind uint8

const (
	ClientSenderKind SenderKind = iota + 1
	NodeSenderKind
	SectionSenderKind
)

func (k SenderKind) String() string {
	switch k {
	case ClientSenderKind:
		return "Client"
	case NodeSenderKind:
		return "Node"
	case SectionSenderKind:
		return "Section"
	default:
		return fmt.Sprintf("SenderKind(%d)", uint8(k))
	}
}

// MsgSender is the authenticated originator of one hop. The signature is
// over the envelope's message and is checked by the identity package, not
// here.
type MsgSender struct {
	kind      SenderKind
	id        PublicKey
	duty      Duty
	signature Signature
}

// ClientSender builds a client sender. Clients never carry a duty.
func ClientSender(id PublicKey, sig Signature) MsgSender {
	return MsgSender{kind: ClientSenderKind, id: id, signature: sig}
}

func NodeSender(id PublicKey, duty Duty, sig Signature) MsgSender {
	return MsgSender{kind: NodeSenderKind, id: id, duty: duty, signature: sig}
}

func SectionSender(id PublicKey, duty Duty, sig Signature) MsgSender {
	return MsgSender{kind: SectionSenderKind, id: id, duty: duty, signature: sig}
}

func (s MsgSender) Kind() SenderKind     { return s.kind }
func (s MsgSender) ID() PublicKey        { return s.id }
func (s MsgSender) Signature() Signature { return s.signature }

// Duty returns the sender's duty; ok is false for clients.
func (s MsgSender) Duty() (Duty, bool) {
	return s.duty, s.kind != ClientSenderKind
}

func (s MsgSender) IsClient() bool { return s.kind == ClientSenderKind }

// Address returns the address class matching the sender's kind.
func (s MsgSender) Address() Address {
	name := s.id.XorName()
	switch s.kind {
	case NodeSenderKind:
		return NodeAddress(name)
	case SectionSenderKind:
		return SectionAddress(name)
	default:
		return ClientAddress(name)
	}
}

func (s MsgSender) String() string {
	if s.kind == ClientSenderKind {
		return fmt.Sprintf("Client(%s)", s.id.XorName().Short())
	}
	return fmt.Sprintf("%s(%s, %s)", s.kind, s.id.XorName().Short(), s.duty)
}

// Validate checks the sender's structural invariants.
func (s MsgSender) Validate() error {
	switch s.kind {
	case ClientSenderKind:
		if !s.duty.IsZero() {
			return ErrClientDuty
		}
		return nil
	case NodeSenderKind, SectionSenderKind:
		if s.duty.IsZero() {
			return ErrMissingDuty
		}
		return s.duty.validate()
	default:
		return fmt.Errorf("%w: sender kind %d", ErrUnknownVariant, s.kind)
	}
}
