package messaging

import "fmt"

type AddressKind uint8

const (
	ClientKind AddressKind = iota + 1
	NodeKind
	SectionKind
)

func (k AddressKind) String() string {
	switch k {
	case ClientKind:
		return "Client"
	case NodeKind:
		return "Node"
	case SectionKind:
		return "Section"
	default:
		return fmt.Sprintf("AddressKind(%d)", uint8(k))
	}
}

// Address is a routable destination. The kind decides what may be sent to
// it: clients receive events, responses and errors, sections receive cmds
// and queries.
type Address struct {
	Kind AddressKind
	Name XorName
}

func ClientAddress(name XorName) Address {
	return Address{Kind: ClientKind, Name: name}
}

func NodeAddress(name XorName) Address {
	return Address{Kind: NodeKind, Name: name}
}

func SectionAddress(name XorName) Address {
	return Address{Kind: SectionKind, Name: name}
}

func (a Address) IsClient() bool  { return a.Kind == ClientKind }
func (a Address) IsNode() bool    { return a.Kind == NodeKind }
func (a Address) IsSection() bool { return a.Kind == SectionKind }

func (a Address) String() string {
	return fmt.Sprintf("%s(%s)", a.Kind, a.Name.Short())
}

func (a Address) validate() error {
	switch a.Kind {
	case ClientKind, NodeKind, SectionKind:
		return nil
	default:
		return fmt.Errorf("%w: address kind %d", ErrUnknownVariant, a.Kind)
	}
}
