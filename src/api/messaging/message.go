package messaging

import "fmt"

// Message is the logical content of an envelope. The set of kinds is
// closed: every implementation lives in this package and every dispatch
// site switches over all eight.
type Message interface {
	ID() MessageID
	fmt.Stringer
	isMessage()
}

// Correlated is implemented by the kinds that answer another message.
type Correlated interface {
	Message
	Correlation() MessageID
}

type CmdMessage struct {
	Cmd   Cmd
	MsgID MessageID
}

type QueryMessage struct {
	Query Query
	MsgID MessageID
}

type EventMessage struct {
	Event         Event
	MsgID         MessageID
	CorrelationID MessageID
}

// QueryResponseMessage carries its own return address: QueryOrigin is the
// address of the client that made the query.
type QueryResponseMessage struct {
	Response      QueryResponse
	MsgID         MessageID
	CorrelationID MessageID
	QueryOrigin   Address
}

// CmdErrorMessage carries its own return address in CmdOrigin.
type CmdErrorMessage struct {
	Error         CmdError
	MsgID         MessageID
	CorrelationID MessageID
	CmdOrigin     Address
}

type NetworkCmdMessage struct {
	Cmd   NetworkCmd
	MsgID MessageID
}

type NetworkEventMessage struct {
	Event         NetworkEvent
	MsgID         MessageID
	CorrelationID MessageID
}

type NetworkCmdErrorMessage struct {
	Error         NetworkCmdError
	MsgID         MessageID
	CorrelationID MessageID
	CmdOrigin     Address
}

func (m *CmdMessage) ID() MessageID             { return m.MsgID }
func (m *QueryMessage) ID() MessageID           { return m.MsgID }
func (m *EventMessage) ID() MessageID           { return m.MsgID }
func (m *QueryResponseMessage) ID() MessageID   { return m.MsgID }
func (m *CmdErrorMessage) ID() MessageID        { return m.MsgID }
func (m *NetworkCmdMessage) ID() MessageID      { return m.MsgID }
func (m *NetworkEventMessage) ID() MessageID    { return m.MsgID }
func (m *NetworkCmdErrorMessage) ID() MessageID { return m.MsgID }

func (m *EventMessage) Correlation() MessageID           { return m.CorrelationID }
func (m *QueryResponseMessage) Correlation() MessageID   { return m.CorrelationID }
func (m *CmdErrorMessage) Correlation() MessageID        { return m.CorrelationID }
func (m *NetworkEventMessage) Correlation() MessageID    { return m.CorrelationID }
func (m *NetworkCmdErrorMessage) Correlation() MessageID { return m.CorrelationID }

func (*CmdMessage) isMessage()             {}
func (*QueryMessage) isMessage()           {}
func (*EventMessage) isMessage()           {}
func (*QueryResponseMessage) isMessage()   {}
func (*CmdErrorMessage) isMessage()        {}
func (*NetworkCmdMessage) isMessage()      {}
func (*NetworkEventMessage) isMessage()    {}
func (*NetworkCmdErrorMessage) isMessage() {}

func (m *CmdMessage) String() string {
	return fmt.Sprintf("Cmd(%T, id=%s)", m.Cmd, m.MsgID.Short())
}

func (m *QueryMessage) String() string {
	return fmt.Sprintf("Query(%s, id=%s)", m.Query.ResponseKind(), m.MsgID.Short())
}

func (m *EventMessage) String() string {
	return fmt.Sprintf("Event(%T, id=%s, correlation=%s)", m.Event, m.MsgID.Short(), m.CorrelationID.Short())
}

func (m *QueryResponseMessage) String() string {
	return fmt.Sprintf("%v(id=%s, correlation=%s, origin=%s)", m.Response, m.MsgID.Short(), m.CorrelationID.Short(), m.QueryOrigin)
}

func (m *CmdErrorMessage) String() string {
	return fmt.Sprintf("CmdError(%v, id=%s, correlation=%s, origin=%s)", m.Error, m.MsgID.Short(), m.CorrelationID.Short(), m.CmdOrigin)
}

func (m *NetworkCmdMessage) String() string {
	return fmt.Sprintf("NetworkCmd(%T, id=%s)", m.Cmd, m.MsgID.Short())
}

func (m *NetworkEventMessage) String() string {
	return fmt.Sprintf("NetworkEvent(%T, id=%s, correlation=%s)", m.Event, m.MsgID.Short(), m.CorrelationID.Short())
}

func (m *NetworkCmdErrorMessage) String() string {
	return fmt.Sprintf("NetworkCmdError(%v, id=%s, correlation=%s, origin=%s)", m.Error, m.MsgID.Short(), m.CorrelationID.Short(), m.CmdOrigin)
}

// NewCmd wraps a cmd under a fresh id.
func NewCmd(cmd Cmd) *CmdMessage {
	return &CmdMessage{Cmd: cmd, MsgID: NewMessageID()}
}

// NewQuery wraps a query under a fresh id.
func NewQuery(query Query) *QueryMessage {
	return &QueryMessage{Query: query, MsgID: NewMessageID()}
}

func NewNetworkCmd(cmd NetworkCmd) *NetworkCmdMessage {
	return &NetworkCmdMessage{Cmd: cmd, MsgID: NewMessageID()}
}

// The constructors below take the causing message so the correlation id
// always equals its id. They must be called where the request was
// received, with the requester's address as seen there.

// RespondTo answers query with response, addressed back to requester.
func RespondTo(query *QueryMessage, requester Address, response QueryResponse) *QueryResponseMessage {
	return &QueryResponseMessage{
		Response:      response,
		MsgID:         NewMessageID(),
		CorrelationID: query.MsgID,
		QueryOrigin:   requester,
	}
}

// FailCmd reports the failure of cmd back to requester.
func FailCmd(cmd *CmdMessage, requester Address, err CmdError) *CmdErrorMessage {
	return &CmdErrorMessage{
		Error:         err,
		MsgID:         NewMessageID(),
		CorrelationID: cmd.MsgID,
		CmdOrigin:     requester,
	}
}

// NotifyFor emits event as a consequence of cause.
func NotifyFor(cause Message, event Event) *EventMessage {
	return &EventMessage{Event: event, MsgID: NewMessageID(), CorrelationID: cause.ID()}
}

// AcknowledgeNetworkCmd emits a network event answering cmd.
func AcknowledgeNetworkCmd(cmd *NetworkCmdMessage, event NetworkEvent) *NetworkEventMessage {
	return &NetworkEventMessage{Event: event, MsgID: NewMessageID(), CorrelationID: cmd.MsgID}
}

// FailNetworkCmd reports the failure of cmd back to requester.
func FailNetworkCmd(cmd *NetworkCmdMessage, requester Address, err NetworkCmdError) *NetworkCmdErrorMessage {
	return &NetworkCmdErrorMessage{
		Error:         err,
		MsgID:         NewMessageID(),
		CorrelationID: cmd.MsgID,
		CmdOrigin:     requester,
	}
}

// Validate checks that a message is complete and that its nested variants
// are known.
func Validate(m Message) error {
	switch m := m.(type) {
	case *CmdMessage:
		if m.Cmd == nil {
			return fmt.Errorf("%w: cmd message without cmd", ErrMalformed)
		}
		if c, ok := m.Cmd.(DataCmd); ok && c.Write == nil {
			return fmt.Errorf("%w: data cmd without write", ErrMalformed)
		}
	case *QueryMessage:
		if m.Query == nil {
			return fmt.Errorf("%w: query message without query", ErrMalformed)
		}
		return validateQuery(m.Query)
	case *EventMessage:
		if m.Event == nil {
			return fmt.Errorf("%w: event message without event", ErrMalformed)
		}
	case *QueryResponseMessage:
		if m.Response == nil {
			return fmt.Errorf("%w: response message without response", ErrMalformed)
		}
		if _, ok := responseCodecs[m.Response.Kind()]; !ok {
			return fmt.Errorf("%w: response kind %d", ErrUnknownVariant, m.Response.Kind())
		}
		return m.QueryOrigin.validate()
	case *CmdErrorMessage:
		if m.Error == nil {
			return fmt.Errorf("%w: cmd error message without error", ErrMalformed)
		}
		return m.CmdOrigin.validate()
	case *NetworkCmdMessage:
		if m.Cmd == nil {
			return fmt.Errorf("%w: network cmd message without cmd", ErrMalformed)
		}
	case *NetworkEventMessage:
		if m.Event == nil {
			return fmt.Errorf("%w: network event message without event", ErrMalformed)
		}
	case *NetworkCmdErrorMessage:
		if m.Error == nil {
			return fmt.Errorf("%w: network cmd error message without error", ErrMalformed)
		}
		return m.CmdOrigin.validate()
	case nil:
		return fmt.Errorf("%w: nil message", ErrMalformed)
	default:
		return fmt.Errorf("%w: message %T", ErrUnknownVariant, m)
	}
	return nil
}
