package nodes

import (
	"github.com/danmuck/dps_messaging/src/api/messaging"
	"github.com/danmuck/dps_messaging/src/api/transport"
)

// Generic Node interface
// This interface is the base Node for a peer in the network
type Node interface {
	NodeInfo() transport.NodeInfo // returns the NodeInfo for this Node
	Address() string              // listener address for node
	Name() messaging.XorName      // node name in xor space
	Start() error                 // start node and participate in the network
	Shutdown() error              // shutdown node and handle closing states
	Peers() []transport.NodeInfo  // return a list of all known nodes
}

// Handler serves the envelopes addressed to a node or its section. A
// non-nil reply is signed by the node and routed to its own destination,
// which for responses and errors is the requester named inside it.
type Handler interface {
	HandleEnvelope(env *messaging.Envelope) messaging.Message
}

type HandlerFunc func(env *messaging.Envelope) messaging.Message

func (f HandlerFunc) HandleEnvelope(env *messaging.Envelope) messaging.Message {
	return f(env)
}
