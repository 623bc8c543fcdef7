package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/danmuck/dps_messaging/src/api/messaging"
)

type TransportHandler interface {
	ListenAndAccept() error                            // listen and accept connections
	Dial(address string) (net.Conn, error)             // open a connection and read replies from it
	Send(conn net.Conn, env *messaging.Envelope) error // send an envelope over a connection
	Inbound() <-chan Packet                            // channel of received envelopes
	Close() error                                      // close listener and channels
}

// Packet is an envelope as received, with the connection it arrived on so
// replies to clients can be written back to it.
type Packet struct {
	Envelope *messaging.Envelope
	Conn     net.Conn
}

// NodeInfo describes a reachable peer.
type NodeInfo struct {
	ID      messaging.XorName
	Address string
	Time    int64 // unix seconds the peer was last heard from
}

func NewNodeInfo(id messaging.XorName, address string) NodeInfo {
	return NodeInfo{ID: id, Address: address, Time: time.Now().Unix()}
}

func (n NodeInfo) String() string {
	return fmt.Sprintf("%s@%s", n.ID.Short(), n.Address)
}
