package nodes

import (
	"errors"
	"fmt"
	"net"
	"sync"

	logs "github.com/danmuck/smplog"
	"go.uber.org/atomic"

	"github.com/danmuck/dps_messaging/src/api/identity"
	"github.com/danmuck/dps_messaging/src/api/messaging"
	"github.com/danmuck/dps_messaging/src/api/msgcache"
	"github.com/danmuck/dps_messaging/src/api/transport"
	"github.com/danmuck/dps_messaging/src/config"
)

var ErrNoRoute = errors.New("no route to destination")

// Stats is a snapshot of a node's envelope counters.
type Stats struct {
	Received      uint64
	Duplicates    uint64
	BadSignature  uint64
	UnknownSender uint64
	Delivered     uint64
	Forwarded     uint64
	Undeliverable uint64
	Stale         uint64 // delivered again after leaving the dedup window
}

type counters struct {
	received      atomic.Uint64
	duplicates    atomic.Uint64
	badSignature  atomic.Uint64
	unknownSender atomic.Uint64
	delivered     atomic.Uint64
	forwarded     atomic.Uint64
	undeliverable atomic.Uint64
}

type DefaultNode struct {
	keys        *identity.Keypair
	duty        messaging.Duty
	sectionBits int

	Router     RoutingTable
	TCPHandler *transport.TCPHandler
	handler    Handler
	seen       *msgcache.Cache
	stats      counters

	mu      sync.Mutex
	clients map[messaging.XorName]net.Conn // return path toward each client
	links   map[messaging.XorName]net.Conn // dialed peers

	exit     chan any
	shutdown sync.Once
}

// NewDefaultNode builds a node from cfg. handler serves envelopes that
// reach their destination here; it may be nil for a pure relay.
func NewDefaultNode(keys *identity.Keypair, cfg config.NodeConfig, handler Handler) (*DefaultNode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	duty, err := cfg.ParsedDuty()
	if err != nil {
		return nil, err
	}

	self := transport.NewNodeInfo(keys.Name(), cfg.Address)
	var rt RoutingTable
	switch cfg.Router {
	case config.RouterDefault:
		rt = NewDefaultRouter(self)
	default:
		rt, err = NewKademliaRouter(self, cfg.K, cfg.Alpha)
		if err != nil {
			return nil, err
		}
	}

	exit := make(chan any)
	node := &DefaultNode{
		keys:        keys,
		duty:        duty,
		sectionBits: cfg.SectionBits,
		Router:      rt,
		TCPHandler:  transport.NewTCPHandler(cfg.Address, exit),
		handler:     handler,
		seen:        msgcache.New(cfg.CacheCapacity),
		clients:     make(map[messaging.XorName]net.Conn),
		links:       make(map[messaging.XorName]net.Conn),
		exit:        exit,
	}
	node.TCPHandler.OnDisconnect = node.forgetConn

	for _, p := range cfg.Peers {
		name, err := messaging.ParseXorName(p.Name)
		if err != nil {
			return nil, err
		}
		if err := node.AddPeer(transport.NewNodeInfo(name, p.Address)); err != nil {
			logs.Warnf("NewDefaultNode(): skipping peer %s: %v", p.Address, err)
		}
	}
	return node, nil
}

func (n *DefaultNode) NodeInfo() transport.NodeInfo {
	return transport.NewNodeInfo(n.Name(), n.Address())
}

// Address is the bound listen address once started.
func (n *DefaultNode) Address() string {
	return n.TCPHandler.Addr()
}

func (n *DefaultNode) Name() messaging.XorName {
	return n.keys.Name()
}

func (n *DefaultNode) Peers() []transport.NodeInfo {
	return n.Router.Peers()
}

func (n *DefaultNode) AddPeer(info transport.NodeInfo) error {
	return n.Router.InsertNode(info)
}

func (n *DefaultNode) Stats() Stats {
	return Stats{
		Received:      n.stats.received.Load(),
		Duplicates:    n.stats.duplicates.Load(),
		BadSignature:  n.stats.badSignature.Load(),
		UnknownSender: n.stats.unknownSender.Load(),
		Delivered:     n.stats.delivered.Load(),
		Forwarded:     n.stats.forwarded.Load(),
		Undeliverable: n.stats.undeliverable.Load(),
		Stale:         n.seen.Stale(),
	}
}

func (n *DefaultNode) Start() error {
	if err := n.TCPHandler.ListenAndAccept(); err != nil {
		return err
	}
	logs.Infof("node %s listening on %s as %s", n.Name().Short(), n.Address(), n.duty)

	go func() {
		c := n.TCPHandler.Inbound()
		for {
			select {
			case <-n.exit:
				logs.Debugf("handleInbound(): exiting")
				return
			case pkt, ok := <-c:
				if !ok {
					return
				}
				n.handlePacket(pkt)
			}
		}
	}()

	return nil
}

func (n *DefaultNode) Shutdown() error {
	n.shutdown.Do(func() {
		close(n.exit)
		n.mu.Lock()
		for _, conn := range n.links {
			conn.Close()
		}
		n.mu.Unlock()
	})
	err := n.TCPHandler.Close()
	logs.Infof("node %s stopped", n.Name().Short())
	return err
}

// Dispatch signs msg as this node and sends it toward its destination,
// handling it here when the destination is local.
func (n *DefaultNode) Dispatch(msg messaging.Message) error {
	origin, err := identity.NewNodeSender(n.keys, n.duty, msg)
	if err != nil {
		return err
	}
	env := messaging.NewEnvelope(msg, origin)
	n.seen.Observe(env.ID())
	if n.isLocal(env.Destination()) {
		n.deliver(env)
		return nil
	}
	return n.route(env)
}

// handlePacket runs the inbound pipeline for one envelope.
func (n *DefaultNode) handlePacket(pkt transport.Packet) {
	env := pkt.Envelope
	n.stats.received.Inc()

	// only envelopes that pass both checks are recorded as seen, so a
	// rejected copy cannot shadow the genuine message with the same id
	if err := identity.VerifyEnvelope(env); err != nil {
		n.stats.badSignature.Inc()
		logs.Warnf("handlePacket(%s): dropped: %v", env.ID().Short(), err)
		return
	}
	sender := env.MostRecentSender()
	if !sender.IsClient() {
		if _, err := n.Router.Lookup(sender.ID().XorName()); err != nil {
			n.stats.unknownSender.Inc()
			logs.Warnf("handlePacket(%s): dropped: unknown sender %v", env.ID().Short(), sender)
			return
		}
	}
	if n.seen.Observe(env.ID()) {
		n.stats.duplicates.Inc()
		logs.Debugf("handlePacket(%s): duplicate", env.ID().Short())
		return
	}
	if env.Origin.IsClient() {
		n.rememberClient(env.Origin.ID().XorName(), pkt.Conn)
	}

	dst := env.Destination()
	logs.Debugf("handlePacket(%v): from %v to %v", env.Message, sender, dst)
	if n.isLocal(dst) {
		n.deliver(env)
		return
	}

	proxy, err := identity.NewNodeSender(n.keys, n.duty, env.Message)
	if err != nil {
		logs.Warnf("handlePacket(%s): sign proxy: %v", env.ID().Short(), err)
		return
	}
	env.AddProxy(proxy)
	if err := n.route(env); err != nil {
		n.stats.undeliverable.Inc()
		logs.Warnf("handlePacket(%s): %v", env.ID().Short(), err)
		return
	}
	n.stats.forwarded.Inc()
}

// isLocal reports whether dst is served by this node's handler. Client
// addresses never are: envelopes for clients are written to them.
func (n *DefaultNode) isLocal(dst messaging.Address) bool {
	switch dst.Kind {
	case messaging.NodeKind:
		return dst.Name == n.Name()
	case messaging.SectionKind:
		return n.Name().CommonPrefix(dst.Name) >= n.sectionBits
	default:
		return false
	}
}

func (n *DefaultNode) deliver(env *messaging.Envelope) {
	n.stats.delivered.Inc()
	if n.handler == nil {
		return
	}
	reply := n.handler.HandleEnvelope(env)
	if reply == nil {
		return
	}
	if err := n.Dispatch(reply); err != nil {
		n.stats.undeliverable.Inc()
		logs.Warnf("deliver(%s): reply %v: %v", env.ID().Short(), reply, err)
	}
}

// route sends env one hop closer to its destination: back along the path
// a client's traffic arrived on, otherwise to the known peer nearest the
// destination name when that peer is nearer than this node.
func (n *DefaultNode) route(env *messaging.Envelope) error {
	dst := env.Destination()
	if dst.IsClient() {
		if conn := n.clientConn(dst.Name); conn != nil {
			err := n.TCPHandler.Send(conn, env)
			if err == nil {
				return nil
			}
			logs.Warnf("route(%s): client %s unreachable: %v", env.ID().Short(), dst.Name.Short(), err)
			n.forgetClient(dst.Name, conn)
		}
	}

	peer, err := n.Router.Lookup(dst.Name)
	if err != nil {
		peer, err = n.Router.Closest(dst.Name)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoRoute, dst)
		}
		if peer.ID.Distance(dst.Name).Cmp(n.Name().Distance(dst.Name)) >= 0 {
			return fmt.Errorf("%w: %v, no peer is closer", ErrNoRoute, dst)
		}
	}

	conn, err := n.link(peer)
	if err != nil {
		return err
	}
	if err := n.TCPHandler.Send(conn, env); err != nil {
		n.dropLink(peer.ID)
		return err
	}
	logs.Debugf("route(%s): forwarded to %v", env.ID().Short(), peer)
	return nil
}

func (n *DefaultNode) rememberClient(name messaging.XorName, conn net.Conn) {
	if conn == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.clients[name] = conn
}

func (n *DefaultNode) clientConn(name messaging.XorName) net.Conn {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clients[name]
}

func (n *DefaultNode) forgetClient(name messaging.XorName, conn net.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.clients[name] == conn {
		delete(n.clients, name)
	}
}

// forgetConn drops every return path and peer link using conn.
func (n *DefaultNode) forgetConn(conn net.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for name, c := range n.clients {
		if c == conn {
			delete(n.clients, name)
		}
	}
	for name, c := range n.links {
		if c == conn {
			delete(n.links, name)
		}
	}
}

func (n *DefaultNode) link(peer transport.NodeInfo) (net.Conn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if conn, ok := n.links[peer.ID]; ok {
		return conn, nil
	}
	conn, err := n.TCPHandler.Dial(peer.Address)
	if err != nil {
		return nil, err
	}
	n.links[peer.ID] = conn
	return conn, nil
}

func (n *DefaultNode) dropLink(name messaging.XorName) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if conn, ok := n.links[name]; ok {
		conn.Close()
		delete(n.links, name)
	}
}
