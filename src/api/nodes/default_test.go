package nodes

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/danmuck/dps_messaging/src/api/identity"
	"github.com/danmuck/dps_messaging/src/api/messaging"
	"github.com/danmuck/dps_messaging/src/api/transport"
	"github.com/danmuck/dps_messaging/src/config"
)

const balance = messaging.Money(100)

var balanceHandler = HandlerFunc(func(env *messaging.Envelope) messaging.Message {
	q, ok := env.Message.(*messaging.QueryMessage)
	if !ok {
		return nil
	}
	return messaging.RespondTo(q, env.Origin.Address(), messaging.GetBalance(messaging.Success(balance)))
})

func newKeypair(t *testing.T) *identity.Keypair {
	t.Helper()
	kp, err := identity.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return kp
}

func startNode(t *testing.T, sectionBits int) *DefaultNode {
	t.Helper()
	cfg := config.DefaultNodeConfig()
	cfg.Address = "localhost:0"
	cfg.SectionBits = sectionBits
	node, err := NewDefaultNode(newKeypair(t), cfg, balanceHandler)
	if err != nil {
		t.Fatalf("NewDefaultNode: %v", err)
	}
	if err := node.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { node.Shutdown() })
	return node
}

type testClient struct {
	keys    *identity.Keypair
	handler *transport.TCPHandler
	conn    net.Conn
}

func dialClient(t *testing.T, address string) *testClient {
	t.Helper()
	exit := make(chan any)
	h := transport.NewTCPHandler("localhost:0", exit)
	conn, err := h.Dial(address)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() {
		close(exit)
		h.Close()
	})
	return &testClient{keys: newKeypair(t), handler: h, conn: conn}
}

func (c *testClient) signed(t *testing.T, msg messaging.Message) *messaging.Envelope {
	t.Helper()
	origin, err := identity.NewClientSender(c.keys, msg)
	if err != nil {
		t.Fatalf("NewClientSender: %v", err)
	}
	return messaging.NewEnvelope(msg, origin)
}

func (c *testClient) send(t *testing.T, env *messaging.Envelope) {
	t.Helper()
	if err := c.handler.Send(c.conn, env); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func (c *testClient) receive(t *testing.T) *messaging.Envelope {
	t.Helper()
	select {
	case pkt := <-c.handler.Inbound():
		return pkt.Envelope
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a reply")
	}
	return nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func balanceQuery(c *testClient) *messaging.QueryMessage {
	return messaging.NewQuery(messaging.TransferQuery{Op: messaging.KindGetBalance, At: c.keys.PublicKey()})
}

func TestNodeAnswersQuery(t *testing.T) {
	node := startNode(t, 0)
	client := dialClient(t, node.Address())

	query := balanceQuery(client)
	client.send(t, client.signed(t, query))

	reply := client.receive(t)
	msg, ok := reply.Message.(*messaging.QueryResponseMessage)
	if !ok {
		t.Fatalf("reply is %T", reply.Message)
	}
	if msg.CorrelationID != query.ID() {
		t.Fatalf("reply correlates %s, want %s", msg.CorrelationID, query.ID())
	}
	if got, err := messaging.AsMoney(msg.Response); err != nil || got != balance {
		t.Fatalf("AsMoney = %v, %v", got, err)
	}
	if reply.Origin.ID() != node.keys.PublicKey() {
		t.Fatalf("reply origin = %v", reply.Origin)
	}
	if err := identity.VerifyEnvelope(reply); err != nil {
		t.Fatalf("reply does not verify: %v", err)
	}
	if s := node.Stats(); s.Received != 1 || s.Delivered != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestNodeDropsDuplicates(t *testing.T) {
	node := startNode(t, 0)
	client := dialClient(t, node.Address())

	env := client.signed(t, balanceQuery(client))
	client.send(t, env)
	client.send(t, env)

	waitFor(t, "duplicate count", func() bool { return node.Stats().Duplicates == 1 })
	client.receive(t)
	if s := node.Stats(); s.Delivered != 1 {
		t.Fatalf("delivered %d times", s.Delivered)
	}
}

func TestNodeRejectsSenders(t *testing.T) {
	node := startNode(t, 0)
	client := dialClient(t, node.Address())

	forged := messaging.NewEnvelope(balanceQuery(client), messaging.ClientSender(client.keys.PublicKey(), messaging.Signature{}))
	client.send(t, forged)
	waitFor(t, "bad signature count", func() bool { return node.Stats().BadSignature == 1 })

	stranger := newKeypair(t)
	query := balanceQuery(client)
	origin, err := identity.NewNodeSender(stranger, messaging.ElderRole(messaging.RunAsGateway), query)
	if err != nil {
		t.Fatal(err)
	}
	client.send(t, messaging.NewEnvelope(query, origin))
	waitFor(t, "unknown sender count", func() bool { return node.Stats().UnknownSender == 1 })

	if s := node.Stats(); s.Delivered != 0 {
		t.Fatalf("rejected envelopes were delivered: %+v", s)
	}
}

func TestNodeForwardsToResponsibleNode(t *testing.T) {
	// every name is its own section, so only the named node answers
	const exact = messaging.XorNameSize * 8
	gateway := startNode(t, exact)
	holder := startNode(t, exact)
	if err := gateway.AddPeer(holder.NodeInfo()); err != nil {
		t.Fatal(err)
	}
	if err := holder.AddPeer(gateway.NodeInfo()); err != nil {
		t.Fatal(err)
	}

	client := dialClient(t, gateway.Address())
	query := messaging.NewQuery(messaging.TransferQuery{Op: messaging.KindGetBalance, At: holder.keys.PublicKey()})
	client.send(t, client.signed(t, query))

	reply := client.receive(t)
	msg, ok := reply.Message.(*messaging.QueryResponseMessage)
	if !ok {
		t.Fatalf("reply is %T", reply.Message)
	}
	if msg.CorrelationID != query.ID() {
		t.Fatalf("reply correlates %s, want %s", msg.CorrelationID, query.ID())
	}
	if reply.Origin.ID() != holder.keys.PublicKey() {
		t.Fatalf("reply origin = %v, want the holder", reply.Origin)
	}
	if len(reply.Proxies) != 1 || reply.MostRecentSender().ID() != gateway.keys.PublicKey() {
		t.Fatalf("reply proxies = %v, want the gateway", reply.Proxies)
	}
	if err := identity.VerifyEnvelope(reply); err != nil {
		t.Fatalf("reply does not verify: %v", err)
	}

	waitFor(t, "gateway forwards", func() bool { return gateway.Stats().Forwarded == 2 })
	if s := gateway.Stats(); s.Delivered != 0 {
		t.Fatalf("gateway stats = %+v", s)
	}
	if s := holder.Stats(); s.Delivered != 1 {
		t.Fatalf("holder stats = %+v", s)
	}
}

func TestNodeWithoutRouteCountsUndeliverable(t *testing.T) {
	node := startNode(t, messaging.XorNameSize*8)
	client := dialClient(t, node.Address())

	client.send(t, client.signed(t, balanceQuery(client)))
	waitFor(t, "undeliverable count", func() bool { return node.Stats().Undeliverable == 1 })
}

func TestRejectedCopyDoesNotShadowGenuine(t *testing.T) {
	node := startNode(t, 0)
	client := dialClient(t, node.Address())

	stranger := newKeypair(t)
	query := balanceQuery(client)
	genuine := client.signed(t, query)

	forged := messaging.NewEnvelope(query, messaging.ClientSender(client.keys.PublicKey(), messaging.Signature{}))
	relayed := client.signed(t, query)
	proxy, err := identity.NewNodeSender(stranger, messaging.ElderRole(messaging.RunAsGateway), query)
	if err != nil {
		t.Fatal(err)
	}
	relayed.AddProxy(proxy)

	client.send(t, forged)
	client.send(t, relayed)
	client.send(t, genuine)

	reply := client.receive(t)
	msg, ok := reply.Message.(*messaging.QueryResponseMessage)
	if !ok || msg.CorrelationID != query.ID() {
		t.Fatalf("reply = %v, want an answer to %s", reply.Message, query.ID())
	}
	s := node.Stats()
	if s.BadSignature != 1 || s.UnknownSender != 1 || s.Duplicates != 0 || s.Delivered != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestNodeForgetsClosedClient(t *testing.T) {
	node := startNode(t, 0)
	client := dialClient(t, node.Address())
	name := client.keys.Name()

	client.send(t, client.signed(t, balanceQuery(client)))
	client.receive(t)
	if node.clientConn(name) == nil {
		t.Fatal("no return path recorded for the client")
	}

	client.conn.Close()
	waitFor(t, "return path removal", func() bool { return node.clientConn(name) == nil })
}

func TestRouteFallsBackFromDeadClientConn(t *testing.T) {
	node := startNode(t, 0)
	gone, other := net.Pipe()
	gone.Close()
	other.Close()

	client := newKeypair(t)
	node.rememberClient(client.Name(), gone)

	query := messaging.NewQuery(messaging.TransferQuery{Op: messaging.KindGetBalance, At: client.PublicKey()})
	reply := messaging.RespondTo(query, messaging.ClientAddress(client.Name()), messaging.GetBalance(messaging.Success(balance)))
	origin, err := identity.NewNodeSender(node.keys, node.duty, reply)
	if err != nil {
		t.Fatal(err)
	}

	err = node.route(messaging.NewEnvelope(reply, origin))
	if !errors.Is(err, ErrNoRoute) {
		t.Fatalf("route error = %v, want %v", err, ErrNoRoute)
	}
	if node.clientConn(client.Name()) != nil {
		t.Fatal("dead return path was kept")
	}
}
