package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/danmuck/dps_messaging/src/api/messaging"
)

func testEnvelope() *messaging.Envelope {
	var client messaging.PublicKey
	client[0] = 7
	query := messaging.NewQuery(messaging.TransferQuery{Op: messaging.KindGetBalance, At: client})
	return messaging.NewEnvelope(query, messaging.ClientSender(client, messaging.Signature{1}))
}

func startHandler(t *testing.T) (*TCPHandler, chan any) {
	t.Helper()
	exit := make(chan any)
	handler := NewTCPHandler("localhost:0", exit)
	if err := handler.ListenAndAccept(); err != nil {
		t.Fatalf("ListenAndAccept failed: %v", err)
	}
	t.Cleanup(func() {
		close(exit)
		handler.Close()
	})
	return handler, exit
}

func receive(t *testing.T, handler *TCPHandler) Packet {
	t.Helper()
	select {
	case pkt, ok := <-handler.Inbound():
		if !ok {
			t.Fatal("inbound channel closed")
		}
		return pkt
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for envelope")
	}
	return Packet{}
}

func TestTCPHandlerListenAndAccept(t *testing.T) {
	handler, _ := startHandler(t)

	conn, err := net.DialTimeout("tcp", handler.Addr(), 2*time.Second)
	if err != nil {
		t.Fatalf("Failed to connect to handler: %v", err)
	}
	conn.Close()
}

func TestTCPHandlerSendReceive(t *testing.T) {
	handler, _ := startHandler(t)

	conn, err := net.DialTimeout("tcp", handler.Addr(), 2*time.Second)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	env := testEnvelope()
	encoded, err := DefaultCoder{}.Encode(env)
	if err != nil {
		t.Fatalf("Failed to encode envelope: %v", err)
	}
	if _, err := conn.Write(encoded); err != nil {
		t.Fatalf("Failed to write envelope: %v", err)
	}

	pkt := receive(t, handler)
	if !pkt.Envelope.Equal(env) {
		t.Errorf("received %v, want %v", pkt.Envelope, env)
	}
	if pkt.Conn == nil {
		t.Error("packet carries no connection")
	}
}

func TestTCPHandlerReplyOnDialedConn(t *testing.T) {
	server, _ := startHandler(t)
	client, _ := startHandler(t)

	conn, err := client.Dial(server.Addr())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	request := testEnvelope()
	if err := client.Send(conn, request); err != nil {
		t.Fatalf("Send: %v", err)
	}

	pkt := receive(t, server)
	reply := messaging.NewEnvelope(
		messaging.RespondTo(pkt.Envelope.Message.(*messaging.QueryMessage), pkt.Envelope.Origin.Address(), messaging.GetBalance(messaging.Success[messaging.Money](9))),
		messaging.SectionSender(messaging.PublicKey{2}, messaging.ElderRole(messaging.RunAsTransfers), messaging.Signature{}),
	)
	if err := server.Send(pkt.Conn, reply); err != nil {
		t.Fatalf("reply Send: %v", err)
	}

	got := receive(t, client)
	msg, ok := got.Envelope.Message.(*messaging.QueryResponseMessage)
	if !ok {
		t.Fatalf("reply is %T", got.Envelope.Message)
	}
	if msg.CorrelationID != request.ID() {
		t.Fatalf("reply correlates %s, want %s", msg.CorrelationID, request.ID())
	}
}

func TestTCPHandlerSkipsBadEnvelope(t *testing.T) {
	handler, _ := startHandler(t)

	conn, err := net.DialTimeout("tcp", handler.Addr(), 2*time.Second)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	garbage := []byte{0, 0, 0, 3, 0xff, 0xff, 0xff}
	good, err := DefaultCoder{}.Encode(testEnvelope())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write(append(garbage, good...)); err != nil {
		t.Fatalf("write: %v", err)
	}

	if pkt := receive(t, handler); pkt.Envelope == nil {
		t.Fatal("valid envelope after a bad frame was not delivered")
	}
}

func TestTCPHandlerReportsDisconnect(t *testing.T) {
	exit := make(chan any)
	handler := NewTCPHandler("localhost:0", exit)
	gone := make(chan net.Conn, 1)
	handler.OnDisconnect = func(conn net.Conn) { gone <- conn }
	if err := handler.ListenAndAccept(); err != nil {
		t.Fatalf("ListenAndAccept failed: %v", err)
	}
	t.Cleanup(func() {
		close(exit)
		handler.Close()
	})

	conn, err := net.DialTimeout("tcp", handler.Addr(), 2*time.Second)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	encoded, err := DefaultCoder{}.Encode(testEnvelope())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write(encoded); err != nil {
		t.Fatalf("write: %v", err)
	}
	pkt := receive(t, handler)
	conn.Close()

	select {
	case closed := <-gone:
		if closed != pkt.Conn {
			t.Fatalf("disconnect reported %v, want the packet's connection", closed.RemoteAddr())
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for the disconnect")
	}
}

func TestDefaultCoderRejectsOversizedFrame(t *testing.T) {
	var hdr [HeaderSize]byte
	binary.BigEndian.PutUint32(hdr[:], MaxFrameSize+1)

	_, err := DefaultCoder{}.Decode(bytes.NewReader(hdr[:]))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("Decode error = %v, want %v", err, ErrFrameTooLarge)
	}
}

func TestDefaultCoderRoundTrip(t *testing.T) {
	env := testEnvelope()
	env.AddProxy(messaging.NodeSender(messaging.PublicKey{3}, messaging.ElderRole(messaging.RunAsGateway), messaging.Signature{3}))

	encoded, err := DefaultCoder{}.Encode(env)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if n := binary.BigEndian.Uint32(encoded[:HeaderSize]); int(n) != len(encoded)-HeaderSize {
		t.Fatalf("header says %d bytes, body has %d", n, len(encoded)-HeaderSize)
	}
	got, err := DefaultCoder{}.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Equal(env) {
		t.Fatalf("got %v, want %v", got, env)
	}
}
