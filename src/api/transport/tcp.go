package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	logs "github.com/danmuck/smplog"

	"github.com/danmuck/dps_messaging/src/api/messaging"
)

const (
	pollInterval = 500 * time.Millisecond
	frameTimeout = 5 * time.Second
	dialTimeout  = 3 * time.Second
)

type TCPHandler struct {
	address  string
	listener net.Listener
	inbound  chan Packet
	coder    Coder
	exit     chan any

	done      chan struct{}
	closeOnce sync.Once
	conns     sync.WaitGroup
	writeMu   sync.Mutex

	// OnDisconnect is called with each connection whose reader has exited,
	// after the connection is closed. Set it before the handler starts.
	OnDisconnect func(net.Conn)
}

// TCPHandler generator function
func NewTCPHandler(address string, exit chan any) *TCPHandler {
	logs.Debugf("NewTCPHandler(%s)", address)
	return &TCPHandler{
		address: address,
		inbound: make(chan Packet),
		exit:    exit,
		coder:   DefaultCoder{},
		done:    make(chan struct{}),
	}
}

// interface

// Close stops the accept loop and every connection reader, then closes the
// inbound channel.
func (h *TCPHandler) Close() error {
	logs.Debugf("Close(start)")
	h.closeOnce.Do(func() {
		close(h.done)
		h.conns.Wait()
		close(h.inbound)
	})
	logs.Debugf("Close(done)")
	return nil
}

// Listen and accept connections via TCPHandler.listener
func (h *TCPHandler) ListenAndAccept() error {
	logs.Debugf("ListenAndAccept(%s)", h.address)
	var err error
	h.listener, err = net.Listen("tcp", h.address)
	if err != nil {
		return err
	}

	h.conns.Add(1)
	go h.acceptConnections()

	return nil
}

// Addr is the bound listen address, useful after listening on port 0.
func (h *TCPHandler) Addr() string {
	if h.listener == nil {
		return h.address
	}
	return h.listener.Addr().String()
}

// Dial connects to a peer. Envelopes the peer writes back on the
// connection are delivered on Inbound like any other.
func (h *TCPHandler) Dial(address string) (net.Conn, error) {
	logs.Debugf("Dial(%s)", address)
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	h.conns.Add(1)
	go h.handleConnection(conn)
	return conn, nil
}

// Send an envelope over a connection using the configured encoder
func (h *TCPHandler) Send(conn net.Conn, env *messaging.Envelope) error {
	data, err := h.coder.Encode(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_, err = conn.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write envelope: %w", err)
	}
	return nil
}

// Receive envelopes from the inbound channel
func (h *TCPHandler) Inbound() <-chan Packet {
	return h.inbound
}

// private

func (h *TCPHandler) stopping() bool {
	select {
	case <-h.exit:
		return true
	case <-h.done:
		return true
	default:
		return false
	}
}

// listener accept loop
func (h *TCPHandler) acceptConnections() {
	logs.Debugf("acceptConnections(): start")
	defer h.conns.Done()
	defer h.listener.Close()
	for !h.stopping() {
		h.listener.(*net.TCPListener).SetDeadline(time.Now().Add(pollInterval)) // Non-blocking
		conn, err := h.listener.Accept()
		if err != nil {
			if opErr, ok := err.(*net.OpError); ok && opErr.Timeout() {
				// Timeout, continue to check exit
				continue
			}
			logs.Warnf("acceptConnections error: %s", err)
			return
		}
		h.conns.Add(1)
		go h.handleConnection(conn)
	}
	logs.Debugf("acceptConnections(): exit")
}

// connection reader, shared by accepted and dialed connections
func (h *TCPHandler) handleConnection(conn net.Conn) {
	defer h.conns.Done()
	defer h.disconnected(conn)
	defer conn.Close()
	peer := conn.RemoteAddr().String()
	logs.Debugf("handleConnection(%s): start", peer)

	reader := bufio.NewReader(conn)
	for !h.stopping() {
		conn.SetReadDeadline(time.Now().Add(pollInterval)) // Non-blocking

		if _, err := reader.Peek(1); err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				// Timeout, continue to check exit
				continue
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				logs.Debugf("handleConnection(%s): closed by peer", peer)
				return
			}
			logs.Warnf("handleConnection(%s): read error: %v", peer, err)
			return
		}

		// a frame has started; give the rest of it time to arrive
		conn.SetReadDeadline(time.Now().Add(frameTimeout))
		env, err := h.coder.Decode(reader)
		if errors.Is(err, ErrBadEnvelope) {
			logs.Warnf("handleConnection(%s): dropped frame: %v", peer, err)
			continue
		}
		if err != nil {
			logs.Warnf("handleConnection(%s): %v", peer, err)
			return
		}

		select {
		case h.inbound <- Packet{Envelope: env, Conn: conn}:
		case <-h.done:
			return
		case <-h.exit:
			return
		}
	}
	logs.Debugf("handleConnection(%s): connection released", peer)
}

func (h *TCPHandler) disconnected(conn net.Conn) {
	if h.OnDisconnect != nil {
		h.OnDisconnect(conn)
	}
}
