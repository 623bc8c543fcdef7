package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	logs "github.com/danmuck/smplog"

	"github.com/danmuck/dps_messaging/cmd/internal/logcfg"
	"github.com/danmuck/dps_messaging/src/api/identity"
	"github.com/danmuck/dps_messaging/src/api/messaging"
	"github.com/danmuck/dps_messaging/src/api/transport"
)

func main() {
	var (
		address = flag.String("addr", "localhost:3000", "node to connect to")
		keyFile = flag.String("key", "./local/client.key", "client key file, created when missing")
		logPath = flag.String("log-config", "", "smplog config file")
		timeout = flag.Duration("timeout", 10*time.Second, "how long to wait for the response")
	)
	flag.Parse()
	logs.Configure(logcfg.Load(*logPath))

	keys, err := identity.LoadOrCreateKeypair(*keyFile)
	if err != nil {
		logs.Fatalf(err, "failed to load client key")
	}

	exit := make(chan any)
	h := transport.NewTCPHandler("", exit)
	defer func() {
		close(exit)
		h.Close()
	}()

	logs.Infof("Connecting to node at %s...", *address)
	conn, err := h.Dial(*address)
	if err != nil {
		logs.Fatalf(err, "failed to connect to node")
	}

	query := messaging.NewQuery(messaging.TransferQuery{Op: messaging.KindGetBalance, At: keys.PublicKey()})
	origin, err := identity.NewClientSender(keys, query)
	if err != nil {
		logs.Fatalf(err, "failed to sign query")
	}
	if err := h.Send(conn, messaging.NewEnvelope(query, origin)); err != nil {
		logs.Fatalf(err, "failed to send query")
	}
	logs.Debugf("sent %v", query)

	deadline := time.After(*timeout)
	for {
		select {
		case pkt, ok := <-h.Inbound():
			if !ok {
				logs.Warnf("connection closed before a response arrived")
				os.Exit(1)
			}
			if err := identity.VerifyEnvelope(pkt.Envelope); err != nil {
				logs.Warnf("ignoring envelope: %v", err)
				continue
			}
			reply, ok := pkt.Envelope.Message.(*messaging.QueryResponseMessage)
			if !ok || reply.CorrelationID != query.ID() {
				logs.Debugf("ignoring %v", pkt.Envelope.Message)
				continue
			}
			balance, err := messaging.AsMoney(reply.Response)
			if err != nil {
				logs.Errorf(err, "query failed")
				os.Exit(1)
			}
			fmt.Printf("balance of %s: %s\n", keys.Name().Short(), balance)
			return
		case <-deadline:
			logs.Warnf("no response within %s", *timeout)
			os.Exit(1)
		}
	}
}
