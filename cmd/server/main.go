package main

import (
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	logs "github.com/danmuck/smplog"

	"github.com/danmuck/dps_messaging/cmd/internal/logcfg"
	"github.com/danmuck/dps_messaging/src/api/identity"
	"github.com/danmuck/dps_messaging/src/api/messaging"
	"github.com/danmuck/dps_messaging/src/api/nodes"
	"github.com/danmuck/dps_messaging/src/config"
)

// storeCostPerKB is what the demo section charges per started kilobyte.
const storeCostPerKB = messaging.Money(1_000)

// demoHandler answers balance and store cost queries and reports every
// other query as missing data.
func demoHandler(env *messaging.Envelope) messaging.Message {
	logs.Infof("handle: %v", env)
	q, ok := env.Message.(*messaging.QueryMessage)
	if !ok {
		return nil
	}
	requester := env.Origin.Address()

	if tq, ok := q.Query.(messaging.TransferQuery); ok {
		switch tq.Op {
		case messaging.KindGetBalance:
			// every key holds a balance derived from its name
			name := tq.At.XorName()
			balance := messaging.Money(name[0])*1_000_000_000 + messaging.Money(name[1])
			return messaging.RespondTo(q, requester, messaging.GetBalance(messaging.Success(balance)))
		case messaging.KindGetStoreCost:
			cost := messaging.Money((tq.Bytes+1023)/1024) * storeCostPerKB
			return messaging.RespondTo(q, requester, messaging.GetStoreCost(messaging.Success(cost)))
		}
	}

	resp, err := messaging.ErrorResponse(q.Query.ResponseKind(), messaging.NewError(messaging.NoSuchData, ""))
	if err != nil {
		logs.Warnf("handle(%s): %v", q.ID().Short(), err)
		return nil
	}
	return messaging.RespondTo(q, requester, resp)
}

func main() {
	var (
		configPath = flag.String("config", "", "node config file (toml)")
		logPath    = flag.String("log-config", "", "smplog config file")
		address    = flag.String("addr", "", "listen address, overrides the config file")
		duty       = flag.String("duty", "", "node duty, e.g. Elder(RunAsGateway)")
		keyFile    = flag.String("key", "", "key file, created when missing")
		writeCfg   = flag.String("write-config", "", "write the effective config to this path and exit")
	)
	flag.Parse()
	logs.Configure(logcfg.Load(*logPath))

	cfg := config.DefaultNodeConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadNodeConfig(*configPath)
		if err != nil {
			logs.Fatalf(err, "failed to load config")
		}
	}
	if *address != "" {
		cfg.Address = *address
	}
	if *duty != "" {
		cfg.Duty = strings.TrimSpace(*duty)
	}
	if *keyFile != "" {
		cfg.KeyFile = *keyFile
	}
	if err := cfg.Validate(); err != nil {
		logs.Fatalf(err, "invalid config")
	}
	if *writeCfg != "" {
		if err := cfg.Save(*writeCfg); err != nil {
			logs.Fatalf(err, "failed to write config")
		}
		logs.Infof("wrote config to %s", *writeCfg)
		return
	}

	keys, err := identity.LoadOrCreateKeypair(cfg.KeyFile)
	if err != nil {
		logs.Fatalf(err, "failed to load node key")
	}

	n, err := nodes.NewDefaultNode(keys, cfg, nodes.HandlerFunc(demoHandler))
	if err != nil {
		logs.Fatalf(err, "failed to create node")
	}
	if err := n.Start(); err != nil {
		logs.Fatalf(err, "failed to start node")
	}
	logs.Infof("node %s (%s) peers=%d", n.Name(), n.Address(), len(n.Peers()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logs.Infof("stats: %+v", n.Stats())
	if err := n.Shutdown(); err != nil {
		logs.Errorf(err, "shutdown error")
	}
}
