package identity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/dps_messaging/src/api/messaging"
)

func newKeypair(t *testing.T) *Keypair {
	t.Helper()
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return kp
}

func TestSignedEnvelopeVerifies(t *testing.T) {
	client := newKeypair(t)
	gateway := newKeypair(t)
	section := newKeypair(t)

	msg := messaging.NewQuery(messaging.TransferQuery{Op: messaging.KindGetBalance, At: client.PublicKey()})
	origin, err := NewClientSender(client, msg)
	if err != nil {
		t.Fatalf("NewClientSender: %v", err)
	}
	env := messaging.NewEnvelope(msg, origin)

	proxy, err := NewNodeSender(gateway, messaging.ElderRole(messaging.RunAsGateway), msg)
	if err != nil {
		t.Fatalf("NewNodeSender: %v", err)
	}
	env.AddProxy(proxy)
	proxy, err = NewSectionSender(section, messaging.ElderRole(messaging.RunAsTransfers), msg)
	if err != nil {
		t.Fatalf("NewSectionSender: %v", err)
	}
	env.AddProxy(proxy)

	if err := VerifyEnvelope(env); err != nil {
		t.Fatalf("VerifyEnvelope: %v", err)
	}
	if env.MostRecentSender().ID() != section.PublicKey() {
		t.Fatalf("most recent sender = %v", env.MostRecentSender())
	}
}

func TestVerifyRejectsForgery(t *testing.T) {
	client := newKeypair(t)
	impostor := newKeypair(t)
	msg := messaging.NewQuery(messaging.AuthQuery{Client: client.PublicKey()})

	tests := []struct {
		name   string
		sender func(t *testing.T) messaging.MsgSender
		msg    messaging.Message
	}{
		{
			name: "signature by another key",
			sender: func(t *testing.T) messaging.MsgSender {
				sig, err := SignMessage(impostor, msg)
				if err != nil {
					t.Fatal(err)
				}
				return messaging.ClientSender(client.PublicKey(), sig)
			},
			msg: msg,
		},
		{
			name: "signature over another message",
			sender: func(t *testing.T) messaging.MsgSender {
				s, err := NewClientSender(client, msg)
				if err != nil {
					t.Fatal(err)
				}
				return s
			},
			msg: messaging.NewQuery(messaging.AuthQuery{Client: client.PublicKey()}),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := VerifySender(tc.sender(t), tc.msg); !errors.Is(err, ErrBadSignature) {
				t.Fatalf("VerifySender error = %v, want %v", err, ErrBadSignature)
			}
		})
	}
}

func TestVerifyEnvelopeNamesBadProxy(t *testing.T) {
	client := newKeypair(t)
	msg := messaging.NewQuery(messaging.AuthQuery{Client: client.PublicKey()})
	origin, err := NewClientSender(client, msg)
	if err != nil {
		t.Fatal(err)
	}
	env := messaging.NewEnvelope(msg, origin)
	env.AddProxy(messaging.NodeSender(newKeypair(t).PublicKey(), messaging.ElderRole(messaging.RunAsGateway), messaging.Signature{}))

	err = VerifyEnvelope(env)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("VerifyEnvelope error = %v", err)
	}
}

func TestLoadOrCreateKeypair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "node.key")

	first, err := LoadOrCreateKeypair(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := LoadOrCreateKeypair(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if first.PublicKey() != second.PublicKey() {
		t.Fatal("reloaded keypair differs")
	}
	if first.Name() != messaging.XorNameFromPublicKey(first.PublicKey()) {
		t.Fatal("Name is not the xorname of the public key")
	}

	bad := filepath.Join(t.TempDir(), "bad.key")
	if err := os.WriteFile(bad, []byte("abcd"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrCreateKeypair(bad); !errors.Is(err, ErrBadKeyFile) {
		t.Fatalf("short seed error = %v", err)
	}
}
