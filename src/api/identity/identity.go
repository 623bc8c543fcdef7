// Package identity signs and verifies message senders with ed25519 keys.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/dps_messaging/src/api/messaging"
)

var (
	ErrBadSignature = errors.New("signature does not match sender")
	ErrBadKeyFile   = errors.New("invalid key file")
)

// Keypair is the signing identity of a client or node.
type Keypair struct {
	private ed25519.PrivateKey
	public  messaging.PublicKey
}

func GenerateKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return fromPrivate(priv), nil
}

// KeypairFromSeed derives a keypair deterministically from a 32 byte seed.
func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed is %d bytes, want %d", ErrBadKeyFile, len(seed), ed25519.SeedSize)
	}
	return fromPrivate(ed25519.NewKeyFromSeed(seed)), nil
}

func fromPrivate(priv ed25519.PrivateKey) *Keypair {
	kp := &Keypair{private: priv}
	copy(kp.public[:], priv.Public().(ed25519.PublicKey))
	return kp
}

func (kp *Keypair) PublicKey() messaging.PublicKey { return kp.public }

// Name is the keypair's location in xor space.
func (kp *Keypair) Name() messaging.XorName { return kp.public.XorName() }

func (kp *Keypair) sign(b []byte) messaging.Signature {
	var sig messaging.Signature
	copy(sig[:], ed25519.Sign(kp.private, b))
	return sig
}

// LoadOrCreateKeypair reads a hex encoded seed from path, creating the file
// with a fresh seed when it does not exist.
func LoadOrCreateKeypair(path string) (*Keypair, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		kp, err := GenerateKeypair()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create key dir: %w", err)
		}
		seed := hex.EncodeToString(kp.private.Seed())
		if err := os.WriteFile(path, []byte(seed+"\n"), 0o600); err != nil {
			return nil, fmt.Errorf("write key file: %w", err)
		}
		return kp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKeyFile, err)
	}
	return KeypairFromSeed(seed)
}

// SignMessage signs the bytes every sender of msg signs.
func SignMessage(kp *Keypair, msg messaging.Message) (messaging.Signature, error) {
	b, err := messaging.MarshalMessage(msg)
	if err != nil {
		return messaging.Signature{}, err
	}
	return kp.sign(b), nil
}

func NewClientSender(kp *Keypair, msg messaging.Message) (messaging.MsgSender, error) {
	sig, err := SignMessage(kp, msg)
	if err != nil {
		return messaging.MsgSender{}, err
	}
	return messaging.ClientSender(kp.public, sig), nil
}

func NewNodeSender(kp *Keypair, duty messaging.Duty, msg messaging.Message) (messaging.MsgSender, error) {
	sig, err := SignMessage(kp, msg)
	if err != nil {
		return messaging.MsgSender{}, err
	}
	return messaging.NodeSender(kp.public, duty, sig), nil
}

func NewSectionSender(kp *Keypair, duty messaging.Duty, msg messaging.Message) (messaging.MsgSender, error) {
	sig, err := SignMessage(kp, msg)
	if err != nil {
		return messaging.MsgSender{}, err
	}
	return messaging.SectionSender(kp.public, duty, sig), nil
}

// VerifySender checks that sender signed msg with the key it declares.
func VerifySender(sender messaging.MsgSender, msg messaging.Message) error {
	b, err := messaging.MarshalMessage(msg)
	if err != nil {
		return err
	}
	return verify(sender, b)
}

func verify(sender messaging.MsgSender, signable []byte) error {
	id, sig := sender.ID(), sender.Signature()
	if !ed25519.Verify(ed25519.PublicKey(id[:]), signable, sig[:]) {
		return fmt.Errorf("%w: %v", ErrBadSignature, sender)
	}
	return nil
}

// VerifyEnvelope checks the origin and every proxy against the message.
func VerifyEnvelope(env *messaging.Envelope) error {
	b, err := env.SignableBytes()
	if err != nil {
		return err
	}
	if err := verify(env.Origin, b); err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	for i, p := range env.Proxies {
		if err := verify(p, b); err != nil {
			return fmt.Errorf("proxy %d: %w", i, err)
		}
	}
	return nil
}
