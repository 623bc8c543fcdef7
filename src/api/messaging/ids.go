package messaging

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/bits"

	"golang.org/x/crypto/sha3"
)

const (
	XorNameSize   = 32 // 256 bit network identifier
	PublicKeySize = 32 // ed25519 public key
	SignatureSize = 64 // ed25519 signature
	MessageIDSize = 32
)

// XorName is a location in the network's xor space. Clients, nodes,
// sections and data all live at an XorName.
type XorName [XorNameSize]byte

// XorNameFromPublicKey derives the network location of a key (sha3-256).
func XorNameFromPublicKey(pk PublicKey) XorName {
	return XorName(sha3.Sum256(pk[:]))
}

// XorNameFromContent derives the location of immutable content.
func XorNameFromContent(data []byte) XorName {
	return XorName(sha3.Sum256(data))
}

func (n XorName) String() string {
	return hex.EncodeToString(n[:])
}

// Short returns the first 6 hex characters, for logs.
func (n XorName) Short() string {
	return hex.EncodeToString(n[:3])
}

func (n XorName) IsZero() bool {
	return n == XorName{}
}

// Distance returns the xor distance between two names.
func (n XorName) Distance(other XorName) XorName {
	var d XorName
	for i := range n {
		d[i] = n[i] ^ other[i]
	}
	return d
}

// Cmp orders names as big-endian integers.
func (n XorName) Cmp(other XorName) int {
	return bytes.Compare(n[:], other[:])
}

// CommonPrefix returns the number of leading bits shared with other.
func (n XorName) CommonPrefix(other XorName) int {
	for i := range n {
		if x := n[i] ^ other[i]; x != 0 {
			return i*8 + bits.LeadingZeros8(x)
		}
	}
	return XorNameSize * 8
}

// ParseXorName decodes a 64 character hex string.
func ParseXorName(s string) (XorName, error) {
	var n XorName
	b, err := hex.DecodeString(s)
	if err != nil {
		return n, fmt.Errorf("invalid xor name: %w", err)
	}
	if len(b) != XorNameSize {
		return n, fmt.Errorf("invalid xor name length: got %d, want %d", len(b), XorNameSize)
	}
	copy(n[:], b)
	return n, nil
}

// PublicKey is the identity key of a client, node or section.
type PublicKey [PublicKeySize]byte

func (pk PublicKey) XorName() XorName {
	return XorNameFromPublicKey(pk)
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// Signature is carried opaquely; producing and checking it is up to the
// identity package.
type Signature [SignatureSize]byte

func (s Signature) String() string {
	return hex.EncodeToString(s[:8]) + ".."
}

// MessageID uniquely identifies one logical message. Two envelopes with the
// same id are the same message, whatever their payloads.
type MessageID [MessageIDSize]byte

// NewMessageID returns an id filled with uniform random bytes.
func NewMessageID() MessageID {
	var id MessageID
	if _, err := rand.Read(id[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("messaging: reading random id: %v", err))
	}
	return id
}

func (id MessageID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 8 hex characters, for logs.
func (id MessageID) Short() string {
	return hex.EncodeToString(id[:4])
}

func (id MessageID) IsZero() bool {
	return id == MessageID{}
}
