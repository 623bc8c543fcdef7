package messaging

import (
	"bytes"
	"fmt"
)

// Money is an amount in nanos.
type Money uint64

const nanosPerUnit = 1_000_000_000

func (m Money) String() string {
	return fmt.Sprintf("%d.%09d", uint64(m)/nanosPerUnit, uint64(m)%nanosPerUnit)
}

type DataKind uint8

const (
	BlobData DataKind = iota + 1
	MapData
	SequenceData
)

func (k DataKind) String() string {
	switch k {
	case BlobData:
		return "Blob"
	case MapData:
		return "Map"
	case SequenceData:
		return "Sequence"
	default:
		return fmt.Sprintf("DataKind(%d)", uint8(k))
	}
}

// DataAddress locates a piece of network data. Blobs are addressed by
// content, maps and sequences by name and type tag.
type DataAddress struct {
	Kind    DataKind
	Name    XorName
	Tag     uint64
	Private bool
}

func BlobAddress(content []byte, private bool) DataAddress {
	return DataAddress{Kind: BlobData, Name: XorNameFromContent(content), Private: private}
}

func (a DataAddress) String() string {
	scope := "Public"
	if a.Private {
		scope = "Private"
	}
	return fmt.Sprintf("%s%s(%s, %d)", scope, a.Kind, a.Name.Short(), a.Tag)
}

// Blob is immutable content.
type Blob struct {
	Address DataAddress
	Value   []byte
	Owner   PublicKey // private blobs only
}

func NewBlob(value []byte, owner *PublicKey) Blob {
	b := Blob{Value: value}
	if owner != nil {
		b.Owner = *owner
	}
	b.Address = BlobAddress(value, owner != nil)
	return b
}

func (b Blob) Equal(o Blob) bool {
	return b.Address == o.Address && b.Owner == o.Owner && bytes.Equal(b.Value, o.Value)
}

// MapPermissionSet is a bit set of map actions.
type MapPermissionSet uint8

const (
	MapRead MapPermissionSet = 1 << iota
	MapInsert
	MapUpdate
	MapDelete
	MapManagePermissions
)

func (p MapPermissionSet) Allows(action MapPermissionSet) bool {
	return p&action == action
}

type MapValue struct {
	Data    []byte
	Version uint64
}

type MapEntry struct {
	Key   []byte
	Value MapValue
}

type MapEntries []MapEntry
type MapKeys [][]byte
type MapValues []MapValue

type UserPermissions struct {
	User        PublicKey
	Permissions MapPermissionSet
}

type MapPermissions []UserPermissions

type Map struct {
	Address     DataAddress
	Owner       PublicKey
	Version     uint64
	Entries     MapEntries
	Permissions MapPermissions
}

// Shell returns the map without its entries.
func (m Map) Shell() Map {
	m.Entries = nil
	return m
}

type MapAction uint8

const (
	MapActionInsert MapAction = iota + 1
	MapActionUpdate
	MapActionDelete
)

type MapEntryAction struct {
	Action  MapAction
	Key     []byte
	Value   []byte
	Version uint64
}

type SequenceEntry []byte
type SequenceEntries []SequenceEntry

type SequenceRange struct {
	Start uint64
	End   uint64
}

type IndexedEntry struct {
	Index uint64
	Entry SequenceEntry
}

// Owner is a sequence owner and the indices it was set at.
type Owner struct {
	Key              PublicKey
	EntriesIndex     uint64
	PermissionsIndex uint64
}

type SequenceUserPermissions struct {
	User   PublicKey // zero key applies to anyone
	Read   bool
	Append bool
	Admin  bool
}

type SequencePermissions struct {
	Users        []SequenceUserPermissions
	EntriesIndex uint64
}

type Sequence struct {
	Address     DataAddress
	Owner       PublicKey
	Entries     SequenceEntries
	Permissions SequencePermissions
}

// TransferID is unique per actor: the actor's key and its debit counter.
type TransferID struct {
	Actor   PublicKey
	Counter uint64
}

type Transfer struct {
	ID     TransferID
	To     PublicKey
	Amount Money
}

type SignedTransfer struct {
	Transfer       Transfer
	ActorSignature Signature
}

// DebitAgreementProof is the replicas' aggregated agreement to a debit.
// How that agreement is reached is outside this package.
type DebitAgreementProof struct {
	SignedTransfer   SignedTransfer
	DebitingReplicas Signature
	ReplicaKey       PublicKey
}

type TransferValidated struct {
	SignedTransfer   SignedTransfer
	ReplicaSignature Signature
	Replicas         PublicKey
}

type ReplicaEventKind uint8

const (
	TransferValidationProposed ReplicaEventKind = iota + 1
	TransferRegistered
	TransferPropagatedEvent
)

type ReplicaEvent struct {
	Kind  ReplicaEventKind
	Proof DebitAgreementProof
}

type History []ReplicaEvent

type ReplicaPublicKeySet struct {
	Keys      []PublicKey
	Threshold uint32
}

type AppPermissions struct {
	DataMutations       bool
	ReadBalance         bool
	ReadTransferHistory bool
	TransferMoney       bool
}

type AccountData struct {
	Data      []byte
	Signature Signature
}

type AppKey struct {
	Key         PublicKey
	Permissions AppPermissions
}

type AuthKeysList struct {
	Keys    []AppKey
	Version uint64
}
