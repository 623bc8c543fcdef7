package messaging

import "fmt"

// Cmd is a request to change network state. Its destination is the section
// responsible for DstAddress.
type Cmd interface {
	DstAddress() XorName
	Authorisation() AuthorisationKind
	isCmd()
}

type AuthCmdOp uint8

const (
	InsAuthKey AuthCmdOp = iota + 1
	DelAuthKey
)

// AuthCmd manages the app keys allowed to act for a client.
type AuthCmd struct {
	Op          AuthCmdOp
	Client      PublicKey
	Key         PublicKey
	Version     uint64
	Permissions AppPermissions
}

func (c AuthCmd) DstAddress() XorName              { return c.Client.XorName() }
func (c AuthCmd) Authorisation() AuthorisationKind { return MiscAuth(ManageAppKeys) }

// DataWrite is one mutation of blob, map or sequence data.
type DataWrite interface {
	DstAddress() XorName
	isDataWrite()
}

type BlobWriteOp uint8

const (
	BlobNew BlobWriteOp = iota + 1
	BlobDeletePrivate
)

type BlobWrite struct {
	Op      BlobWriteOp
	Blob    Blob        // BlobNew
	Address DataAddress // BlobDeletePrivate
}

func (w BlobWrite) DstAddress() XorName {
	if w.Op == BlobNew {
		return w.Blob.Address.Name
	}
	return w.Address.Name
}

type MapWriteOp uint8

const (
	MapNew MapWriteOp = iota + 1
	MapDeleteMap
	MapEdit
	MapSetUserPermissions
	MapDelUserPermissions
)

type MapWrite struct {
	Op          MapWriteOp
	Address     DataAddress
	Map         Map // MapNew
	Actions     []MapEntryAction
	User        PublicKey
	Permissions MapPermissionSet
	Version     uint64
}

func (w MapWrite) DstAddress() XorName {
	if w.Op == MapNew {
		return w.Map.Address.Name
	}
	return w.Address.Name
}

type SequenceWriteOp uint8

const (
	SequenceNew SequenceWriteOp = iota + 1
	SequenceAppend
	SequenceDelete
	SequenceSetPermissions
)

type SequenceWrite struct {
	Op          SequenceWriteOp
	Address     DataAddress
	Sequence    Sequence // SequenceNew
	Entry       SequenceEntry
	Permissions SequencePermissions
}

func (w SequenceWrite) DstAddress() XorName {
	if w.Op == SequenceNew {
		return w.Sequence.Address.Name
	}
	return w.Address.Name
}

func (BlobWrite) isDataWrite()     {}
func (MapWrite) isDataWrite()      {}
func (SequenceWrite) isDataWrite() {}

// DataCmd writes data, paid for by Payment.
type DataCmd struct {
	Write   DataWrite
	Payment DebitAgreementProof
}

func (c DataCmd) DstAddress() XorName              { return c.Write.DstAddress() }
func (c DataCmd) Authorisation() AuthorisationKind { return MiscAuth(WriteAndTransfer) }

type TransferCmdOp uint8

const (
	ValidateTransfer TransferCmdOp = iota + 1
	RegisterValidatedTransfer
)

type TransferCmd struct {
	Op     TransferCmdOp
	Signed SignedTransfer      // ValidateTransfer
	Proof  DebitAgreementProof // RegisterValidatedTransfer
}

// DstAddress is the section holding the debiting actor's replicas.
func (c TransferCmd) DstAddress() XorName {
	if c.Op == RegisterValidatedTransfer {
		return c.Proof.SignedTransfer.Transfer.ID.Actor.XorName()
	}
	return c.Signed.Transfer.ID.Actor.XorName()
}

func (c TransferCmd) Authorisation() AuthorisationKind { return MoneyAuth(TransferMoney) }

func (AuthCmd) isCmd()     {}
func (DataCmd) isCmd()     {}
func (TransferCmd) isCmd() {}

// Query reads network state. Its destination is the section responsible
// for DstAddress, and ResponseKind names the QueryResponse variant that
// answers it.
type Query interface {
	DstAddress() XorName
	Authorisation() AuthorisationKind
	ResponseKind() ResponseKind
	isQuery()
}

// AuthQuery lists the app keys of a client.
type AuthQuery struct {
	Client PublicKey
}

func (q AuthQuery) DstAddress() XorName              { return q.Client.XorName() }
func (q AuthQuery) Authorisation() AuthorisationKind { return MiscAuth(ManageAppKeys) }
func (q AuthQuery) ResponseKind() ResponseKind       { return KindListAuthKeysAndVersion }

// DataQuery reads blob, map or sequence data. Op is the response variant
// expected, which also selects the read.
type DataQuery struct {
	Op      ResponseKind
	Address DataAddress
	Key     []byte        // GetMapValue
	User    PublicKey     // user permission reads
	Range   SequenceRange // GetSequenceRange
}

func (q DataQuery) DstAddress() XorName        { return q.Address.Name }
func (q DataQuery) ResponseKind() ResponseKind { return q.Op }

func (q DataQuery) Authorisation() AuthorisationKind {
	if q.Address.Private {
		return DataAuth(PrivateRead)
	}
	return DataAuth(PublicRead)
}

// TransferQuery reads balances, history and replica keys.
type TransferQuery struct {
	Op           ResponseKind
	At           PublicKey
	SinceVersion uint64 // GetHistory
	Bytes        uint64 // GetStoreCost
}

func (q TransferQuery) DstAddress() XorName        { return q.At.XorName() }
func (q TransferQuery) ResponseKind() ResponseKind { return q.Op }

func (q TransferQuery) Authorisation() AuthorisationKind {
	switch q.Op {
	case KindGetHistory:
		return MoneyAuth(ReadHistory)
	case KindGetStoreCost:
		return NoAuth
	default:
		return MoneyAuth(ReadBalance)
	}
}

func (AuthQuery) isQuery()     {}
func (DataQuery) isQuery()     {}
func (TransferQuery) isQuery() {}

var (
	dataQueryKinds = kindSet(KindGetBlob, KindGetMap, KindGetMapShell, KindGetMapVersion,
		KindListMapEntries, KindListMapKeys, KindListMapValues, KindListMapPermissions,
		KindListMapUserPermissions, KindGetMapValue, KindGetSequence, KindGetSequenceOwner,
		KindGetSequenceRange, KindGetSequenceLastEntry, KindGetSequencePermissions,
		KindGetSequenceUserPermissions)
	transferQueryKinds = kindSet(KindGetReplicaKeys, KindGetBalance, KindGetHistory, KindGetStoreCost)
)

func kindSet(kinds ...ResponseKind) map[ResponseKind]bool {
	set := make(map[ResponseKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

func validateQuery(q Query) error {
	switch q := q.(type) {
	case DataQuery:
		if !dataQueryKinds[q.Op] {
			return fmt.Errorf("%w: data query op %s", ErrUnknownVariant, q.Op)
		}
	case TransferQuery:
		if !transferQueryKinds[q.Op] {
			return fmt.Errorf("%w: transfer query op %s", ErrUnknownVariant, q.Op)
		}
	}
	return nil
}
