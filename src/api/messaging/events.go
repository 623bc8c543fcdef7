package messaging

import "fmt"

// Event notifies a client of something that happened on its behalf.
type Event interface {
	DstAddress() XorName
	isEvent()
}

// TransferValidatedEvent carries one replica's validation of a transfer.
//
// Client is the transfer's sender, which is not necessarily the client that
// made the request; a validation requested on behalf of another actor is
// routed to that actor.
type TransferValidatedEvent struct {
	Client XorName
	Event  TransferValidated
}

// TransferAgreementReachedEvent carries the aggregated debit proof. Same
// routing caveat as TransferValidatedEvent.
type TransferAgreementReachedEvent struct {
	Client XorName
	Proof  DebitAgreementProof
}

func (e TransferValidatedEvent) DstAddress() XorName        { return e.Client }
func (e TransferAgreementReachedEvent) DstAddress() XorName { return e.Client }

func (TransferValidatedEvent) isEvent()        {}
func (TransferAgreementReachedEvent) isEvent() {}

// NetworkCmd is sent between nodes and sections. Unlike client cmds it may
// target a single node.
type NetworkCmd interface {
	DstAddress() Address
	isNetworkCmd()
}

// ReplicateChunk asks Holder to fetch a copy of a chunk from Section.
type ReplicateChunk struct {
	Holder  XorName
	Address DataAddress
	Section XorName
}

// PropagateTransfer informs the credited actor's section of a debit.
type PropagateTransfer struct {
	Proof DebitAgreementProof
}

// PayoutReward credits a node's reward wallet.
type PayoutReward struct {
	Reward Money
	NodeID XorName
	Wallet PublicKey
}

func (c ReplicateChunk) DstAddress() Address { return NodeAddress(c.Holder) }

func (c PropagateTransfer) DstAddress() Address {
	return SectionAddress(c.Proof.SignedTransfer.Transfer.To.XorName())
}

func (c PayoutReward) DstAddress() Address { return SectionAddress(c.Wallet.XorName()) }

func (ReplicateChunk) isNetworkCmd()    {}
func (PropagateTransfer) isNetworkCmd() {}
func (PayoutReward) isNetworkCmd()      {}

// NetworkEvent reports completion of network work back to a section.
type NetworkEvent interface {
	DstAddress() Address
	isNetworkEvent()
}

// DuplicationComplete is sent by the new holder of a chunk.
type DuplicationComplete struct {
	Chunk  DataAddress
	Holder XorName
}

// TransferPropagated acknowledges a credit to the debiting section.
type TransferPropagated struct {
	Proof     DebitAgreementProof
	Crediting PublicKey
}

func (e DuplicationComplete) DstAddress() Address { return SectionAddress(e.Chunk.Name) }

func (e TransferPropagated) DstAddress() Address {
	return SectionAddress(e.Proof.SignedTransfer.Transfer.ID.Actor.XorName())
}

func (DuplicationComplete) isNetworkEvent() {}
func (TransferPropagated) isNetworkEvent()  {}

// NetworkCmdError is the failure of a NetworkCmd.
type NetworkCmdError interface {
	error
	Cause() *Error
	isNetworkCmdError()
}

type NetworkDataError struct {
	Chunk DataAddress
	Err   *Error
}

type NetworkTransferError struct {
	ID  TransferID
	Err *Error
}

func (e NetworkDataError) Error() string {
	return fmt.Sprintf("ChunkDuplication(%s, %v)", e.Chunk, e.Err)
}

func (e NetworkTransferError) Error() string {
	return fmt.Sprintf("TransferPropagation(%s/%d, %v)", e.ID.Actor.XorName().Short(), e.ID.Counter, e.Err)
}

func (e NetworkDataError) Cause() *Error     { return e.Err }
func (e NetworkTransferError) Cause() *Error { return e.Err }

func (e NetworkDataError) Unwrap() error     { return unwrapError(e.Err) }
func (e NetworkTransferError) Unwrap() error { return unwrapError(e.Err) }

func (NetworkDataError) isNetworkCmdError()     {}
func (NetworkTransferError) isNetworkCmdError() {}
