package messaging

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed      = errors.New("malformed message")
	ErrUnknownVariant = errors.New("unknown variant")
	ErrClientDuty     = errors.New("client sender carries a duty")
	ErrMissingDuty    = errors.New("node or section sender has no duty")
)

// ErrorKind tags a data network failure.
type ErrorKind uint16

const (
	AccessDenied ErrorKind = iota + 1
	NoSuchData
	NoSuchEntry
	NoSuchKey
	DataExists
	EntryExists
	InvalidOperation
	InvalidSignature
	InvalidSuccessor
	InvalidOwners
	InvalidPermissions
	ExceededSize
	InsufficientBalance
	NoSuchBalance
	BalanceExists
	InvalidOperationForClient
	NetworkOther
)

var errorKindNames = map[ErrorKind]string{
	AccessDenied:              "AccessDenied",
	NoSuchData:                "NoSuchData",
	NoSuchEntry:               "NoSuchEntry",
	NoSuchKey:                 "NoSuchKey",
	DataExists:                "DataExists",
	EntryExists:               "EntryExists",
	InvalidOperation:          "InvalidOperation",
	InvalidSignature:          "InvalidSignature",
	InvalidSuccessor:          "InvalidSuccessor",
	InvalidOwners:             "InvalidOwners",
	InvalidPermissions:        "InvalidPermissions",
	ExceededSize:              "ExceededSize",
	InsufficientBalance:       "InsufficientBalance",
	NoSuchBalance:             "NoSuchBalance",
	BalanceExists:             "BalanceExists",
	InvalidOperationForClient: "InvalidOperationForClient",
	NetworkOther:              "NetworkOther",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", uint16(k))
}

// Error is a data network failure as carried inside responses and cmd
// errors. Two errors match under errors.Is when their kinds are equal.
type Error struct {
	Kind   ErrorKind
	Detail string
}

// NewError returns an error of the given kind with an optional detail.
func NewError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) equal(o *Error) bool {
	if e == nil || o == nil {
		return e == o
	}
	return *e == *o
}

// TransferPhase is the transfer protocol step that failed.
type TransferPhase uint8

const (
	TransferValidation TransferPhase = iota + 1
	TransferRegistration
	TransferPropagation
)

func (p TransferPhase) String() string {
	switch p {
	case TransferValidation:
		return "TransferValidation"
	case TransferRegistration:
		return "TransferRegistration"
	case TransferPropagation:
		return "TransferPropagation"
	default:
		return fmt.Sprintf("TransferPhase(%d)", uint8(p))
	}
}

// TransferError records which transfer step rejected a cmd. A client
// retrying after a propagation failure must assume the debit may already be
// registered; after a validation failure nothing was committed.
type TransferError struct {
	Phase TransferPhase
	Err   *Error
}

func (e TransferError) Error() string {
	return fmt.Sprintf("%s(%v)", e.Phase, e.Err)
}

func (e TransferError) Unwrap() error { return unwrapError(e.Err) }

// CmdError is why a Cmd failed: authorisation, the data operation itself,
// or one phase of a transfer.
type CmdError interface {
	error
	Cause() *Error
	isCmdError()
}

type AuthCmdError struct{ Err *Error }
type DataCmdError struct{ Err *Error }
type TransferCmdError struct{ Err TransferError }

func (AuthCmdError) isCmdError()     {}
func (DataCmdError) isCmdError()     {}
func (TransferCmdError) isCmdError() {}

func (e AuthCmdError) Cause() *Error     { return e.Err }
func (e DataCmdError) Cause() *Error     { return e.Err }
func (e TransferCmdError) Cause() *Error { return e.Err.Err }

func (e AuthCmdError) Error() string     { return fmt.Sprintf("Auth(%v)", e.Err) }
func (e DataCmdError) Error() string     { return fmt.Sprintf("Data(%v)", e.Err) }
func (e TransferCmdError) Error() string { return fmt.Sprintf("Transfer(%v)", e.Err) }

func (e AuthCmdError) Unwrap() error     { return unwrapError(e.Err) }
func (e DataCmdError) Unwrap() error     { return unwrapError(e.Err) }
func (e TransferCmdError) Unwrap() error { return e.Err }

func unwrapError(e *Error) error {
	if e == nil {
		return nil
	}
	return e
}

// TryFromKind discriminates extraction failures.
type TryFromKind uint8

const (
	// WrongType means the response variant cannot produce the requested payload.
	WrongType TryFromKind = iota + 1
	// ResponseError means the variant matched but carried a failure.
	ResponseError
)

// TryFromError is returned when a QueryResponse cannot be narrowed to a
// payload.
type TryFromError struct {
	Kind TryFromKind
	Got  ResponseKind // variant that was present
	Err  *Error       // set for ResponseError
}

func (e *TryFromError) Error() string {
	if e.Kind == ResponseError {
		return fmt.Sprintf("response %s carried an error: %v", e.Got, e.Err)
	}
	return fmt.Sprintf("wrong response type: %s", e.Got)
}

func (e *TryFromError) Unwrap() error { return unwrapError(e.Err) }
