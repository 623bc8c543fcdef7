package messaging

import "fmt"

// ResponseKind names a QueryResponse variant, one per readable resource.
type ResponseKind uint8

const (
	KindGetBlob ResponseKind = iota + 1
	KindGetMap
	KindGetMapShell
	KindGetMapVersion
	KindListMapEntries
	KindListMapKeys
	KindListMapValues
	KindListMapPermissions
	KindListMapUserPermissions
	KindGetMapValue
	KindGetSequence
	KindGetSequenceOwner
	KindGetSequenceRange
	KindGetSequenceLastEntry
	KindGetSequencePermissions
	KindGetSequenceUserPermissions
	KindGetBalance
	KindGetHistory
	KindGetReplicaKeys
	KindGetStoreCost
	KindGetAccount
	KindListAuthKeysAndVersion

	lastResponseKind = KindListAuthKeysAndVersion
)

var responseKindNames = [...]string{
	KindGetBlob:                    "GetBlob",
	KindGetMap:                     "GetMap",
	KindGetMapShell:                "GetMapShell",
	KindGetMapVersion:              "GetMapVersion",
	KindListMapEntries:             "ListMapEntries",
	KindListMapKeys:                "ListMapKeys",
	KindListMapValues:              "ListMapValues",
	KindListMapPermissions:         "ListMapPermissions",
	KindListMapUserPermissions:     "ListMapUserPermissions",
	KindGetMapValue:                "GetMapValue",
	KindGetSequence:                "GetSequence",
	KindGetSequenceOwner:           "GetSequenceOwner",
	KindGetSequenceRange:           "GetSequenceRange",
	KindGetSequenceLastEntry:       "GetSequenceLastEntry",
	KindGetSequencePermissions:     "GetSequencePermissions",
	KindGetSequenceUserPermissions: "GetSequenceUserPermissions",
	KindGetBalance:                 "GetBalance",
	KindGetHistory:                 "GetHistory",
	KindGetReplicaKeys:             "GetReplicaKeys",
	KindGetStoreCost:               "GetStoreCost",
	KindGetAccount:                 "GetAccount",
	KindListAuthKeysAndVersion:     "ListAuthKeysAndVersion",
}

func (k ResponseKind) String() string {
	if k == 0 || k > lastResponseKind {
		return fmt.Sprintf("ResponseKind(%d)", uint8(k))
	}
	return responseKindNames[k]
}

// Result holds either a value or a failure. A nil Err means success.
type Result[T any] struct {
	Value T
	Err   *Error
}

func Success[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Failure[T any](err *Error) Result[T] {
	return Result[T]{Err: err}
}

func (r Result[T]) Ok() bool { return r.Err == nil }

// QueryResponse is the terminal answer to a Query. Exactly one variant is
// populated; success and failure share the variant.
type QueryResponse interface {
	Kind() ResponseKind
	// Failure returns the wrapped error, or nil on success.
	Failure() *Error
	fmt.Stringer
	isQueryResponse()
}

// Response is the QueryResponse variant for payload type T. Build it with
// the constructor named after the variant, e.g. GetBalance.
type Response[T any] struct {
	kind   ResponseKind
	Result Result[T]
}

func (r *Response[T]) Kind() ResponseKind { return r.kind }
func (r *Response[T]) Failure() *Error    { return r.Result.Err }
func (*Response[T]) isQueryResponse()     {}

// String renders the variant and either the error or a placeholder for the
// payload, e.g. "QueryResponse::GetBalance(AccessDenied)". Payloads can be
// large and are never printed.
func (r *Response[T]) String() string {
	if r.Result.Err != nil {
		return fmt.Sprintf("QueryResponse::%s(%v)", r.kind, r.Result.Err)
	}
	return fmt.Sprintf("QueryResponse::%s(Success)", r.kind)
}

func newResponse[T any](kind ResponseKind, r Result[T]) QueryResponse {
	return &Response[T]{kind: kind, Result: r}
}

func GetBlob(r Result[Blob]) QueryResponse              { return newResponse(KindGetBlob, r) }
func GetMap(r Result[Map]) QueryResponse                { return newResponse(KindGetMap, r) }
func GetMapShell(r Result[Map]) QueryResponse           { return newResponse(KindGetMapShell, r) }
func GetMapVersion(r Result[uint64]) QueryResponse      { return newResponse(KindGetMapVersion, r) }
func ListMapEntries(r Result[MapEntries]) QueryResponse { return newResponse(KindListMapEntries, r) }
func ListMapKeys(r Result[MapKeys]) QueryResponse       { return newResponse(KindListMapKeys, r) }
func ListMapValues(r Result[MapValues]) QueryResponse   { return newResponse(KindListMapValues, r) }
func GetMapValue(r Result[MapValue]) QueryResponse      { return newResponse(KindGetMapValue, r) }
func GetSequence(r Result[Sequence]) QueryResponse      { return newResponse(KindGetSequence, r) }
func GetSequenceOwner(r Result[Owner]) QueryResponse    { return newResponse(KindGetSequenceOwner, r) }
func GetBalance(r Result[Money]) QueryResponse          { return newResponse(KindGetBalance, r) }
func GetHistory(r Result[History]) QueryResponse        { return newResponse(KindGetHistory, r) }
func GetStoreCost(r Result[Money]) QueryResponse        { return newResponse(KindGetStoreCost, r) }
func GetAccount(r Result[AccountData]) QueryResponse    { return newResponse(KindGetAccount, r) }

func ListMapPermissions(r Result[MapPermissions]) QueryResponse {
	return newResponse(KindListMapPermissions, r)
}

func ListMapUserPermissions(r Result[MapPermissionSet]) QueryResponse {
	return newResponse(KindListMapUserPermissions, r)
}

func GetSequenceRange(r Result[SequenceEntries]) QueryResponse {
	return newResponse(KindGetSequenceRange, r)
}

func GetSequenceLastEntry(r Result[IndexedEntry]) QueryResponse {
	return newResponse(KindGetSequenceLastEntry, r)
}

func GetSequencePermissions(r Result[SequencePermissions]) QueryResponse {
	return newResponse(KindGetSequencePermissions, r)
}

func GetSequenceUserPermissions(r Result[SequenceUserPermissions]) QueryResponse {
	return newResponse(KindGetSequenceUserPermissions, r)
}

func GetReplicaKeys(r Result[ReplicaPublicKeySet]) QueryResponse {
	return newResponse(KindGetReplicaKeys, r)
}

func ListAuthKeysAndVersion(r Result[AuthKeysList]) QueryResponse {
	return newResponse(KindListAuthKeysAndVersion, r)
}

// ErrorResponse builds the failure of the given variant, used by a node
// rejecting a query before it knows anything but the expected kind.
func ErrorResponse(kind ResponseKind, err *Error) (QueryResponse, error) {
	c, ok := responseCodecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: response kind %d", ErrUnknownVariant, kind)
	}
	if err == nil {
		return nil, fmt.Errorf("%w: error response without error", ErrMalformed)
	}
	return c.failure(kind, err), nil
}
