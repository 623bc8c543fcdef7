package messaging

// narrow converts resp into its payload when resp is one of the variants
// listed in kinds. Each exported As* function binds a payload type to the
// exact variants that can produce it.
func narrow[T any](resp QueryResponse, kinds ...ResponseKind) (T, error) {
	var zero T
	if resp == nil {
		return zero, &TryFromError{Kind: WrongType}
	}
	r, ok := resp.(*Response[T])
	if !ok || !containsKind(kinds, r.kind) {
		return zero, &TryFromError{Kind: WrongType, Got: resp.Kind()}
	}
	if r.Result.Err != nil {
		return zero, &TryFromError{Kind: ResponseError, Got: r.kind, Err: r.Result.Err}
	}
	return r.Result.Value, nil
}

func containsKind(kinds []ResponseKind, k ResponseKind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}

func AsBlob(resp QueryResponse) (Blob, error) {
	return narrow[Blob](resp, KindGetBlob)
}

// AsMap accepts both full maps and map shells.
func AsMap(resp QueryResponse) (Map, error) {
	return narrow[Map](resp, KindGetMap, KindGetMapShell)
}

func AsMapVersion(resp QueryResponse) (uint64, error) {
	return narrow[uint64](resp, KindGetMapVersion)
}

func AsMapEntries(resp QueryResponse) (MapEntries, error) {
	return narrow[MapEntries](resp, KindListMapEntries)
}

func AsMapKeys(resp QueryResponse) (MapKeys, error) {
	return narrow[MapKeys](resp, KindListMapKeys)
}

func AsMapValues(resp QueryResponse) (MapValues, error) {
	return narrow[MapValues](resp, KindListMapValues)
}

func AsMapPermissions(resp QueryResponse) (MapPermissions, error) {
	return narrow[MapPermissions](resp, KindListMapPermissions)
}

func AsMapPermissionSet(resp QueryResponse) (MapPermissionSet, error) {
	return narrow[MapPermissionSet](resp, KindListMapUserPermissions)
}

func AsMapValue(resp QueryResponse) (MapValue, error) {
	return narrow[MapValue](resp, KindGetMapValue)
}

func AsSequence(resp QueryResponse) (Sequence, error) {
	return narrow[Sequence](resp, KindGetSequence)
}

func AsOwner(resp QueryResponse) (Owner, error) {
	return narrow[Owner](resp, KindGetSequenceOwner)
}

func AsSequenceEntries(resp QueryResponse) (SequenceEntries, error) {
	return narrow[SequenceEntries](resp, KindGetSequenceRange)
}

func AsIndexedEntry(resp QueryResponse) (IndexedEntry, error) {
	return narrow[IndexedEntry](resp, KindGetSequenceLastEntry)
}

func AsSequencePermissions(resp QueryResponse) (SequencePermissions, error) {
	return narrow[SequencePermissions](resp, KindGetSequencePermissions)
}

func AsSequenceUserPermissions(resp QueryResponse) (SequenceUserPermissions, error) {
	return narrow[SequenceUserPermissions](resp, KindGetSequenceUserPermissions)
}

// AsMoney extracts a balance.
func AsMoney(resp QueryResponse) (Money, error) {
	return narrow[Money](resp, KindGetBalance)
}

func AsStoreCost(resp QueryResponse) (Money, error) {
	return narrow[Money](resp, KindGetStoreCost)
}

func AsHistory(resp QueryResponse) (History, error) {
	return narrow[History](resp, KindGetHistory)
}

func AsReplicaKeys(resp QueryResponse) (ReplicaPublicKeySet, error) {
	return narrow[ReplicaPublicKeySet](resp, KindGetReplicaKeys)
}

func AsAccount(resp QueryResponse) (AccountData, error) {
	return narrow[AccountData](resp, KindGetAccount)
}

func AsAuthKeys(resp QueryResponse) (AuthKeysList, error) {
	return narrow[AuthKeysList](resp, KindListAuthKeysAndVersion)
}
