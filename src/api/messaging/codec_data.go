package messaging

// Field layouts for the plain data types carried inside messages.

func encAddress(e *encoder, a Address) {
	e.uvarint(1, uint64(a.Kind))
	e.array(2, a.Name[:])
}

func decAddress(b []byte) (a Address, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setUint(f, &a.Kind)
		case 2:
			return setArray(f, a.Name[:])
		}
		return nil
	})
	if err == nil {
		err = a.validate()
	}
	return a, err
}

func encSender(e *encoder, s MsgSender) {
	e.uvarint(1, uint64(s.kind))
	e.array(2, s.id[:])
	if !s.duty.IsZero() {
		e.message(3, func(e *encoder) {
			e.uvarint(1, uint64(s.duty.adult))
			e.uvarint(2, uint64(s.duty.elder))
		})
	}
	e.array(4, s.signature[:])
}

func decSender(b []byte) (s MsgSender, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setUint(f, &s.kind)
		case 2:
			return setArray(f, s.id[:])
		case 3:
			return setMessage(f, decDuty, &s.duty)
		case 4:
			return setArray(f, s.signature[:])
		}
		return nil
	})
	if err == nil {
		err = s.Validate()
	}
	return s, err
}

func decDuty(b []byte) (d Duty, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setUint(f, &d.adult)
		case 2:
			return setUint(f, &d.elder)
		}
		return nil
	})
	return d, err
}

func encError(e *encoder, v *Error) {
	e.uvarint(1, uint64(v.Kind))
	e.str(2, v.Detail)
}

func decError(b []byte) (*Error, error) {
	v := &Error{}
	err := eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setUint(f, &v.Kind)
		case 2:
			return setString(f, &v.Detail)
		}
		return nil
	})
	return v, err
}

func encDataAddress(e *encoder, a DataAddress) {
	e.uvarint(1, uint64(a.Kind))
	e.array(2, a.Name[:])
	e.uvarint(3, a.Tag)
	e.boolean(4, a.Private)
}

func decDataAddress(b []byte) (a DataAddress, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setUint(f, &a.Kind)
		case 2:
			return setArray(f, a.Name[:])
		case 3:
			return setUint(f, &a.Tag)
		case 4:
			return setBool(f, &a.Private)
		}
		return nil
	})
	return a, err
}

func encBlob(e *encoder, v Blob) {
	e.message(1, func(e *encoder) { encDataAddress(e, v.Address) })
	e.bytes(2, v.Value)
	e.array(3, v.Owner[:])
}

func decBlob(b []byte) (v Blob, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setMessage(f, decDataAddress, &v.Address)
		case 2:
			return setBytes(f, &v.Value)
		case 3:
			return setArray(f, v.Owner[:])
		}
		return nil
	})
	return v, err
}

func encMapValue(e *encoder, v MapValue) {
	e.bytes(1, v.Data)
	e.uvarint(2, v.Version)
}

func decMapValue(b []byte) (v MapValue, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setBytes(f, &v.Data)
		case 2:
			return setUint(f, &v.Version)
		}
		return nil
	})
	return v, err
}

func encMapEntries(e *encoder, entries MapEntries) {
	for _, entry := range entries {
		e.message(1, func(e *encoder) {
			e.bytes(1, entry.Key)
			e.message(2, func(e *encoder) { encMapValue(e, entry.Value) })
		})
	}
}

func decMapEntry(b []byte) (v MapEntry, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setBytes(f, &v.Key)
		case 2:
			return setMessage(f, decMapValue, &v.Value)
		}
		return nil
	})
	return v, err
}

func decMapEntries(b []byte) (v MapEntries, err error) {
	err = eachField(b, func(f field) error {
		if f.num == 1 {
			return appendMessage(f, decMapEntry, (*[]MapEntry)(&v))
		}
		return nil
	})
	return v, err
}

func encMapKeys(e *encoder, keys MapKeys) {
	for _, k := range keys {
		e.raw(1, k)
	}
}

func decMapKeys(b []byte) (v MapKeys, err error) {
	err = eachField(b, func(f field) error {
		if f.num == 1 {
			var k []byte
			if err := setBytes(f, &k); err != nil {
				return err
			}
			v = append(v, k)
		}
		return nil
	})
	return v, err
}

func encMapValues(e *encoder, values MapValues) {
	for _, value := range values {
		e.message(1, func(e *encoder) { encMapValue(e, value) })
	}
}

func decMapValues(b []byte) (v MapValues, err error) {
	err = eachField(b, func(f field) error {
		if f.num == 1 {
			return appendMessage(f, decMapValue, (*[]MapValue)(&v))
		}
		return nil
	})
	return v, err
}

func encMapPermissions(e *encoder, perms MapPermissions) {
	for _, p := range perms {
		e.message(1, func(e *encoder) {
			e.array(1, p.User[:])
			e.uvarint(2, uint64(p.Permissions))
		})
	}
}

func decUserPermissions(b []byte) (v UserPermissions, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setArray(f, v.User[:])
		case 2:
			return setUint(f, &v.Permissions)
		}
		return nil
	})
	return v, err
}

func decMapPermissions(b []byte) (v MapPermissions, err error) {
	err = eachField(b, func(f field) error {
		if f.num == 1 {
			return appendMessage(f, decUserPermissions, (*[]UserPermissions)(&v))
		}
		return nil
	})
	return v, err
}

func encMap(e *encoder, m Map) {
	e.message(1, func(e *encoder) { encDataAddress(e, m.Address) })
	e.array(2, m.Owner[:])
	e.uvarint(3, m.Version)
	if len(m.Entries) > 0 {
		e.message(4, func(e *encoder) { encMapEntries(e, m.Entries) })
	}
	if len(m.Permissions) > 0 {
		e.message(5, func(e *encoder) { encMapPermissions(e, m.Permissions) })
	}
}

func decMap(b []byte) (m Map, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setMessage(f, decDataAddress, &m.Address)
		case 2:
			return setArray(f, m.Owner[:])
		case 3:
			return setUint(f, &m.Version)
		case 4:
			return setMessage(f, decMapEntries, &m.Entries)
		case 5:
			return setMessage(f, decMapPermissions, &m.Permissions)
		}
		return nil
	})
	return m, err
}

func encMapEntryAction(e *encoder, a MapEntryAction) {
	e.uvarint(1, uint64(a.Action))
	e.bytes(2, a.Key)
	e.bytes(3, a.Value)
	e.uvarint(4, a.Version)
}

func decMapEntryAction(b []byte) (a MapEntryAction, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setUint(f, &a.Action)
		case 2:
			return setBytes(f, &a.Key)
		case 3:
			return setBytes(f, &a.Value)
		case 4:
			return setUint(f, &a.Version)
		}
		return nil
	})
	return a, err
}

func encSequenceEntries(e *encoder, entries SequenceEntries) {
	for _, entry := range entries {
		e.raw(1, entry)
	}
}

func decSequenceEntries(b []byte) (v SequenceEntries, err error) {
	err = eachField(b, func(f field) error {
		if f.num == 1 {
			var entry SequenceEntry
			if err := setBytes(f, &entry); err != nil {
				return err
			}
			v = append(v, entry)
		}
		return nil
	})
	return v, err
}

func encIndexedEntry(e *encoder, v IndexedEntry) {
	e.uvarint(1, v.Index)
	e.bytes(2, v.Entry)
}

func decIndexedEntry(b []byte) (v IndexedEntry, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setUint(f, &v.Index)
		case 2:
			return setBytes(f, &v.Entry)
		}
		return nil
	})
	return v, err
}

func encOwner(e *encoder, v Owner) {
	e.array(1, v.Key[:])
	e.uvarint(2, v.EntriesIndex)
	e.uvarint(3, v.PermissionsIndex)
}

func decOwner(b []byte) (v Owner, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setArray(f, v.Key[:])
		case 2:
			return setUint(f, &v.EntriesIndex)
		case 3:
			return setUint(f, &v.PermissionsIndex)
		}
		return nil
	})
	return v, err
}

func encSequenceUserPermissions(e *encoder, v SequenceUserPermissions) {
	e.array(1, v.User[:])
	e.boolean(2, v.Read)
	e.boolean(3, v.Append)
	e.boolean(4, v.Admin)
}

func decSequenceUserPermissions(b []byte) (v SequenceUserPermissions, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setArray(f, v.User[:])
		case 2:
			return setBool(f, &v.Read)
		case 3:
			return setBool(f, &v.Append)
		case 4:
			return setBool(f, &v.Admin)
		}
		return nil
	})
	return v, err
}

func encSequencePermissions(e *encoder, v SequencePermissions) {
	for _, u := range v.Users {
		e.message(1, func(e *encoder) { encSequenceUserPermissions(e, u) })
	}
	e.uvarint(2, v.EntriesIndex)
}

func decSequencePermissions(b []byte) (v SequencePermissions, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return appendMessage(f, decSequenceUserPermissions, &v.Users)
		case 2:
			return setUint(f, &v.EntriesIndex)
		}
		return nil
	})
	return v, err
}

func encSequence(e *encoder, s Sequence) {
	e.message(1, func(e *encoder) { encDataAddress(e, s.Address) })
	e.array(2, s.Owner[:])
	if len(s.Entries) > 0 {
		e.message(3, func(e *encoder) { encSequenceEntries(e, s.Entries) })
	}
	e.message(4, func(e *encoder) { encSequencePermissions(e, s.Permissions) })
}

func decSequence(b []byte) (s Sequence, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setMessage(f, decDataAddress, &s.Address)
		case 2:
			return setArray(f, s.Owner[:])
		case 3:
			return setMessage(f, decSequenceEntries, &s.Entries)
		case 4:
			return setMessage(f, decSequencePermissions, &s.Permissions)
		}
		return nil
	})
	return s, err
}

func encTransfer(e *encoder, t Transfer) {
	e.message(1, func(e *encoder) {
		e.array(1, t.ID.Actor[:])
		e.uvarint(2, t.ID.Counter)
	})
	e.array(2, t.To[:])
	e.uvarint(3, uint64(t.Amount))
}

func decTransferID(b []byte) (id TransferID, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setArray(f, id.Actor[:])
		case 2:
			return setUint(f, &id.Counter)
		}
		return nil
	})
	return id, err
}

func decTransfer(b []byte) (t Transfer, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setMessage(f, decTransferID, &t.ID)
		case 2:
			return setArray(f, t.To[:])
		case 3:
			return setUint(f, &t.Amount)
		}
		return nil
	})
	return t, err
}

func encSignedTransfer(e *encoder, s SignedTransfer) {
	e.message(1, func(e *encoder) { encTransfer(e, s.Transfer) })
	e.array(2, s.ActorSignature[:])
}

func decSignedTransfer(b []byte) (s SignedTransfer, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setMessage(f, decTransfer, &s.Transfer)
		case 2:
			return setArray(f, s.ActorSignature[:])
		}
		return nil
	})
	return s, err
}

func encProof(e *encoder, p DebitAgreementProof) {
	e.message(1, func(e *encoder) { encSignedTransfer(e, p.SignedTransfer) })
	e.array(2, p.DebitingReplicas[:])
	e.array(3, p.ReplicaKey[:])
}

func decProof(b []byte) (p DebitAgreementProof, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setMessage(f, decSignedTransfer, &p.SignedTransfer)
		case 2:
			return setArray(f, p.DebitingReplicas[:])
		case 3:
			return setArray(f, p.ReplicaKey[:])
		}
		return nil
	})
	return p, err
}

func encTransferValidated(e *encoder, v TransferValidated) {
	e.message(1, func(e *encoder) { encSignedTransfer(e, v.SignedTransfer) })
	e.array(2, v.ReplicaSignature[:])
	e.array(3, v.Replicas[:])
}

func decTransferValidated(b []byte) (v TransferValidated, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setMessage(f, decSignedTransfer, &v.SignedTransfer)
		case 2:
			return setArray(f, v.ReplicaSignature[:])
		case 3:
			return setArray(f, v.Replicas[:])
		}
		return nil
	})
	return v, err
}

func encHistory(e *encoder, h History) {
	for _, ev := range h {
		e.message(1, func(e *encoder) {
			e.uvarint(1, uint64(ev.Kind))
			e.message(2, func(e *encoder) { encProof(e, ev.Proof) })
		})
	}
}

func decReplicaEvent(b []byte) (v ReplicaEvent, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setUint(f, &v.Kind)
		case 2:
			return setMessage(f, decProof, &v.Proof)
		}
		return nil
	})
	return v, err
}

func decHistory(b []byte) (h History, err error) {
	err = eachField(b, func(f field) error {
		if f.num == 1 {
			return appendMessage(f, decReplicaEvent, (*[]ReplicaEvent)(&h))
		}
		return nil
	})
	return h, err
}

func encReplicaKeys(e *encoder, v ReplicaPublicKeySet) {
	for _, k := range v.Keys {
		e.raw(1, k[:])
	}
	e.uvarint(2, uint64(v.Threshold))
}

func decReplicaKeys(b []byte) (v ReplicaPublicKeySet, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			var k PublicKey
			if err := setArray(f, k[:]); err != nil {
				return err
			}
			v.Keys = append(v.Keys, k)
		case 2:
			return setUint(f, &v.Threshold)
		}
		return nil
	})
	return v, err
}

func encAppPermissions(e *encoder, p AppPermissions) {
	e.boolean(1, p.DataMutations)
	e.boolean(2, p.ReadBalance)
	e.boolean(3, p.ReadTransferHistory)
	e.boolean(4, p.TransferMoney)
}

func decAppPermissions(b []byte) (p AppPermissions, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setBool(f, &p.DataMutations)
		case 2:
			return setBool(f, &p.ReadBalance)
		case 3:
			return setBool(f, &p.ReadTransferHistory)
		case 4:
			return setBool(f, &p.TransferMoney)
		}
		return nil
	})
	return p, err
}

func encAccount(e *encoder, v AccountData) {
	e.bytes(1, v.Data)
	e.array(2, v.Signature[:])
}

func decAccount(b []byte) (v AccountData, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setBytes(f, &v.Data)
		case 2:
			return setArray(f, v.Signature[:])
		}
		return nil
	})
	return v, err
}

func encAuthKeys(e *encoder, v AuthKeysList) {
	for _, k := range v.Keys {
		e.message(1, func(e *encoder) {
			e.array(1, k.Key[:])
			e.message(2, func(e *encoder) { encAppPermissions(e, k.Permissions) })
		})
	}
	e.uvarint(2, v.Version)
}

func decAppKey(b []byte) (v AppKey, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setArray(f, v.Key[:])
		case 2:
			return setMessage(f, decAppPermissions, &v.Permissions)
		}
		return nil
	})
	return v, err
}

func decAuthKeys(b []byte) (v AuthKeysList, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return appendMessage(f, decAppKey, &v.Keys)
		case 2:
			return setUint(f, &v.Version)
		}
		return nil
	})
	return v, err
}
