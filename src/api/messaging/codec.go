package messaging

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// MarshalEnvelope encodes an envelope for the wire. The envelope is
// validated first.
func MarshalEnvelope(env *Envelope) ([]byte, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: nil envelope", ErrMalformed)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	e := encoder{}
	e.message(1, func(e *encoder) { encMessage(e, env.Message) })
	e.message(2, func(e *encoder) { encSender(e, env.Origin) })
	for _, p := range env.Proxies {
		e.message(3, func(e *encoder) { encSender(e, p) })
	}
	return e.buf, nil
}

// UnmarshalEnvelope decodes and validates an envelope.
func UnmarshalEnvelope(b []byte) (*Envelope, error) {
	env := &Envelope{}
	var hasOrigin bool
	err := eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setMessage(f, decMessage, &env.Message)
		case 2:
			hasOrigin = true
			return setMessage(f, decSender, &env.Origin)
		case 3:
			return appendMessage(f, decSender, &env.Proxies)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !hasOrigin {
		return nil, fmt.Errorf("%w: envelope without origin", ErrMalformed)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

// MarshalMessage encodes a message on its own; this is what senders sign.
func MarshalMessage(m Message) ([]byte, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}
	e := encoder{}
	encMessage(&e, m)
	return e.buf, nil
}

// UnmarshalMessage decodes and validates a message.
func UnmarshalMessage(b []byte) (Message, error) {
	m, err := decMessage(b)
	if err != nil {
		return nil, err
	}
	if err := Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// message variant bodies share one layout:
// 1 id, 2 correlation id, 3 origin address, 4 payload.
func encMessage(e *encoder, m Message) {
	body := func(num protowire.Number, correlation MessageID, origin *Address, payload func(*encoder)) {
		e.message(num, func(e *encoder) {
			id := m.ID()
			e.array(1, id[:])
			e.array(2, correlation[:])
			if origin != nil {
				e.message(3, func(e *encoder) { encAddress(e, *origin) })
			}
			e.message(4, payload)
		})
	}
	switch m := m.(type) {
	case *CmdMessage:
		body(1, MessageID{}, nil, func(e *encoder) { encCmd(e, m.Cmd) })
	case *QueryMessage:
		body(2, MessageID{}, nil, func(e *encoder) { encQuery(e, m.Query) })
	case *EventMessage:
		body(3, m.CorrelationID, nil, func(e *encoder) { encEvent(e, m.Event) })
	case *QueryResponseMessage:
		body(4, m.CorrelationID, &m.QueryOrigin, func(e *encoder) { encQueryResponse(e, m.Response) })
	case *CmdErrorMessage:
		body(5, m.CorrelationID, &m.CmdOrigin, func(e *encoder) { encCmdError(e, m.Error) })
	case *NetworkCmdMessage:
		body(6, MessageID{}, nil, func(e *encoder) { encNetworkCmd(e, m.Cmd) })
	case *NetworkEventMessage:
		body(7, m.CorrelationID, nil, func(e *encoder) { encNetworkEvent(e, m.Event) })
	case *NetworkCmdErrorMessage:
		body(8, m.CorrelationID, &m.CmdOrigin, func(e *encoder) { encNetworkCmdError(e, m.Error) })
	default:
		panic(fmt.Sprintf("messaging: unknown message kind %T", m))
	}
}

type messageBody struct {
	id          MessageID
	correlation MessageID
	origin      Address
	hasOrigin   bool
	payload     []byte
	hasPayload  bool
}

func decMessageBody(b []byte) (mb messageBody, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setArray(f, mb.id[:])
		case 2:
			return setArray(f, mb.correlation[:])
		case 3:
			mb.hasOrigin = true
			return setMessage(f, decAddress, &mb.origin)
		case 4:
			if err := f.expect(protowire.BytesType); err != nil {
				return err
			}
			mb.payload, mb.hasPayload = f.b, true
		}
		return nil
	})
	if err == nil && !mb.hasPayload {
		err = fmt.Errorf("%w: message without payload", ErrMalformed)
	}
	return mb, err
}

func (mb messageBody) requireOrigin() error {
	if !mb.hasOrigin {
		return fmt.Errorf("%w: reply without origin address", ErrMalformed)
	}
	return nil
}

func decMessage(b []byte) (Message, error) {
	var out Message
	err := eachVariant(b, "message", func(num protowire.Number, body []byte) error {
		mb, err := decMessageBody(body)
		if err != nil {
			return err
		}
		switch num {
		case 1:
			m := &CmdMessage{MsgID: mb.id}
			m.Cmd, err = decCmd(mb.payload)
			out = m
		case 2:
			m := &QueryMessage{MsgID: mb.id}
			m.Query, err = decQuery(mb.payload)
			out = m
		case 3:
			m := &EventMessage{MsgID: mb.id, CorrelationID: mb.correlation}
			m.Event, err = decEvent(mb.payload)
			out = m
		case 4:
			if err := mb.requireOrigin(); err != nil {
				return err
			}
			m := &QueryResponseMessage{MsgID: mb.id, CorrelationID: mb.correlation, QueryOrigin: mb.origin}
			m.Response, err = decQueryResponse(mb.payload)
			out = m
		case 5:
			if err := mb.requireOrigin(); err != nil {
				return err
			}
			m := &CmdErrorMessage{MsgID: mb.id, CorrelationID: mb.correlation, CmdOrigin: mb.origin}
			m.Error, err = decCmdError(mb.payload)
			out = m
		case 6:
			m := &NetworkCmdMessage{MsgID: mb.id}
			m.Cmd, err = decNetworkCmd(mb.payload)
			out = m
		case 7:
			m := &NetworkEventMessage{MsgID: mb.id, CorrelationID: mb.correlation}
			m.Event, err = decNetworkEvent(mb.payload)
			out = m
		case 8:
			if err := mb.requireOrigin(); err != nil {
				return err
			}
			m := &NetworkCmdErrorMessage{MsgID: mb.id, CorrelationID: mb.correlation, CmdOrigin: mb.origin}
			m.Error, err = decNetworkCmdError(mb.payload)
			out = m
		default:
			return unknownVariant("message", num)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func encCmd(e *encoder, c Cmd) {
	switch c := c.(type) {
	case AuthCmd:
		e.message(1, func(e *encoder) {
			e.uvarint(1, uint64(c.Op))
			e.array(2, c.Client[:])
			e.array(3, c.Key[:])
			e.uvarint(4, c.Version)
			e.message(5, func(e *encoder) { encAppPermissions(e, c.Permissions) })
		})
	case DataCmd:
		e.message(2, func(e *encoder) {
			e.message(1, func(e *encoder) { encDataWrite(e, c.Write) })
			e.message(2, func(e *encoder) { encProof(e, c.Payment) })
		})
	case TransferCmd:
		e.message(3, func(e *encoder) {
			e.uvarint(1, uint64(c.Op))
			e.message(2, func(e *encoder) { encSignedTransfer(e, c.Signed) })
			e.message(3, func(e *encoder) { encProof(e, c.Proof) })
		})
	default:
		panic(fmt.Sprintf("messaging: unknown cmd %T", c))
	}
}

func decCmd(b []byte) (Cmd, error) {
	var out Cmd
	err := eachVariant(b, "cmd", func(num protowire.Number, body []byte) (err error) {
		switch num {
		case 1:
			out, err = decAuthCmd(body)
		case 2:
			out, err = decDataCmd(body)
		case 3:
			out, err = decTransferCmd(body)
		default:
			err = unknownVariant("cmd", num)
		}
		return err
	})
	return out, err
}

func decAuthCmd(b []byte) (c AuthCmd, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setUint(f, &c.Op)
		case 2:
			return setArray(f, c.Client[:])
		case 3:
			return setArray(f, c.Key[:])
		case 4:
			return setUint(f, &c.Version)
		case 5:
			return setMessage(f, decAppPermissions, &c.Permissions)
		}
		return nil
	})
	return c, err
}

func decDataCmd(b []byte) (c DataCmd, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setMessage(f, decDataWrite, &c.Write)
		case 2:
			return setMessage(f, decProof, &c.Payment)
		}
		return nil
	})
	if err == nil && c.Write == nil {
		err = fmt.Errorf("%w: data cmd without write", ErrMalformed)
	}
	return c, err
}

func decTransferCmd(b []byte) (c TransferCmd, err error) {
	err = eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setUint(f, &c.Op)
		case 2:
			return setMessage(f, decSignedTransfer, &c.Signed)
		case 3:
			return setMessage(f, decProof, &c.Proof)
		}
		return nil
	})
	return c, err
}

func encDataWrite(e *encoder, w DataWrite) {
	switch w := w.(type) {
	case BlobWrite:
		e.message(1, func(e *encoder) {
			e.uvarint(1, uint64(w.Op))
			e.message(2, func(e *encoder) { encBlob(e, w.Blob) })
			e.message(3, func(e *encoder) { encDataAddress(e, w.Address) })
		})
	case MapWrite:
		e.message(2, func(e *encoder) {
			e.uvarint(1, uint64(w.Op))
			e.message(2, func(e *encoder) { encDataAddress(e, w.Address) })
			e.message(3, func(e *encoder) { encMap(e, w.Map) })
			for _, a := range w.Actions {
				e.message(4, func(e *encoder) { encMapEntryAction(e, a) })
			}
			e.array(5, w.User[:])
			e.uvarint(6, uint64(w.Permissions))
			e.uvarint(7, w.Version)
		})
	case SequenceWrite:
		e.message(3, func(e *encoder) {
			e.uvarint(1, uint64(w.Op))
			e.message(2, func(e *encoder) { encDataAddress(e, w.Address) })
			e.message(3, func(e *encoder) { encSequence(e, w.Sequence) })
			e.bytes(4, w.Entry)
			e.message(5, func(e *encoder) { encSequencePermissions(e, w.Permissions) })
		})
	default:
		panic(fmt.Sprintf("messaging: unknown data write %T", w))
	}
}

func decDataWrite(b []byte) (DataWrite, error) {
	var out DataWrite
	err := eachVariant(b, "data write", func(num protowire.Number, body []byte) (err error) {
		switch num {
		case 1:
			var w BlobWrite
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setUint(f, &w.Op)
				case 2:
					return setMessage(f, decBlob, &w.Blob)
				case 3:
					return setMessage(f, decDataAddress, &w.Address)
				}
				return nil
			})
			out = w
		case 2:
			var w MapWrite
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setUint(f, &w.Op)
				case 2:
					return setMessage(f, decDataAddress, &w.Address)
				case 3:
					return setMessage(f, decMap, &w.Map)
				case 4:
					return appendMessage(f, decMapEntryAction, &w.Actions)
				case 5:
					return setArray(f, w.User[:])
				case 6:
					return setUint(f, &w.Permissions)
				case 7:
					return setUint(f, &w.Version)
				}
				return nil
			})
			out = w
		case 3:
			var w SequenceWrite
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setUint(f, &w.Op)
				case 2:
					return setMessage(f, decDataAddress, &w.Address)
				case 3:
					return setMessage(f, decSequence, &w.Sequence)
				case 4:
					return setBytes(f, &w.Entry)
				case 5:
					return setMessage(f, decSequencePermissions, &w.Permissions)
				}
				return nil
			})
			out = w
		default:
			err = unknownVariant("data write", num)
		}
		return err
	})
	return out, err
}

func encQuery(e *encoder, q Query) {
	switch q := q.(type) {
	case AuthQuery:
		e.message(1, func(e *encoder) { e.array(1, q.Client[:]) })
	case DataQuery:
		e.message(2, func(e *encoder) {
			e.uvarint(1, uint64(q.Op))
			e.message(2, func(e *encoder) { encDataAddress(e, q.Address) })
			e.bytes(3, q.Key)
			e.array(4, q.User[:])
			e.uvarint(5, q.Range.Start)
			e.uvarint(6, q.Range.End)
		})
	case TransferQuery:
		e.message(3, func(e *encoder) {
			e.uvarint(1, uint64(q.Op))
			e.array(2, q.At[:])
			e.uvarint(3, q.SinceVersion)
			e.uvarint(4, q.Bytes)
		})
	default:
		panic(fmt.Sprintf("messaging: unknown query %T", q))
	}
}

func decQuery(b []byte) (Query, error) {
	var out Query
	err := eachVariant(b, "query", func(num protowire.Number, body []byte) (err error) {
		switch num {
		case 1:
			var q AuthQuery
			err = eachField(body, func(f field) error {
				if f.num == 1 {
					return setArray(f, q.Client[:])
				}
				return nil
			})
			out = q
		case 2:
			var q DataQuery
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setUint(f, &q.Op)
				case 2:
					return setMessage(f, decDataAddress, &q.Address)
				case 3:
					return setBytes(f, &q.Key)
				case 4:
					return setArray(f, q.User[:])
				case 5:
					return setUint(f, &q.Range.Start)
				case 6:
					return setUint(f, &q.Range.End)
				}
				return nil
			})
			out = q
		case 3:
			var q TransferQuery
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setUint(f, &q.Op)
				case 2:
					return setArray(f, q.At[:])
				case 3:
					return setUint(f, &q.SinceVersion)
				case 4:
					return setUint(f, &q.Bytes)
				}
				return nil
			})
			out = q
		default:
			err = unknownVariant("query", num)
		}
		return err
	})
	return out, err
}

func encEvent(e *encoder, ev Event) {
	switch ev := ev.(type) {
	case TransferValidatedEvent:
		e.message(1, func(e *encoder) {
			e.array(1, ev.Client[:])
			e.message(2, func(e *encoder) { encTransferValidated(e, ev.Event) })
		})
	case TransferAgreementReachedEvent:
		e.message(2, func(e *encoder) {
			e.array(1, ev.Client[:])
			e.message(2, func(e *encoder) { encProof(e, ev.Proof) })
		})
	default:
		panic(fmt.Sprintf("messaging: unknown event %T", ev))
	}
}

func decEvent(b []byte) (Event, error) {
	var out Event
	err := eachVariant(b, "event", func(num protowire.Number, body []byte) (err error) {
		switch num {
		case 1:
			var ev TransferValidatedEvent
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setArray(f, ev.Client[:])
				case 2:
					return setMessage(f, decTransferValidated, &ev.Event)
				}
				return nil
			})
			out = ev
		case 2:
			var ev TransferAgreementReachedEvent
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setArray(f, ev.Client[:])
				case 2:
					return setMessage(f, decProof, &ev.Proof)
				}
				return nil
			})
			out = ev
		default:
			err = unknownVariant("event", num)
		}
		return err
	})
	return out, err
}

func encNetworkCmd(e *encoder, c NetworkCmd) {
	switch c := c.(type) {
	case ReplicateChunk:
		e.message(1, func(e *encoder) {
			e.array(1, c.Holder[:])
			e.message(2, func(e *encoder) { encDataAddress(e, c.Address) })
			e.array(3, c.Section[:])
		})
	case PropagateTransfer:
		e.message(2, func(e *encoder) {
			e.message(1, func(e *encoder) { encProof(e, c.Proof) })
		})
	case PayoutReward:
		e.message(3, func(e *encoder) {
			e.uvarint(1, uint64(c.Reward))
			e.array(2, c.NodeID[:])
			e.array(3, c.Wallet[:])
		})
	default:
		panic(fmt.Sprintf("messaging: unknown network cmd %T", c))
	}
}

func decNetworkCmd(b []byte) (NetworkCmd, error) {
	var out NetworkCmd
	err := eachVariant(b, "network cmd", func(num protowire.Number, body []byte) (err error) {
		switch num {
		case 1:
			var c ReplicateChunk
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setArray(f, c.Holder[:])
				case 2:
					return setMessage(f, decDataAddress, &c.Address)
				case 3:
					return setArray(f, c.Section[:])
				}
				return nil
			})
			out = c
		case 2:
			var c PropagateTransfer
			err = eachField(body, func(f field) error {
				if f.num == 1 {
					return setMessage(f, decProof, &c.Proof)
				}
				return nil
			})
			out = c
		case 3:
			var c PayoutReward
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setUint(f, &c.Reward)
				case 2:
					return setArray(f, c.NodeID[:])
				case 3:
					return setArray(f, c.Wallet[:])
				}
				return nil
			})
			out = c
		default:
			err = unknownVariant("network cmd", num)
		}
		return err
	})
	return out, err
}

func encNetworkEvent(e *encoder, ev NetworkEvent) {
	switch ev := ev.(type) {
	case DuplicationComplete:
		e.message(1, func(e *encoder) {
			e.message(1, func(e *encoder) { encDataAddress(e, ev.Chunk) })
			e.array(2, ev.Holder[:])
		})
	case TransferPropagated:
		e.message(2, func(e *encoder) {
			e.message(1, func(e *encoder) { encProof(e, ev.Proof) })
			e.array(2, ev.Crediting[:])
		})
	default:
		panic(fmt.Sprintf("messaging: unknown network event %T", ev))
	}
}

func decNetworkEvent(b []byte) (NetworkEvent, error) {
	var out NetworkEvent
	err := eachVariant(b, "network event", func(num protowire.Number, body []byte) (err error) {
		switch num {
		case 1:
			var ev DuplicationComplete
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setMessage(f, decDataAddress, &ev.Chunk)
				case 2:
					return setArray(f, ev.Holder[:])
				}
				return nil
			})
			out = ev
		case 2:
			var ev TransferPropagated
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setMessage(f, decProof, &ev.Proof)
				case 2:
					return setArray(f, ev.Crediting[:])
				}
				return nil
			})
			out = ev
		default:
			err = unknownVariant("network event", num)
		}
		return err
	})
	return out, err
}

// errors inside a variant are optional on the wire: a nil *Error is
// omitted and decodes back to nil.
func encOptionalError(e *encoder, num protowire.Number, err *Error) {
	if err != nil {
		e.message(num, func(e *encoder) { encError(e, err) })
	}
}

func encNetworkCmdError(e *encoder, ne NetworkCmdError) {
	switch ne := ne.(type) {
	case NetworkDataError:
		e.message(1, func(e *encoder) {
			e.message(1, func(e *encoder) { encDataAddress(e, ne.Chunk) })
			encOptionalError(e, 2, ne.Err)
		})
	case NetworkTransferError:
		e.message(2, func(e *encoder) {
			e.message(1, func(e *encoder) {
				e.array(1, ne.ID.Actor[:])
				e.uvarint(2, ne.ID.Counter)
			})
			encOptionalError(e, 2, ne.Err)
		})
	default:
		panic(fmt.Sprintf("messaging: unknown network cmd error %T", ne))
	}
}

func decNetworkCmdError(b []byte) (NetworkCmdError, error) {
	var out NetworkCmdError
	err := eachVariant(b, "network cmd error", func(num protowire.Number, body []byte) (err error) {
		switch num {
		case 1:
			var ne NetworkDataError
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setMessage(f, decDataAddress, &ne.Chunk)
				case 2:
					return setMessage(f, decError, &ne.Err)
				}
				return nil
			})
			out = ne
		case 2:
			var ne NetworkTransferError
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setMessage(f, decTransferID, &ne.ID)
				case 2:
					return setMessage(f, decError, &ne.Err)
				}
				return nil
			})
			out = ne
		default:
			err = unknownVariant("network cmd error", num)
		}
		return err
	})
	return out, err
}

func encCmdError(e *encoder, ce CmdError) {
	switch ce := ce.(type) {
	case AuthCmdError:
		e.message(1, func(e *encoder) { encOptionalError(e, 1, ce.Err) })
	case DataCmdError:
		e.message(2, func(e *encoder) { encOptionalError(e, 1, ce.Err) })
	case TransferCmdError:
		e.message(3, func(e *encoder) {
			e.uvarint(1, uint64(ce.Err.Phase))
			encOptionalError(e, 2, ce.Err.Err)
		})
	default:
		panic(fmt.Sprintf("messaging: unknown cmd error %T", ce))
	}
}

func decCmdError(b []byte) (CmdError, error) {
	var out CmdError
	err := eachVariant(b, "cmd error", func(num protowire.Number, body []byte) (err error) {
		var inner *Error
		switch num {
		case 1, 2:
			err = eachField(body, func(f field) error {
				if f.num == 1 {
					return setMessage(f, decError, &inner)
				}
				return nil
			})
			if num == 1 {
				out = AuthCmdError{Err: inner}
			} else {
				out = DataCmdError{Err: inner}
			}
		case 3:
			var te TransferError
			err = eachField(body, func(f field) error {
				switch f.num {
				case 1:
					return setUint(f, &te.Phase)
				case 2:
					return setMessage(f, decError, &te.Err)
				}
				return nil
			})
			if err == nil && (te.Phase < TransferValidation || te.Phase > TransferPropagation) {
				err = fmt.Errorf("%w: transfer phase %d", ErrUnknownVariant, te.Phase)
			}
			out = TransferCmdError{Err: te}
		default:
			err = unknownVariant("cmd error", num)
		}
		return err
	})
	return out, err
}

// responseCodec binds a response kind to its payload type.
type responseCodec struct {
	encode  func(e *encoder, r QueryResponse)
	decode  func(kind ResponseKind, value []byte) (QueryResponse, error)
	failure func(kind ResponseKind, err *Error) QueryResponse
}

func codecFor[T any](enc func(*encoder, T), dec func([]byte) (T, error)) responseCodec {
	return responseCodec{
		encode: func(e *encoder, r QueryResponse) {
			enc(e, r.(*Response[T]).Result.Value)
		},
		decode: func(kind ResponseKind, value []byte) (QueryResponse, error) {
			v, err := dec(value)
			if err != nil {
				return nil, err
			}
			return &Response[T]{kind: kind, Result: Success(v)}, nil
		},
		failure: func(kind ResponseKind, err *Error) QueryResponse {
			return &Response[T]{kind: kind, Result: Failure[T](err)}
		},
	}
}

var responseCodecs = map[ResponseKind]responseCodec{
	KindGetBlob:                    codecFor(encBlob, decBlob),
	KindGetMap:                     codecFor(encMap, decMap),
	KindGetMapShell:                codecFor(encMap, decMap),
	KindGetMapVersion:              codecFor(encUint[uint64], decUint[uint64]),
	KindListMapEntries:             codecFor(encMapEntries, decMapEntries),
	KindListMapKeys:                codecFor(encMapKeys, decMapKeys),
	KindListMapValues:              codecFor(encMapValues, decMapValues),
	KindListMapPermissions:         codecFor(encMapPermissions, decMapPermissions),
	KindListMapUserPermissions:     codecFor(encUint[MapPermissionSet], decUint[MapPermissionSet]),
	KindGetMapValue:                codecFor(encMapValue, decMapValue),
	KindGetSequence:                codecFor(encSequence, decSequence),
	KindGetSequenceOwner:           codecFor(encOwner, decOwner),
	KindGetSequenceRange:           codecFor(encSequenceEntries, decSequenceEntries),
	KindGetSequenceLastEntry:       codecFor(encIndexedEntry, decIndexedEntry),
	KindGetSequencePermissions:     codecFor(encSequencePermissions, decSequencePermissions),
	KindGetSequenceUserPermissions: codecFor(encSequenceUserPermissions, decSequenceUserPermissions),
	KindGetBalance:                 codecFor(encUint[Money], decUint[Money]),
	KindGetHistory:                 codecFor(encHistory, decHistory),
	KindGetReplicaKeys:             codecFor(encReplicaKeys, decReplicaKeys),
	KindGetStoreCost:               codecFor(encUint[Money], decUint[Money]),
	KindGetAccount:                 codecFor(encAccount, decAccount),
	KindListAuthKeysAndVersion:     codecFor(encAuthKeys, decAuthKeys),
}

// response layout: 1 kind, 2 value on success, 3 error on failure.
func encQueryResponse(e *encoder, r QueryResponse) {
	c, ok := responseCodecs[r.Kind()]
	if !ok {
		panic(fmt.Sprintf("messaging: unknown response kind %d", r.Kind()))
	}
	e.uvarint(1, uint64(r.Kind()))
	if err := r.Failure(); err != nil {
		e.message(3, func(e *encoder) { encError(e, err) })
		return
	}
	e.message(2, func(e *encoder) { c.encode(e, r) })
}

func decQueryResponse(b []byte) (QueryResponse, error) {
	var (
		kind    ResponseKind
		value   []byte
		failure *Error
	)
	err := eachField(b, func(f field) error {
		switch f.num {
		case 1:
			return setUint(f, &kind)
		case 2:
			if err := f.expect(protowire.BytesType); err != nil {
				return err
			}
			value = f.b
		case 3:
			return setMessage(f, decError, &failure)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := responseCodecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: response kind %d", ErrUnknownVariant, kind)
	}
	if failure != nil {
		return c.failure(kind, failure), nil
	}
	return c.decode(kind, value)
}
