// Package messaging defines the messages exchanged by clients and nodes of
// the data network: requests, their responses and errors, events, and the
// signed envelope that carries them hop by hop.
//
// Every reply names its requester inline, so routing a message needs only
// the message itself. Envelopes encode to a canonical protobuf layout; see
// MarshalEnvelope.
package messaging
