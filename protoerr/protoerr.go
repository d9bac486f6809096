// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package protoerr holds the closed set of proxy-internal errors from
// spec §7. Fatality is not a property of the error value itself: the
// same NoServerObjectError is fatal when it means the sender named an ID
// its own registry never held (a decoding failure, §4.4) but non-fatal
// when it means the default handler could not resolve an argument's
// opposite-side ID while forwarding (§4.3) — the dispatch loop and the
// default handler each know which case they are in and classify
// accordingly; see dispatch.Loop and the per-interface DefaultHandlers.
//
// This mirrors the teacher's sentinel-error style (errors.go) for the
// error kinds that need no extra fields, and thiagojdb-adoctl's typed,
// Unwrap-capable error style for the ones that carry context a bare
// sentinel cannot (a field name, an object ID, two interface tags…).
package protoerr

import (
	"errors"
	"fmt"
)

// Sentinel errors with no parameters.
var (
	// ErrReceiverNoServerID means the default handler tried to forward a
	// message naming an object that has no ID on the server side yet.
	ErrReceiverNoServerID = errors.New("protoerr: receiver has no server-side id")

	// ErrReceiverNoClient means the default handler tried to forward a
	// message to a client endpoint that is no longer registered.
	ErrReceiverNoClient = errors.New("protoerr: receiver has no client endpoint")

	// ErrHandlerBorrowed means a dispatcher was invoked while the
	// target object's handler slot was already borrowed (re-entrance).
	ErrHandlerBorrowed = errors.New("protoerr: handler slot already borrowed")
)

// ArgNoServerIDError reports that an object argument could not be named
// on the server side when forwarding a client-to-server message.
type ArgNoServerIDError struct{ Field string }

func (e *ArgNoServerIDError) Error() string {
	return fmt.Sprintf("protoerr: argument %q has no server-side id", e.Field)
}

// ArgNoClientIDError reports that an object argument could not be named
// on a client's side when forwarding a server-to-client message.
type ArgNoClientIDError struct {
	Field    string
	ClientID uint32
}

func (e *ArgNoClientIDError) Error() string {
	return fmt.Sprintf("protoerr: argument %q has no id on client %d", e.Field, e.ClientID)
}

// NoClientObjectError reports that a client named an ID unknown to its
// own registry.
type NoClientObjectError struct {
	ClientID uint32
	ID       uint32
}

func (e *NoClientObjectError) Error() string {
	return fmt.Sprintf("protoerr: client %d has no object %d", e.ClientID, e.ID)
}

// NoServerObjectError reports that the compositor named an ID unknown to
// the server-side registry.
type NoServerObjectError struct{ ID uint32 }

func (e *NoServerObjectError) Error() string {
	return fmt.Sprintf("protoerr: server registry has no object %d", e.ID)
}

// WrongObjectTypeError reports an object reference whose stored
// interface tag does not match what the signature expects.
type WrongObjectTypeError struct {
	Field, Actual, Expected string
}

func (e *WrongObjectTypeError) Error() string {
	return fmt.Sprintf("protoerr: argument %q: object is %s, want %s", e.Field, e.Actual, e.Expected)
}

// GenerateServerIDError reports that the server-side registry could not
// allocate a fresh ID (range exhausted).
type GenerateServerIDError struct {
	Field string
	Err   error
}

func (e *GenerateServerIDError) Error() string {
	return fmt.Sprintf("protoerr: allocating server id for %q: %v", e.Field, e.Err)
}

func (e *GenerateServerIDError) Unwrap() error { return e.Err }

// SetClientIDError reports that a client-side ID could not be recorded
// (range exhausted or collision).
type SetClientIDError struct {
	ID    uint32
	Field string
	Err   error
}

func (e *SetClientIDError) Error() string {
	return fmt.Sprintf("protoerr: recording client id %d for %q: %v", e.ID, e.Field, e.Err)
}

func (e *SetClientIDError) Unwrap() error { return e.Err }

// ErrIDSpaceExhausted is the Err a GenerateServerIDError/SetClientIDError
// wraps when a registry's ID range has no free slot left.
var ErrIDSpaceExhausted = errors.New("protoerr: id space exhausted")
