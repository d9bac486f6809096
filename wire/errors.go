// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"fmt"
)

// Sentinel framing errors. These are the closed set spec'd for the
// decoder contract; anything else the decoder returns is a bug.
var (
	// ErrTrailingBytes means a message's consumed offset did not reach
	// the end of the frame after decoding every argument.
	ErrTrailingBytes = errors.New("wire: trailing bytes after last argument")

	// ErrInvalidUtf8 means a string argument's bytes were not valid UTF-8.
	ErrInvalidUtf8 = errors.New("wire: string argument is not valid utf-8")

	// ErrUnterminatedString means a string's declared length did not
	// leave room for (or did not end in) the required trailing NUL.
	ErrUnterminatedString = errors.New("wire: string argument missing terminating nul")

	// ErrEmptyFDQueue means an fd-typed argument was decoded but the
	// endpoint's ancillary queue had no fd left to consume.
	ErrEmptyFDQueue = errors.New("wire: fd argument but ancillary queue is empty")

	// ErrNullNewID means a new_id argument carried the null ID 0 in a
	// slot the signature marks non-nullable.
	ErrNullNewID = errors.New("wire: new_id argument is null")

	// ErrInvalidFrameSize means a frame's header word 1 declared a size
	// field smaller than the header itself or larger than the protocol
	// maximum, before any interface-specific signature is even consulted.
	ErrInvalidFrameSize = errors.New("wire: header declares an invalid frame size")
)

// WrongMessageSizeError reports that a message's declared size does not
// match what its signature requires.
type WrongMessageSizeError struct {
	Actual, Expected int
}

func (e *WrongMessageSizeError) Error() string {
	return fmt.Sprintf("wire: wrong message size: got %d bytes, want %d", e.Actual, e.Expected)
}

// MissingArgumentError reports that an argument could not be decoded
// because the message ran out of bytes before it.
type MissingArgumentError struct {
	Field string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("wire: missing argument %q", e.Field)
}

// UnknownMessageIDError reports an opcode with no corresponding entry in
// the interface's request or event table.
type UnknownMessageIDError struct {
	Opcode uint16
}

func (e *UnknownMessageIDError) Error() string {
	return fmt.Sprintf("wire: unknown message opcode %d", e.Opcode)
}
