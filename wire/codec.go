// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "unicode/utf8"

// Encoder builds one message's payload. Call the Put* methods in
// signature order, then Finish to obtain the complete frame (header +
// payload) with the size field filled in. fd-typed arguments carry no
// payload bytes; call FD to register one and collect the accumulated
// list with FDs after Finish.
type Encoder struct {
	buf []byte
	fds []int
}

// NewEncoder returns an Encoder with buf pre-sized for a typical message.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 64)}
}

// Reset clears e for reuse.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.fds = e.fds[:0]
}

// Uint32 appends a raw unsigned 32-bit word.
func (e *Encoder) Uint32(v uint32) {
	var w [4]byte
	ByteOrder.PutUint32(w[:], v)
	e.buf = append(e.buf, w[:]...)
}

// Int32 appends a signed 32-bit word.
func (e *Encoder) Int32(v int32) { e.Uint32(uint32(v)) }

// FixedArg appends a 24.8 fixed-point word.
func (e *Encoder) FixedArg(v Fixed) { e.Uint32(uint32(v)) }

// Object appends an object-ID word (0 for null).
func (e *Encoder) Object(id ObjectID) { e.Uint32(uint32(id)) }

// NewIDArg appends a bare new_id word (the interface/version are implied
// by the signature, not carried on the wire, except for wl_registry.bind
// which uses NewIDFull instead).
func (e *Encoder) NewIDArg(id ObjectID) { e.Uint32(uint32(id)) }

// NewIDFull appends a dynamically-typed new_id argument: interface name,
// version, then object ID — the shape wl_registry.bind uses.
func (e *Encoder) NewIDFull(iface string, version uint32, id ObjectID) {
	e.String(iface)
	e.Uint32(version)
	e.Uint32(uint32(id))
}

// String appends a length-prefixed, NUL-terminated, 4-byte-padded string.
func (e *Encoder) String(s string) {
	n := len(s) + 1 // including NUL
	e.Uint32(uint32(n))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
	for pad := Padded4(n) - n; pad > 0; pad-- {
		e.buf = append(e.buf, 0)
	}
}

// Array appends a length-prefixed, 4-byte-padded opaque byte array.
func (e *Encoder) Array(b []byte) {
	e.Uint32(uint32(len(b)))
	e.buf = append(e.buf, b...)
	for pad := Padded4(len(b)) - len(b); pad > 0; pad-- {
		e.buf = append(e.buf, 0)
	}
}

// FD records that one file descriptor accompanies this message. It
// consumes no payload bytes; the caller is responsible for handing the
// fds returned by FDs to the destination endpoint's outbound fd queue in
// the same order once the frame is flushed.
func (e *Encoder) FD(f int) { e.fds = append(e.fds, f) }

// FDs returns the fds accumulated by FD calls, in order.
func (e *Encoder) FDs() []int { return e.fds }

// Finish returns the complete wire frame for a message sent to target
// with the given opcode, with the size field computed over the whole
// frame (header included), matching spec.md's requirement that the
// second header word's size field is filled in only once the payload is
// complete.
func (e *Encoder) Finish(target ObjectID, opcode uint16) []byte {
	size := HeaderLen + len(e.buf)
	frame := make([]byte, size)
	ByteOrder.PutUint32(frame[0:4], uint32(target))
	ByteOrder.PutUint32(frame[4:8], MakeSecondWord(size, opcode))
	copy(frame[HeaderLen:], e.buf)
	return frame
}

// Decoder parses one message's payload in signature order. Callers first
// split the header with SplitHeader, then construct a Decoder over the
// payload slice (the frame with the header stripped).
type Decoder struct {
	payload []byte
	off     int
	fds     *FDQueue
	fdsRead int
}

// NewDecoder returns a Decoder over payload (the message bytes after the
// 8-byte header). fds is the endpoint's ancillary fd queue; fd-typed
// arguments pop from its front in signature order, so the same queue
// instance must be shared across every message decoded from that
// endpoint's inbound stream (a batched read may carry fds for several
// messages at once).
func NewDecoder(payload []byte, fds *FDQueue) *Decoder {
	return &Decoder{payload: payload, fds: fds}
}

// Offset returns the number of payload bytes consumed so far.
func (d *Decoder) Offset() int { return d.off }

// Len returns the total payload length.
func (d *Decoder) Len() int { return len(d.payload) }

// Finish verifies every payload byte was consumed; it is the
// TrailingBytes check spec.md's decoder contract requires.
func (d *Decoder) Finish() error {
	if d.off != len(d.payload) {
		return ErrTrailingBytes
	}
	return nil
}

func (d *Decoder) takeWord(field string) ([]byte, error) {
	if d.off+4 > len(d.payload) {
		return nil, &MissingArgumentError{Field: field}
	}
	w := d.payload[d.off : d.off+4]
	d.off += 4
	return w, nil
}

// Uint32 decodes one unsigned 32-bit argument.
func (d *Decoder) Uint32(field string) (uint32, error) {
	w, err := d.takeWord(field)
	if err != nil {
		return 0, err
	}
	return ByteOrder.Uint32(w), nil
}

// Int32 decodes one signed 32-bit argument.
func (d *Decoder) Int32(field string) (int32, error) {
	v, err := d.Uint32(field)
	return int32(v), err
}

// FixedArg decodes one 24.8 fixed-point argument.
func (d *Decoder) FixedArg(field string) (Fixed, error) {
	v, err := d.Uint32(field)
	return Fixed(v), err
}

// Object decodes one object-ID argument (0 is a valid null reference).
func (d *Decoder) Object(field string) (ObjectID, error) {
	v, err := d.Uint32(field)
	return ObjectID(v), err
}

// NewIDArg decodes a bare new_id argument. nullable controls whether ID 0
// is accepted; non-nullable new-id slots reject it per spec.md §4.4.
func (d *Decoder) NewIDArg(field string, nullable bool) (ObjectID, error) {
	id, err := d.Object(field)
	if err != nil {
		return 0, err
	}
	if id == 0 && !nullable {
		return 0, ErrNullNewID
	}
	return id, nil
}

// NewIDFull decodes a dynamically-typed new_id argument (interface,
// version, id) — the shape wl_registry.bind uses.
func (d *Decoder) NewIDFull(field string) (iface string, version uint32, id ObjectID, err error) {
	iface, err = d.String(field + ".interface")
	if err != nil {
		return
	}
	version, err = d.Uint32(field + ".version")
	if err != nil {
		return
	}
	id, err = d.NewIDArg(field, false)
	return
}

// String decodes a length-prefixed, NUL-terminated, 4-byte-padded string
// and validates it is well-formed UTF-8.
func (d *Decoder) String(field string) (string, error) {
	n, err := d.Uint32(field + ".len")
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", &MissingArgumentError{Field: field}
	}
	total := Padded4(int(n))
	if d.off+total > len(d.payload) {
		return "", &MissingArgumentError{Field: field}
	}
	raw := d.payload[d.off : d.off+int(n)]
	d.off += total
	if raw[len(raw)-1] != 0 {
		return "", ErrUnterminatedString
	}
	s := raw[:len(raw)-1]
	if !utf8.Valid(s) {
		return "", ErrInvalidUtf8
	}
	return string(s), nil
}

// Array decodes a length-prefixed, 4-byte-padded opaque byte array.
func (d *Decoder) Array(field string) ([]byte, error) {
	n, err := d.Uint32(field + ".len")
	if err != nil {
		return nil, err
	}
	total := Padded4(int(n))
	if d.off+total > len(d.payload) {
		return nil, &MissingArgumentError{Field: field}
	}
	raw := d.payload[d.off : d.off+int(n)]
	d.off += total
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// FD pops the next fd from the ancillary queue in signature order.
func (d *Decoder) FD(field string) (int, error) {
	f, ok := d.fds.Pop()
	if !ok {
		return -1, ErrEmptyFDQueue
	}
	d.fdsRead++
	return f, nil
}

// FDsConsumed returns how many fds FD has popped so far.
func (d *Decoder) FDsConsumed() int { return d.fdsRead }

// FDQueue is an endpoint's ordered, FIFO ancillary file-descriptor queue
// (spec §3 "Ancillary queue"). A single queue instance is shared by every
// message decoded from one endpoint's inbound stream, because one
// recvmsg/readiness batch can carry the fds for several messages at once
// and decoders must drain them in the order their signatures list them.
type FDQueue struct{ fds []int }

// Push appends fds to the back of the queue, preserving arrival order.
func (q *FDQueue) Push(fds ...int) { q.fds = append(q.fds, fds...) }

// Pop removes and returns the front fd, or (-1, false) if empty.
func (q *FDQueue) Pop() (int, bool) {
	if len(q.fds) == 0 {
		return -1, false
	}
	f := q.fds[0]
	q.fds = q.fds[1:]
	return f, true
}

// Len reports how many fds are currently queued.
func (q *FDQueue) Len() int { return len(q.fds) }
