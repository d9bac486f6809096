// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package endpoint owns one side's non-blocking Unix domain socket (spec
// §4.2 "Endpoint"): the inbound byte accumulator and its shared ancillary
// fd queue, the outbound byte and fd buffers, and the flush-queued
// scheduling bit. It slices out whole frames for dispatch and ships
// accumulated outbound bytes+fds together on Flush; it knows nothing
// about message semantics — that is dispatch's and iface/*'s job.
package endpoint

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/wlproxy/regid"
	"code.hybscloud.com/wlproxy/wire"
)

const (
	initialInBufCap = 4096
	// oobOneFD is the control-message overhead (cmsghdr + one int) SCM_RIGHTS
	// needs per fd, rounded up for alignment.
	oobOneFD = 24
)

// Endpoint is one side (a client connection, or the single shared
// compositor connection) of the proxy's relay.
type Endpoint struct {
	fd  int
	Reg *regid.Registry

	in    []byte
	inLen int
	inFDs *wire.FDQueue

	out         []byte
	outFDs      []int
	FlushQueued bool

	closed bool
}

// New wraps fd (already connected or accepted) as a non-blocking
// Endpoint backed by reg's ID registry.
func New(fd int, reg *regid.Registry) (*Endpoint, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("endpoint: set nonblocking: %w", err)
	}
	return &Endpoint{
		fd:    fd,
		Reg:   reg,
		in:    make([]byte, initialInBufCap),
		inFDs: &wire.FDQueue{},
	}, nil
}

// Fd returns the underlying socket descriptor, for Poll registration.
func (e *Endpoint) Fd() int { return e.fd }

// Closed reports whether Close has already run.
func (e *Endpoint) Closed() bool { return e.closed }

// Close releases the socket. Per spec §4.2 cancellation semantics, the
// caller — not Endpoint — is responsible for draining any in-flight
// outbound buffer best-effort first and marking owned objects destroyed;
// Close itself only tears down the file descriptor.
func (e *Endpoint) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return unix.Close(e.fd)
}

func (e *Endpoint) growIn() {
	grown := make([]byte, len(e.in)*2)
	copy(grown, e.in[:e.inLen])
	e.in = grown
}

// FillRead performs one non-blocking recvmsg, appending any bytes and
// ancillary fds received to the inbound accumulator. It returns
// iox.ErrWouldBlock when nothing was ready yet — the run loop's normal
// "try again after the next readiness signal" outcome — and io.EOF when
// the peer has closed its write side.
func (e *Endpoint) FillRead() error {
	if len(e.in)-e.inLen < wire.HeaderLen {
		e.growIn()
	}
	oob := make([]byte, oobOneFD*maxFDsPerRead)
	n, oobn, _, _, err := unix.Recvmsg(e.fd, e.in[e.inLen:], oob, 0)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return iox.ErrWouldBlock
		}
		return fmt.Errorf("endpoint: recvmsg: %w", err)
	}
	if n == 0 {
		return io.EOF
	}
	e.inLen += n
	if oobn > 0 {
		fds, err := parseRights(oob[:oobn])
		if err != nil {
			return fmt.Errorf("endpoint: parsing ancillary data: %w", err)
		}
		e.inFDs.Push(fds...)
	}
	return nil
}

// maxFDsPerRead bounds the ancillary buffer sized for one Recvmsg call;
// it mirrors config.Config.FDQueueLimit's default so a single batch never
// truncates SCM_RIGHTS data mid control-message.
const maxFDsPerRead = 28

func parseRights(oob []byte) ([]int, error) {
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, err
	}
	var fds []int
	for _, scm := range scms {
		if scm.Header.Level != unix.SOL_SOCKET || scm.Header.Type != unix.SCM_RIGHTS {
			continue
		}
		got, err := unix.ParseUnixRights(&scm)
		if err != nil {
			return nil, err
		}
		fds = append(fds, got...)
	}
	return fds, nil
}

// NextMessage reports whether a whole frame is buffered. If one is, it
// returns the target object ID, opcode, and payload (header stripped)
// and consumes the frame from the accumulator. The returned payload is a
// copy, not a slice of internal storage: consumeIn compacts the
// accumulator by shifting any following buffered bytes down over the
// just-returned frame's region, which would otherwise corrupt payload
// out from under the caller whenever a single read batch holds more
// than one frame.
func (e *Endpoint) NextMessage() (target wire.ObjectID, opcode uint16, payload []byte, ok bool, err error) {
	if e.inLen < wire.HeaderLen {
		return 0, 0, nil, false, nil
	}
	word0 := wire.ByteOrder.Uint32(e.in[0:4])
	word1 := wire.ByteOrder.Uint32(e.in[4:8])
	target, size, opcode := wire.SplitHeader(word0, word1)
	if size < wire.HeaderLen || size > wire.MaxMessageSize {
		return 0, 0, nil, false, wire.ErrInvalidFrameSize
	}
	if e.inLen < size {
		return 0, 0, nil, false, nil
	}
	payload = append([]byte(nil), e.in[wire.HeaderLen:size]...)
	e.consumeIn(size)
	return target, opcode, payload, true, nil
}

// FDs returns the endpoint's shared inbound ancillary fd queue, for
// constructing the wire.Decoder that parses a message NextMessage
// returned. It is the same instance across every message, since one read
// batch can carry fds belonging to several subsequent messages.
func (e *Endpoint) FDs() *wire.FDQueue { return e.inFDs }

func (e *Endpoint) consumeIn(n int) {
	remaining := e.inLen - n
	copy(e.in, e.in[n:e.inLen])
	e.inLen = remaining
}

// QueueMessage appends a fully-encoded frame (as returned by
// wire.Encoder.Finish) and its associated fds (wire.Encoder.FDs, in
// order) to the outbound buffer, and marks this endpoint flush-queued.
// The actual write happens on the next Flush, not synchronously — spec
// §4.2 "not flushed synchronously".
func (e *Endpoint) QueueMessage(frame []byte, fds []int) {
	e.out = append(e.out, frame...)
	e.outFDs = append(e.outFDs, fds...)
	e.FlushQueued = true
}

// Flush writes every accumulated outbound byte together with every
// accumulated fd, in the order they were enqueued (spec §4.2 flush
// contract). A partial socket write leaves the unsent tail in the
// outbound buffer and FlushQueued true so the next readiness cycle
// resumes; iox.ErrWouldBlock is returned in that case.
func (e *Endpoint) Flush() error {
	if len(e.out) == 0 {
		e.FlushQueued = false
		return nil
	}
	var oob []byte
	if len(e.outFDs) > 0 {
		oob = unix.UnixRights(e.outFDs...)
	}
	n, err := unix.SendmsgN(e.fd, e.out, oob, nil, 0)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return iox.ErrWouldBlock
		}
		return fmt.Errorf("endpoint: sendmsg: %w", err)
	}
	e.consumeOut(n)
	if len(e.out) > 0 {
		return iox.ErrWouldBlock
	}
	e.FlushQueued = false
	return nil
}

func (e *Endpoint) consumeOut(n int) {
	remaining := copy(e.out, e.out[n:])
	e.out = e.out[:remaining]
	if n > 0 {
		e.outFDs = nil
	}
}
