// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package proxy wires the run loop to two kinds of UNIX sockets: the
// single outbound connection to the real compositor (spec §9's "one
// server endpoint shared by all clients") and the listening socket new
// client connections arrive on (spec §6). It owns process-level state
// the lower packages deliberately don't: the listening path, the
// per-client registry lifecycle, and wl_display bootstrap.
package proxy

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"code.hybscloud.com/wlproxy/dispatch"
	"code.hybscloud.com/wlproxy/endpoint"
	"code.hybscloud.com/wlproxy/iface/wldisplay"
	"code.hybscloud.com/wlproxy/regid"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlog"
)

// ErrNoWaylandSocket means $XDG_RUNTIME_DIR is unset, so no compositor
// socket path could be resolved.
var ErrNoWaylandSocket = fmt.Errorf("proxy: XDG_RUNTIME_DIR not set")

// Proxy owns the run loop, the single upstream compositor connection,
// and every currently-accepted client connection.
type Proxy struct {
	loop       *dispatch.Loop
	listener   *net.UnixListener
	serverConn *endpoint.Endpoint
	nextClient uint32

	OnAcceptError func(err error)
	OnClientError func(clientID uint32, err error)
}

// CompositorSocketPath resolves $XDG_RUNTIME_DIR/$WAYLAND_DISPLAY the
// way a Wayland client library does (gogpu-gogpu's display.go), since
// this proxy dials the real compositor using the exact same convention
// every other client on the system already honors.
func CompositorSocketPath() (string, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", ErrNoWaylandSocket
	}
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	return filepath.Join(runtimeDir, display), nil
}

// ListenSocketPath resolves $XDG_RUNTIME_DIR/<name>, the path this
// proxy's own listening socket is created at — the address proxied
// clients should dial instead of the real compositor socket.
func ListenSocketPath(name string) (string, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", ErrNoWaylandSocket
	}
	return filepath.Join(runtimeDir, name), nil
}

// New dials the real compositor at compositorSocketPath and listens for
// proxied clients at listenSocketPath, replacing any stale socket file
// left behind by a previous run.
func New(compositorSocketPath, listenSocketPath string) (*Proxy, error) {
	serverFD, err := dialUnix(compositorSocketPath)
	if err != nil {
		return nil, fmt.Errorf("proxy: dialing compositor: %w", err)
	}
	serverReg := regid.NewServerRegistry()
	serverEP, err := endpoint.New(serverFD, serverReg)
	if err != nil {
		unix.Close(serverFD)
		return nil, fmt.Errorf("proxy: wrapping compositor connection: %w", err)
	}

	// ID 1 is permanently bound to the display singleton on every wire
	// (spec §3); the compositor addresses delete_id and error to it
	// unprompted, so it must exist in serverReg before the first message
	// ever arrives, not only once some client binds its own copy.
	serverDisplay := wldisplay.NewProxy(wldisplay.Version)
	serverDisplay.ObjectCore().ServerID = wire.DisplayObjectID
	serverReg.Insert(wire.DisplayObjectID, serverDisplay)

	if err := os.Remove(listenSocketPath); err != nil && !os.IsNotExist(err) {
		serverEP.Close()
		return nil, fmt.Errorf("proxy: removing stale socket: %w", err)
	}
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: listenSocketPath, Net: "unix"})
	if err != nil {
		serverEP.Close()
		return nil, fmt.Errorf("proxy: listening on %s: %w", listenSocketPath, err)
	}

	loop := dispatch.NewLoop()
	loop.SetServer(&dispatch.Peer{Endpoint: serverEP})

	return &Proxy{loop: loop, listener: ln, serverConn: serverEP}, nil
}

// dialUnix connects to path and returns the raw, non-blocking-capable
// file descriptor endpoint.New wraps — grounded on gogpu-gogpu's
// net.Dial("unix", ...) + (*net.UnixConn).File() pattern for obtaining
// the fd sendmsg/recvmsg with SCM_RIGHTS needs direct access to.
func dialUnix(path string) (int, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return 0, err
	}
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		conn.Close()
		return 0, fmt.Errorf("proxy: %s is not a unix socket", path)
	}
	file, err := unixConn.File()
	if err != nil {
		conn.Close()
		return 0, err
	}
	// (*net.UnixConn).File dup()s the descriptor; the original conn (and
	// its dup) can be released once ownership of file's fd is taken.
	fd := int(file.Fd())
	conn.Close()
	return fd, nil
}

// AcceptLoop blocks accepting client connections until the listener is
// closed, registering each one with the run loop as it arrives. Run it
// in its own goroutine; RunOnce (called from a separate goroutine or
// the same process's run loop) picks up newly added peers on its next
// cycle since Loop's peer set is read fresh each RunOnce.
func (p *Proxy) AcceptLoop() {
	for {
		conn, err := p.listener.AcceptUnix()
		if err != nil {
			if p.OnAcceptError != nil {
				p.OnAcceptError(err)
			}
			return
		}
		if err := p.acceptClient(conn); err != nil {
			conn.Close()
			if p.OnAcceptError != nil {
				p.OnAcceptError(err)
			}
		}
	}
}

func (p *Proxy) acceptClient(conn *net.UnixConn) error {
	file, err := conn.File()
	if err != nil {
		return err
	}
	fd := int(file.Fd())
	conn.Close()

	clientID := atomic.AddUint32(&p.nextClient, 1)
	// sessionID correlates log lines across this connection's lifetime:
	// clientID counts up from 1 in every proxy run, so the same number
	// recurs across runs that share one log stream, while sessionID is
	// unique to this connection.
	sessionID := uuid.New()
	reg := regid.NewClientRegistry(clientID)
	ep, err := endpoint.New(fd, reg)
	if err != nil {
		unix.Close(fd)
		return err
	}

	display := wldisplay.NewProxy(wldisplay.Version)
	display.ObjectCore().ClientID = wire.DisplayObjectID
	display.ObjectCore().OwnerClientID = clientID
	reg.Insert(wire.DisplayObjectID, display)

	wlog.WithConnection(clientID, sessionID).Info().Msg("client connected")

	peer := &dispatch.Peer{
		Endpoint: ep,
		ClientID: clientID,
		OnFatal: func(peer *dispatch.Peer, ferr error) {
			p.loop.RemoveClient(clientID)
			peer.Endpoint.Close()
			wlog.WithConnection(clientID, sessionID).Warn().Err(ferr).Msg("client connection closed")
			if p.OnClientError != nil {
				p.OnClientError(clientID, ferr)
			}
		},
	}
	p.loop.AddClient(peer)
	return nil
}

// RunOnce executes one dispatch cycle; see dispatch.Loop.RunOnce.
func (p *Proxy) RunOnce(timeoutMillis int) error { return p.loop.RunOnce(timeoutMillis) }

// Close tears down the listener and the compositor connection. Already
// accepted client connections are left for their own OnFatal paths.
func (p *Proxy) Close() error {
	lerr := p.listener.Close()
	serr := p.serverConn.Close()
	if lerr != nil {
		return lerr
	}
	return serr
}
