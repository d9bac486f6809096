// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proxy

import (
	"net"
	"path/filepath"
	"testing"

	"code.hybscloud.com/wlproxy/wire"
)

func TestCompositorSocketPathRequiresRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	if _, err := CompositorSocketPath(); err != ErrNoWaylandSocket {
		t.Fatalf("got %v, want ErrNoWaylandSocket", err)
	}
}

func TestCompositorSocketPathDefaultsDisplayName(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "")

	path, err := CompositorSocketPath()
	if err != nil {
		t.Fatalf("CompositorSocketPath: %v", err)
	}
	want := filepath.Join("/run/user/1000", "wayland-0")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestCompositorSocketPathHonorsAbsoluteDisplay(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "/tmp/custom-compositor.sock")

	path, err := CompositorSocketPath()
	if err != nil {
		t.Fatalf("CompositorSocketPath: %v", err)
	}
	if path != "/tmp/custom-compositor.sock" {
		t.Errorf("path = %q, want the absolute override unchanged", path)
	}
}

func TestListenSocketPathRequiresRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	if _, err := ListenSocketPath("wayland-1"); err != ErrNoWaylandSocket {
		t.Fatalf("got %v, want ErrNoWaylandSocket", err)
	}
}

func TestListenSocketPathJoinsRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	path, err := ListenSocketPath("wayland-1")
	if err != nil {
		t.Fatalf("ListenSocketPath: %v", err)
	}
	want := filepath.Join("/run/user/1000", "wayland-1")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestNewDialsCompositorAndListens(t *testing.T) {
	dir := t.TempDir()
	compositorPath := filepath.Join(dir, "compositor.sock")
	listenPath := filepath.Join(dir, "wayland-1")

	compositorLn, err := net.ListenUnix("unix", &net.UnixAddr{Name: compositorPath, Net: "unix"})
	if err != nil {
		t.Fatalf("ListenUnix: %v", err)
	}
	defer compositorLn.Close()
	accepted := make(chan struct{})
	go func() {
		conn, err := compositorLn.AcceptUnix()
		if err == nil {
			defer conn.Close()
		}
		close(accepted)
	}()

	p, err := New(compositorPath, listenPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()
	<-accepted

	if _, err := net.Dial("unix", listenPath); err != nil {
		t.Fatalf("dialing the proxy's own listen socket: %v", err)
	}
}

func TestNewSeedsServerDisplaySingleton(t *testing.T) {
	dir := t.TempDir()
	compositorPath := filepath.Join(dir, "compositor.sock")
	listenPath := filepath.Join(dir, "wayland-1")

	compositorLn, err := net.ListenUnix("unix", &net.UnixAddr{Name: compositorPath, Net: "unix"})
	if err != nil {
		t.Fatalf("ListenUnix: %v", err)
	}
	defer compositorLn.Close()
	go compositorLn.AcceptUnix()

	p, err := New(compositorPath, listenPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	obj, err := p.serverConn.Reg.Lookup(wire.DisplayObjectID)
	if err != nil {
		t.Fatalf("expected the server registry to have id 1 pre-bound: %v", err)
	}
	if obj.ObjectCore().ServerID != wire.DisplayObjectID {
		t.Errorf("ServerID = %d, want %d", obj.ObjectCore().ServerID, wire.DisplayObjectID)
	}
}

func TestNewReplacesStaleListenSocket(t *testing.T) {
	dir := t.TempDir()
	compositorPath := filepath.Join(dir, "compositor.sock")
	listenPath := filepath.Join(dir, "wayland-1")

	compositorLn, err := net.ListenUnix("unix", &net.UnixAddr{Name: compositorPath, Net: "unix"})
	if err != nil {
		t.Fatalf("ListenUnix: %v", err)
	}
	defer compositorLn.Close()
	go compositorLn.AcceptUnix()

	stale, err := net.ListenUnix("unix", &net.UnixAddr{Name: listenPath, Net: "unix"})
	if err != nil {
		t.Fatalf("ListenUnix stale: %v", err)
	}
	stale.Close()

	p, err := New(compositorPath, listenPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()
}

func TestNewFailsWhenCompositorUnreachable(t *testing.T) {
	dir := t.TempDir()
	if _, err := New(filepath.Join(dir, "missing.sock"), filepath.Join(dir, "wayland-1")); err == nil {
		t.Fatal("expected New to fail dialing a nonexistent compositor socket")
	}
}
