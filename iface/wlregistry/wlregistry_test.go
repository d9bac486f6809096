// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wlregistry

import (
	"testing"

	"code.hybscloud.com/wlproxy/iface/wlcompositor"
	"code.hybscloud.com/wlproxy/regid"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

type fakeSink struct {
	frames [][]byte
	fds    [][]int
}

func (s *fakeSink) QueueMessage(frame []byte, fds []int) {
	s.frames = append(s.frames, frame)
	s.fds = append(s.fds, fds)
}

func newSides(clientNumericID uint32) (wlobject.Sides, *fakeSink, *fakeSink, *regid.Registry, *regid.Registry) {
	clientReg := regid.NewClientRegistry(clientNumericID)
	serverReg := regid.NewServerRegistry()
	clientOut := &fakeSink{}
	serverOut := &fakeSink{}
	return wlobject.Sides{
		ClientOut:       clientOut,
		ClientReg:       clientReg,
		ClientNumericID: clientNumericID,
		ServerOut:       serverOut,
		ServerReg:       serverReg,
	}, clientOut, serverOut, clientReg, serverReg
}

func TestGlobalForwardsToClient(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 10
	sides, clientOut, _, _, _ := newSides(1)

	d := wire.NewDecoder(TrySendGlobal(0, 3, "wl_compositor", 6)[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpGlobal, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(clientOut.frames) != 1 {
		t.Fatalf("expected global forwarded, got %d frames", len(clientOut.frames))
	}
}

func TestBindMintsRecognizedInterface(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 10
	p.ObjectCore().ServerID = 11
	sides, _, serverOut, clientReg, serverReg := newSides(1)

	d := wire.NewDecoder(TrySendBind(0, 3, "wl_compositor", 6, 77)[wire.HeaderLen:], nil)
	if err := p.HandleRequest(OpBind, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}

	if serverReg.Len() != 1 {
		t.Fatalf("expected one server-side registration, got %d", serverReg.Len())
	}
	if clientReg.Len() != 1 {
		t.Fatalf("expected one client-side registration, got %d", clientReg.Len())
	}
	if len(serverOut.frames) != 1 {
		t.Fatalf("expected bind forwarded to server, got %d", len(serverOut.frames))
	}
}

func TestBindUnrecognizedInterfaceErrors(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 10
	sides, _, _, _, _ := newSides(1)

	d := wire.NewDecoder(TrySendBind(0, 3, "wl_subsurface", 1, 77)[wire.HeaderLen:], nil)
	if err := p.HandleRequest(OpBind, d, sides); err == nil {
		t.Fatal("expected bind to refuse an interface outside the catalog")
	}
}

func TestBindNullNewIDErrors(t *testing.T) {
	p := NewProxy(Version)
	sides, _, _, _, _ := newSides(1)
	e := wire.NewEncoder()
	e.Uint32(3)
	e.NewIDFull("wl_compositor", 6, 0)
	frame := e.Finish(0, OpBind)
	d := wire.NewDecoder(frame[wire.HeaderLen:], nil)
	if err := p.HandleRequest(OpBind, d, sides); err != wire.ErrNullNewID {
		t.Fatalf("got %v, want ErrNullNewID", err)
	}
}

func TestNewBoundProxyCompositor(t *testing.T) {
	obj, err := newBoundProxy("wl_compositor", 6)
	if err != nil {
		t.Fatalf("newBoundProxy: %v", err)
	}
	if _, ok := obj.(*wlcompositor.Proxy); !ok {
		t.Fatalf("got %T, want *wlcompositor.Proxy", obj)
	}
}
