// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xdgsurface

import (
	"testing"

	"code.hybscloud.com/wlproxy/iface/xdgtoplevel"
	"code.hybscloud.com/wlproxy/regid"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

type fakeSink struct{ frames [][]byte }

func (s *fakeSink) QueueMessage(frame []byte, fds []int) { s.frames = append(s.frames, frame) }

func TestDestroyForwardsAndRetires(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 7
	out := &fakeSink{}
	sides := wlobject.Sides{ServerOut: out}

	if err := p.HandleRequest(OpDestroy, wire.NewDecoder(nil, nil), sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if !p.ObjectCore().Destroyed {
		t.Fatal("expected object marked destroyed")
	}
}

func TestGetToplevelMintsChild(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 7
	clientReg := regid.NewClientRegistry(1)
	serverReg := regid.NewServerRegistry()
	serverOut := &fakeSink{}
	sides := wlobject.Sides{ClientReg: clientReg, ClientNumericID: 1, ServerOut: serverOut, ServerReg: serverReg}

	e := wire.NewEncoder()
	e.NewIDArg(25)
	frame := e.Finish(0, OpGetToplevel)
	d := wire.NewDecoder(frame[wire.HeaderLen:], nil)

	if err := p.HandleRequest(OpGetToplevel, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	obj, err := clientReg.Lookup(25)
	if err != nil {
		t.Fatalf("expected toplevel bound client-side: %v", err)
	}
	if _, ok := obj.(*xdgtoplevel.Proxy); !ok {
		t.Fatalf("got %T, want *xdgtoplevel.Proxy", obj)
	}
	if serverReg.Len() != 1 || len(serverOut.frames) != 1 {
		t.Fatalf("expected server-side registration and forward, got reg=%d frames=%d", serverReg.Len(), len(serverOut.frames))
	}
}

func TestGetPopupIsRefused(t *testing.T) {
	p := NewProxy(Version)
	sides := wlobject.Sides{}

	e := wire.NewEncoder()
	e.NewIDArg(26)
	e.Object(1)
	e.Object(2)
	frame := e.Finish(0, OpGetPopup)
	d := wire.NewDecoder(frame[wire.HeaderLen:], nil)

	if err := p.HandleRequest(OpGetPopup, d, sides); err == nil {
		t.Fatal("expected get_popup to be refused: xdg_popup is unmodeled")
	}
}

func TestSetWindowGeometryForwards(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 7
	out := &fakeSink{}
	sides := wlobject.Sides{ServerOut: out}

	d := wire.NewDecoder(TrySendSetWindowGeometry(0, 0, 0, 800, 600)[wire.HeaderLen:], nil)
	if err := p.HandleRequest(OpSetWindowGeometry, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected set_window_geometry forwarded, got %d", len(out.frames))
	}
}

func TestAckConfigureForwards(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 7
	out := &fakeSink{}
	sides := wlobject.Sides{ServerOut: out}

	d := wire.NewDecoder(TrySendAckConfigure(0, 9)[wire.HeaderLen:], nil)
	if err := p.HandleRequest(OpAckConfigure, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected ack_configure forwarded, got %d", len(out.frames))
	}
}

func TestConfigureForwardsToClient(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 7
	out := &fakeSink{}
	sides := wlobject.Sides{ClientOut: out}

	d := wire.NewDecoder(TrySendConfigure(0, 9)[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpConfigure, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected configure forwarded, got %d", len(out.frames))
	}
}

func TestUnknownRequestOpcode(t *testing.T) {
	p := NewProxy(Version)
	if err := p.HandleRequest(99, wire.NewDecoder(nil, nil), wlobject.Sides{}); err == nil {
		t.Fatal("expected UnknownMessageIDError")
	} else if _, ok := err.(*wire.UnknownMessageIDError); !ok {
		t.Fatalf("got %T, want *wire.UnknownMessageIDError", err)
	}
}
