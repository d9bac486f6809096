// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wlseat

import (
	"testing"

	"code.hybscloud.com/wlproxy/iface/wlkeyboard"
	"code.hybscloud.com/wlproxy/iface/wlpointer"
	"code.hybscloud.com/wlproxy/regid"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

type fakeSink struct{ frames [][]byte }

func (s *fakeSink) QueueMessage(frame []byte, fds []int) { s.frames = append(s.frames, frame) }

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

func TestGetPointerMintsChild(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 1
	sides, _, serverOut, clientReg, serverReg := newSides(2)

	e := wire.NewEncoder()
	e.NewIDArg(40)
	frame := e.Finish(0, OpGetPointer)
	d := wire.NewDecoder(frame[wire.HeaderLen:], nil)

	if err := p.HandleRequest(OpGetPointer, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	obj, err := clientReg.Lookup(40)
	if err != nil {
		t.Fatalf("expected pointer bound client-side: %v", err)
	}
	if _, ok := obj.(*wlpointer.Proxy); !ok {
		t.Fatalf("got %T, want *wlpointer.Proxy", obj)
	}
	if serverReg.Len() != 1 || len(serverOut.frames) != 1 {
		t.Fatalf("expected server-side registration and forward, got reg=%d frames=%d", serverReg.Len(), len(serverOut.frames))
	}
}

func TestGetKeyboardMintsChild(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 1
	sides, _, serverOut, clientReg, serverReg := newSides(2)

	e := wire.NewEncoder()
	e.NewIDArg(41)
	frame := e.Finish(0, OpGetKeyboard)
	d := wire.NewDecoder(frame[wire.HeaderLen:], nil)

	if err := p.HandleRequest(OpGetKeyboard, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	obj, err := clientReg.Lookup(41)
	if err != nil {
		t.Fatalf("expected keyboard bound client-side: %v", err)
	}
	if _, ok := obj.(*wlkeyboard.Proxy); !ok {
		t.Fatalf("got %T, want *wlkeyboard.Proxy", obj)
	}
	if serverReg.Len() != 1 || len(serverOut.frames) != 1 {
		t.Fatalf("expected server-side registration and forward, got reg=%d frames=%d", serverReg.Len(), len(serverOut.frames))
	}
}

func TestGetTouchIsRefused(t *testing.T) {
	p := NewProxy(Version)
	sides, _, _, _, _ := newSides(2)

	e := wire.NewEncoder()
	e.NewIDArg(42)
	frame := e.Finish(0, OpGetTouch)
	d := wire.NewDecoder(frame[wire.HeaderLen:], nil)

	if err := p.HandleRequest(OpGetTouch, d, sides); err == nil {
		t.Fatal("expected get_touch to be refused: wl_touch is unmodeled")
	}
}

func TestReleaseForwardsAndRetires(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 1
	out := &fakeSink{}
	sides := wlobject.Sides{ServerOut: out}

	if err := p.HandleRequest(OpRelease, wire.NewDecoder(nil, nil), sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected release forwarded, got %d", len(out.frames))
	}
	if !p.ObjectCore().Destroyed {
		t.Fatal("expected object marked destroyed")
	}
}

func TestCapabilitiesForwardsToClient(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 1
	out := &fakeSink{}
	sides := wlobject.Sides{ClientOut: out}

	d := wire.NewDecoder(TrySendCapabilities(0, CapabilityPointer|CapabilityKeyboard)[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpCapabilities, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected capabilities forwarded, got %d", len(out.frames))
	}
}

func TestNameForwardsToClient(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 1
	out := &fakeSink{}
	sides := wlobject.Sides{ClientOut: out}

	d := wire.NewDecoder(TrySendName(0, "seat0")[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpName, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected name forwarded, got %d", len(out.frames))
	}
}
