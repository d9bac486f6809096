// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wlpointer

import (
	"testing"

	"code.hybscloud.com/wlproxy/regid"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

type fakeSink struct{ frames [][]byte }

func (s *fakeSink) QueueMessage(frame []byte, fds []int) { s.frames = append(s.frames, frame) }

type fakeSurfaceLike struct{ id wire.ObjectID }

func (f fakeSurfaceLike) ObjectCore() *wlobject.Core { return &wlobject.Core{ServerID: f.id, ClientID: f.id} }

func TestSetCursorResolvesSurfaceToServerSideID(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 10
	clientReg := regid.NewClientRegistry(1)
	clientReg.Insert(5, fakeSurfaceLike{id: 60})
	out := &fakeSink{}
	sides := wlobject.Sides{ServerOut: out, ClientReg: clientReg}

	d := wire.NewDecoder(TrySendSetCursor(0, 1, 5, 2, 3)[wire.HeaderLen:], nil)
	if err := p.HandleRequest(OpSetCursor, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	d2 := wire.NewDecoder(out.frames[0][wire.HeaderLen:], nil)
	if _, err := d2.Uint32("serial"); err != nil {
		t.Fatalf("decode serial: %v", err)
	}
	gotSurface, err := d2.Object("surface")
	if err != nil || gotSurface != 60 {
		t.Fatalf("expected surface resolved to server id 60, got %d (%v)", gotSurface, err)
	}
}

func TestReleaseForwardsAndRetires(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 10
	out := &fakeSink{}
	sides := wlobject.Sides{ServerOut: out}

	if err := p.HandleRequest(OpRelease, wire.NewDecoder(nil, nil), sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if !p.ObjectCore().Destroyed {
		t.Fatal("expected object marked destroyed")
	}
}

func TestEnterResolvesSurfaceToClientSideID(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 10
	serverReg := regid.NewServerRegistry()
	serverReg.Insert(600, fakeSurfaceLike{id: 7})
	out := &fakeSink{}
	sides := wlobject.Sides{ClientOut: out, ServerReg: serverReg}

	d := wire.NewDecoder(TrySendEnter(0, 1, 600, 0, 0)[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpEnter, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	d2 := wire.NewDecoder(out.frames[0][wire.HeaderLen:], nil)
	if _, err := d2.Uint32("serial"); err != nil {
		t.Fatalf("decode serial: %v", err)
	}
	gotSurface, err := d2.Object("surface")
	if err != nil || gotSurface != 7 {
		t.Fatalf("expected surface resolved to client id 7, got %d (%v)", gotSurface, err)
	}
}

func TestMotionForwardsToClient(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 10
	out := &fakeSink{}
	sides := wlobject.Sides{ClientOut: out}

	d := wire.NewDecoder(TrySendMotion(0, 1000, wire.Fixed(0), wire.Fixed(0))[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpMotion, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected motion forwarded, got %d", len(out.frames))
	}
}

func TestFrameForwardsToClient(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 10
	out := &fakeSink{}
	sides := wlobject.Sides{ClientOut: out}

	d := wire.NewDecoder(TrySendFrame(0)[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpFrame, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected frame forwarded, got %d", len(out.frames))
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
