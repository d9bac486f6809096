// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xdgtoplevel

import (
	"testing"

	"code.hybscloud.com/wlproxy/regid"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

type fakeSink struct{ frames [][]byte }

func (s *fakeSink) QueueMessage(frame []byte, fds []int) { s.frames = append(s.frames, frame) }

type fakeObjectLike struct {
	serverID wire.ObjectID
	clientID wire.ObjectID
}

func (f fakeObjectLike) ObjectCore() *wlobject.Core {
	return &wlobject.Core{ServerID: f.serverID, ClientID: f.clientID}
}

func TestDestroyForwardsAndRetires(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 8
	out := &fakeSink{}
	sides := wlobject.Sides{ServerOut: out}

	if err := p.HandleRequest(OpDestroy, wire.NewDecoder(nil, nil), sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected destroy forwarded, got %d", len(out.frames))
	}
	if !p.ObjectCore().Destroyed {
		t.Fatal("expected object marked destroyed")
	}
}

func TestSetParentResolvesToServerSideID(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 8
	clientReg := regid.NewClientRegistry(1)
	clientReg.Insert(5, fakeObjectLike{serverID: 61})
	out := &fakeSink{}
	sides := wlobject.Sides{ServerOut: out, ClientReg: clientReg}

	d := wire.NewDecoder(TrySendSetParent(0, 5)[wire.HeaderLen:], nil)
	if err := p.HandleRequest(OpSetParent, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	gotParent, err := wire.NewDecoder(out.frames[0][wire.HeaderLen:], nil).Object("parent")
	if err != nil || gotParent != 61 {
		t.Fatalf("expected parent resolved to server id 61, got %d (%v)", gotParent, err)
	}
}

func TestSetTitleForwards(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 8
	out := &fakeSink{}
	sides := wlobject.Sides{ServerOut: out}

	d := wire.NewDecoder(TrySendSetTitle(0, "scratchpad")[wire.HeaderLen:], nil)
	if err := p.HandleRequest(OpSetTitle, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected set_title forwarded, got %d", len(out.frames))
	}
}

func TestMoveResolvesSeatToServerSideID(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 8
	clientReg := regid.NewClientRegistry(1)
	clientReg.Insert(9, fakeObjectLike{serverID: 90})
	out := &fakeSink{}
	sides := wlobject.Sides{ServerOut: out, ClientReg: clientReg}

	d := wire.NewDecoder(TrySendMove(0, 9, 3)[wire.HeaderLen:], nil)
	if err := p.HandleRequest(OpMove, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	d2 := wire.NewDecoder(out.frames[0][wire.HeaderLen:], nil)
	gotSeat, err := d2.Object("seat")
	if err != nil || gotSeat != 90 {
		t.Fatalf("expected seat resolved to server id 90, got %d (%v)", gotSeat, err)
	}
}

func TestSetMaximizedForwards(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 8
	out := &fakeSink{}
	sides := wlobject.Sides{ServerOut: out}

	if err := p.HandleRequest(OpSetMaximized, wire.NewDecoder(nil, nil), sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected set_maximized forwarded, got %d", len(out.frames))
	}
}

func TestConfigureForwardsToClient(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 8
	out := &fakeSink{}
	sides := wlobject.Sides{ClientOut: out}

	d := wire.NewDecoder(TrySendConfigure(0, 800, 600, nil)[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpConfigure, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected configure forwarded, got %d", len(out.frames))
	}
}

func TestCloseForwardsToClient(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 8
	out := &fakeSink{}
	sides := wlobject.Sides{ClientOut: out}

	d := wire.NewDecoder(TrySendClose(0)[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpClose, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(out.frames) != 1 {
		t.Fatalf("expected close forwarded, got %d", len(out.frames))
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
