// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wldisplay

import (
	"testing"

	"code.hybscloud.com/wlproxy/iface/wlcallback"
	"code.hybscloud.com/wlproxy/iface/wlregistry"
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

func TestSyncMintsCallbackOnBothSides(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = wire.DisplayObjectID
	p.ObjectCore().ServerID = wire.DisplayObjectID

	sides, _, serverOut, clientReg, serverReg := newSides(7)

	d := wire.NewDecoder(TrySendSync(0, 55)[wire.HeaderLen:], nil)
	if err := p.HandleRequest(OpSync, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}

	obj, err := clientReg.Lookup(55)
	if err != nil {
		t.Fatalf("expected callback bound on client side: %v", err)
	}
	if _, ok := obj.(*wlcallback.Proxy); !ok {
		t.Fatalf("expected *wlcallback.Proxy, got %T", obj)
	}
	if len(serverOut.frames) != 1 {
		t.Fatalf("expected one forwarded sync frame, got %d", len(serverOut.frames))
	}
	if serverReg.Len() != 1 {
		t.Fatalf("expected one object registered server-side, got %d", serverReg.Len())
	}
}

func TestGetRegistryMintsRegistryOnBothSides(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = wire.DisplayObjectID
	p.ObjectCore().ServerID = wire.DisplayObjectID

	sides, _, serverOut, clientReg, _ := newSides(7)

	d := wire.NewDecoder(TrySendGetRegistry(0, 60)[wire.HeaderLen:], nil)
	if err := p.HandleRequest(OpGetRegistry, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	obj, err := clientReg.Lookup(60)
	if err != nil {
		t.Fatalf("expected registry bound on client side: %v", err)
	}
	if _, ok := obj.(*wlregistry.Proxy); !ok {
		t.Fatalf("expected *wlregistry.Proxy, got %T", obj)
	}
	if len(serverOut.frames) != 1 {
		t.Fatalf("expected one forwarded get_registry frame, got %d", len(serverOut.frames))
	}
}

// TestDeleteIDRetranslatesAcrossRegistries exercises the delete_id special
// case: the server names an object by its server-side ID, but the client
// must be told about the deletion using the client-side ID it knows the
// object by.
func TestDeleteIDRetranslatesAcrossRegistries(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = wire.DisplayObjectID
	p.ObjectCore().ServerID = wire.DisplayObjectID

	sides, clientOut, _, clientReg, serverReg := newSides(7)

	serverChildID := wire.ObjectID(wire.ServerIDRangeStart)
	child := wlcallback.NewProxy(1)
	child.ObjectCore().ClientID = 55
	child.ObjectCore().ServerID = serverChildID
	clientReg.Insert(55, child)
	serverReg.Insert(serverChildID, child)

	d := wire.NewDecoder(TrySendDeleteID(0, serverChildID)[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpDeleteID, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if _, err := serverReg.Lookup(serverChildID); err == nil {
		t.Fatal("expected server registry entry to be removed")
	}
	if _, err := clientReg.Lookup(55); err == nil {
		t.Fatal("expected client registry entry to be removed")
	}
	if len(clientOut.frames) != 1 {
		t.Fatalf("expected one delete_id forwarded to the client, got %d", len(clientOut.frames))
	}
	target, _, opcode := wire.SplitHeader(wire.ByteOrder.Uint32(clientOut.frames[0][0:4]), wire.ByteOrder.Uint32(clientOut.frames[0][4:8]))
	if target != wire.DisplayObjectID || opcode != OpDeleteID {
		t.Fatalf("unexpected header: target=%d opcode=%d", target, opcode)
	}
	gotID, err := wire.NewDecoder(clientOut.frames[0][wire.HeaderLen:], nil).Uint32("id")
	if err != nil || wire.ObjectID(gotID) != 55 {
		t.Fatalf("expected delete_id to carry the client-side id 55, got %d (%v)", gotID, err)
	}
	if !child.ObjectCore().Destroyed {
		t.Fatal("expected the deleted object's core to be marked destroyed")
	}
}

// TestDeleteIDRoutesByRetiredObjectOwnerNotDisplayOwner covers the shared
// server-side display: it has no owning client of its own (sides built
// for it carry no ClientOut/ClientReg), so DeleteID must fall back to
// ClientByOwner, keyed by the retired child's own OwnerClientID, to
// reach the right connection.
func TestDeleteIDRoutesByRetiredObjectOwnerNotDisplayOwner(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = wire.DisplayObjectID

	serverReg := regid.NewServerRegistry()
	ownerClientReg := regid.NewClientRegistry(7)
	ownerOut := &fakeSink{}

	serverChildID := wire.ObjectID(wire.ServerIDRangeStart)
	child := wlcallback.NewProxy(1)
	child.ObjectCore().ClientID = 55
	child.ObjectCore().ServerID = serverChildID
	child.ObjectCore().OwnerClientID = 7
	ownerClientReg.Insert(55, child)
	serverReg.Insert(serverChildID, child)

	sides := wlobject.Sides{
		ServerReg: serverReg,
		ClientByOwner: func(ownerClientID uint32) (wlobject.OutboundSink, wlobject.Resolver, bool) {
			if ownerClientID != 7 {
				return nil, nil, false
			}
			return ownerOut, ownerClientReg, true
		},
	}

	d := wire.NewDecoder(TrySendDeleteID(0, serverChildID)[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpDeleteID, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if _, err := ownerClientReg.Lookup(55); err == nil {
		t.Fatal("expected the owning client's registry entry to be removed")
	}
	if len(ownerOut.frames) != 1 {
		t.Fatalf("expected one delete_id forwarded to the owning client, got %d", len(ownerOut.frames))
	}
	target, _, opcode := wire.SplitHeader(wire.ByteOrder.Uint32(ownerOut.frames[0][0:4]), wire.ByteOrder.Uint32(ownerOut.frames[0][4:8]))
	if target != wire.DisplayObjectID || opcode != OpDeleteID {
		t.Fatalf("unexpected header: target=%d opcode=%d", target, opcode)
	}
}

func TestDeleteIDUnknownServerObjectIsANoop(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = wire.DisplayObjectID

	sides, clientOut, _, _, _ := newSides(7)
	d := wire.NewDecoder(TrySendDeleteID(0, wire.ObjectID(wire.ServerIDRangeStart+1))[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpDeleteID, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(clientOut.frames) != 0 {
		t.Fatalf("expected no forward for an unknown server object, got %d", len(clientOut.frames))
	}
}
