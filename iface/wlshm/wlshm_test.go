// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wlshm

import (
	"testing"

	"code.hybscloud.com/wlproxy/iface/wlshmpool"
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

func TestCreatePoolMintsPoolAndCarriesFD(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ServerID = 4

	clientReg := regid.NewClientRegistry(1)
	serverReg := regid.NewServerRegistry()
	serverOut := &fakeSink{}
	sides := wlobject.Sides{ClientReg: clientReg, ClientNumericID: 1, ServerOut: serverOut, ServerReg: serverReg}

	q := &wire.FDQueue{}
	q.Push(17)
	e := wire.NewEncoder()
	e.NewIDArg(88)
	e.FD(0)
	e.Int32(4096)
	frame := e.Finish(0, OpCreatePool)
	d := wire.NewDecoder(frame[wire.HeaderLen:], q)

	if err := p.HandleRequest(OpCreatePool, d, sides); err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	obj, err := clientReg.Lookup(88)
	if err != nil {
		t.Fatalf("expected pool bound client-side: %v", err)
	}
	if _, ok := obj.(*wlshmpool.Proxy); !ok {
		t.Fatalf("got %T, want *wlshmpool.Proxy", obj)
	}
	if len(serverOut.frames) != 1 {
		t.Fatalf("expected create_pool forwarded, got %d frames", len(serverOut.frames))
	}
	if len(serverOut.fds) != 1 || len(serverOut.fds[0]) != 1 || serverOut.fds[0][0] != 17 {
		t.Fatalf("expected fd 17 to travel with the forwarded frame, got %v", serverOut.fds)
	}
}

func TestFormatForwardsToClient(t *testing.T) {
	p := NewProxy(Version)
	p.ObjectCore().ClientID = 9
	clientOut := &fakeSink{}
	sides := wlobject.Sides{ClientOut: clientOut}

	d := wire.NewDecoder(TrySendFormat(0, 1)[wire.HeaderLen:], nil)
	if err := p.HandleEvent(OpFormat, d, sides); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(clientOut.frames) != 1 {
		t.Fatalf("expected format forwarded, got %d", len(clientOut.frames))
	}
}
