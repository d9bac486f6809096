// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlcallback implements the wl_callback interface: a one-shot
// reply object with no requests and a single event. Once its done event
// has been forwarded, the object is retired (spec §4.5).
package wlcallback

import (
	"fmt"

	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlCallback
	Version   = 1
)

// Event opcode.
const OpDone uint16 = 0

// DoneSince is the version wl_callback.done has existed since.
const DoneSince uint32 = 1

// Handler is wl_callback's single-method trait.
type Handler interface {
	Done(callbackData uint32, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_callback.
type Proxy struct {
	core    wlobject.Core
	handler wlobject.HandlerSlot[Handler]
}

// NewProxy returns a Proxy with DefaultHandler installed.
func NewProxy(version uint32) *Proxy {
	p := &Proxy{core: wlobject.NewCore(Interface, version)}
	p.handler = wlobject.NewHandlerSlot[Handler](DefaultHandler{proxy: p})
	return p
}

// ObjectCore satisfies wlobject.Proxy.
func (p *Proxy) ObjectCore() *wlobject.Core { return &p.core }

// Install replaces the active handler, e.g. for a policy plug-in that
// wants to observe the reply without disabling the one-shot retirement.
func (p *Proxy) Install(h Handler) { p.handler.Install(h) }

// TrySendDone encodes the done event frame addressed to target.
func TrySendDone(target wire.ObjectID, callbackData uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(callbackData)
	return e.Finish(target, OpDone)
}

// HandleEvent decodes a server->proxy wl_callback event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpDone:
		v, err := d.Uint32("callback_data")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Done(v, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleRequest always fails: wl_callback defines no requests.
func (p *Proxy) HandleRequest(opcode uint16, _ *wire.Decoder, _ wlobject.Sides) error {
	return fmt.Errorf("wlcallback: interface has no requests, got opcode %d", opcode)
}

// DefaultHandler forwards done to the owning client and retires the
// object — the one-shot callback lifecycle spec §4.5 describes.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) Done(callbackData uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendDone(core.ClientID, callbackData), nil)
	}
	core.Destroyed = true
	return nil
}
