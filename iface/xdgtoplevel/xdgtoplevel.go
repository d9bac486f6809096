// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package xdgtoplevel implements xdg_toplevel: the top-level window role
// — title, sizing hints, and the maximize/fullscreen/minimize state
// requests, plus the compositor's configure/close events (spec §4.5).
package xdgtoplevel

import (
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceXdgToplevel
	Version   = 6
)

// Request opcodes.
const (
	OpDestroy         uint16 = 0
	OpSetParent       uint16 = 1
	OpSetTitle        uint16 = 2
	OpSetAppID        uint16 = 3
	OpShowWindowMenu  uint16 = 4
	OpMove            uint16 = 5
	OpResize          uint16 = 6
	OpSetMaxSize      uint16 = 7
	OpSetMinSize      uint16 = 8
	OpSetMaximized    uint16 = 9
	OpUnsetMaximized  uint16 = 10
	OpSetFullscreen   uint16 = 11
	OpUnsetFullscreen uint16 = 12
	OpSetMinimized    uint16 = 13
)

// Event opcodes.
const (
	OpConfigure uint16 = 0
	OpClose     uint16 = 1
)

// Handler is xdg_toplevel's trait.
type Handler interface {
	Destroy(sides wlobject.Sides) error
	SetParent(parent wire.ObjectID, sides wlobject.Sides) error
	SetTitle(title string, sides wlobject.Sides) error
	SetAppID(appID string, sides wlobject.Sides) error
	ShowWindowMenu(seat wire.ObjectID, serial uint32, x, y int32, sides wlobject.Sides) error
	Move(seat wire.ObjectID, serial uint32, sides wlobject.Sides) error
	Resize(seat wire.ObjectID, serial, edges uint32, sides wlobject.Sides) error
	SetMaxSize(width, height int32, sides wlobject.Sides) error
	SetMinSize(width, height int32, sides wlobject.Sides) error
	SetMaximized(sides wlobject.Sides) error
	UnsetMaximized(sides wlobject.Sides) error
	SetFullscreen(output wire.ObjectID, sides wlobject.Sides) error
	UnsetFullscreen(sides wlobject.Sides) error
	SetMinimized(sides wlobject.Sides) error
	Configure(width, height int32, states []byte, sides wlobject.Sides) error
	Close(sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for xdg_toplevel.
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

func (p *Proxy) ObjectCore() *wlobject.Core { return &p.core }
func (p *Proxy) Install(h Handler)          { p.handler.Install(h) }

func TrySendDestroy(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpDestroy)
}

func TrySendSetParent(target wire.ObjectID, parent wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.Object(parent)
	return e.Finish(target, OpSetParent)
}

func TrySendSetTitle(target wire.ObjectID, title string) []byte {
	e := wire.NewEncoder()
	e.String(title)
	return e.Finish(target, OpSetTitle)
}

func TrySendSetAppID(target wire.ObjectID, appID string) []byte {
	e := wire.NewEncoder()
	e.String(appID)
	return e.Finish(target, OpSetAppID)
}

func TrySendShowWindowMenu(target wire.ObjectID, seat wire.ObjectID, serial uint32, x, y int32) []byte {
	e := wire.NewEncoder()
	e.Object(seat)
	e.Uint32(serial)
	e.Int32(x)
	e.Int32(y)
	return e.Finish(target, OpShowWindowMenu)
}

func TrySendMove(target wire.ObjectID, seat wire.ObjectID, serial uint32) []byte {
	e := wire.NewEncoder()
	e.Object(seat)
	e.Uint32(serial)
	return e.Finish(target, OpMove)
}

func TrySendResize(target wire.ObjectID, seat wire.ObjectID, serial, edges uint32) []byte {
	e := wire.NewEncoder()
	e.Object(seat)
	e.Uint32(serial)
	e.Uint32(edges)
	return e.Finish(target, OpResize)
}

func trySendSize(target wire.ObjectID, opcode uint16, width, height int32) []byte {
	e := wire.NewEncoder()
	e.Int32(width)
	e.Int32(height)
	return e.Finish(target, opcode)
}

func TrySendSetMaxSize(target wire.ObjectID, width, height int32) []byte {
	return trySendSize(target, OpSetMaxSize, width, height)
}

func TrySendSetMinSize(target wire.ObjectID, width, height int32) []byte {
	return trySendSize(target, OpSetMinSize, width, height)
}

func trySendEmpty(target wire.ObjectID, opcode uint16) []byte {
	return wire.NewEncoder().Finish(target, opcode)
}

func TrySendSetMaximized(target wire.ObjectID) []byte   { return trySendEmpty(target, OpSetMaximized) }
func TrySendUnsetMaximized(target wire.ObjectID) []byte { return trySendEmpty(target, OpUnsetMaximized) }
func TrySendUnsetFullscreen(target wire.ObjectID) []byte {
	return trySendEmpty(target, OpUnsetFullscreen)
}
func TrySendSetMinimized(target wire.ObjectID) []byte { return trySendEmpty(target, OpSetMinimized) }

func TrySendSetFullscreen(target wire.ObjectID, output wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.Object(output)
	return e.Finish(target, OpSetFullscreen)
}

func TrySendConfigure(target wire.ObjectID, width, height int32, states []byte) []byte {
	e := wire.NewEncoder()
	e.Int32(width)
	e.Int32(height)
	e.Array(states)
	return e.Finish(target, OpConfigure)
}

func TrySendClose(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpClose)
}

// HandleRequest decodes a client->proxy xdg_toplevel request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpDestroy:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Destroy(sides) })
	case OpSetParent:
		parent, err := d.Object("parent")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetParent(parent, sides) })
	case OpSetTitle:
		title, err := d.String("title")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetTitle(title, sides) })
	case OpSetAppID:
		appID, err := d.String("app_id")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetAppID(appID, sides) })
	case OpShowWindowMenu:
		seat, err := d.Object("seat")
		if err != nil {
			return err
		}
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		x, err := d.Int32("x")
		if err != nil {
			return err
		}
		y, err := d.Int32("y")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.ShowWindowMenu(seat, serial, x, y, sides) })
	case OpMove:
		seat, err := d.Object("seat")
		if err != nil {
			return err
		}
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Move(seat, serial, sides) })
	case OpResize:
		seat, err := d.Object("seat")
		if err != nil {
			return err
		}
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		edges, err := d.Uint32("edges")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Resize(seat, serial, edges, sides) })
	case OpSetMaxSize:
		width, height, err := decodeSize(d)
		if err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetMaxSize(width, height, sides) })
	case OpSetMinSize:
		width, height, err := decodeSize(d)
		if err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetMinSize(width, height, sides) })
	case OpSetMaximized:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetMaximized(sides) })
	case OpUnsetMaximized:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.UnsetMaximized(sides) })
	case OpSetFullscreen:
		output, err := d.Object("output")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetFullscreen(output, sides) })
	case OpUnsetFullscreen:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.UnsetFullscreen(sides) })
	case OpSetMinimized:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetMinimized(sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

func decodeSize(d *wire.Decoder) (width, height int32, err error) {
	if width, err = d.Int32("width"); err != nil {
		return
	}
	if height, err = d.Int32("height"); err != nil {
		return
	}
	err = d.Finish()
	return
}

// HandleEvent decodes a server->proxy xdg_toplevel event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpConfigure:
		width, err := d.Int32("width")
		if err != nil {
			return err
		}
		height, err := d.Int32("height")
		if err != nil {
			return err
		}
		states, err := d.Array("states")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Configure(width, height, states, sides) })
	case OpClose:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Close(sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// DefaultHandler forwards every request/event verbatim, translating the
// object-typed arguments (parent toplevel, seat, fullscreen output)
// between ID spaces, and retires the object on destroy.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) forwardToServer(sides wlobject.Sides, frame []byte) {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(frame, nil)
	}
}

func (h DefaultHandler) forwardToClient(sides wlobject.Sides, frame []byte) {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(frame, nil)
	}
}

func (h DefaultHandler) Destroy(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendDestroy(core.ServerID))
	core.Destroyed = true
	return nil
}

func (h DefaultHandler) SetParent(parent wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetParent(core.ServerID, sides.ResolveServerID(parent)))
	return nil
}

func (h DefaultHandler) SetTitle(title string, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetTitle(core.ServerID, title))
	return nil
}

func (h DefaultHandler) SetAppID(appID string, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetAppID(core.ServerID, appID))
	return nil
}

func (h DefaultHandler) ShowWindowMenu(seat wire.ObjectID, serial uint32, x, y int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendShowWindowMenu(core.ServerID, sides.ResolveServerID(seat), serial, x, y))
	return nil
}

func (h DefaultHandler) Move(seat wire.ObjectID, serial uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendMove(core.ServerID, sides.ResolveServerID(seat), serial))
	return nil
}

func (h DefaultHandler) Resize(seat wire.ObjectID, serial, edges uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendResize(core.ServerID, sides.ResolveServerID(seat), serial, edges))
	return nil
}

func (h DefaultHandler) SetMaxSize(width, height int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetMaxSize(core.ServerID, width, height))
	return nil
}

func (h DefaultHandler) SetMinSize(width, height int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetMinSize(core.ServerID, width, height))
	return nil
}

func (h DefaultHandler) SetMaximized(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetMaximized(core.ServerID))
	return nil
}

func (h DefaultHandler) UnsetMaximized(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendUnsetMaximized(core.ServerID))
	return nil
}

func (h DefaultHandler) SetFullscreen(output wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetFullscreen(core.ServerID, sides.ResolveServerID(output)))
	return nil
}

func (h DefaultHandler) UnsetFullscreen(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendUnsetFullscreen(core.ServerID))
	return nil
}

func (h DefaultHandler) SetMinimized(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetMinimized(core.ServerID))
	return nil
}

func (h DefaultHandler) Configure(width, height int32, states []byte, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendConfigure(core.ClientID, width, height, states))
	return nil
}

func (h DefaultHandler) Close(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendClose(core.ClientID))
	return nil
}
