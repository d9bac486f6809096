// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlpointer implements wl_pointer: pointer motion, button, and
// scroll-axis events, plus the client's cursor-surface request (spec
// §4.5). set_cursor's surface argument needs ID translation the way
// wl_surface's object-typed arguments do.
package wlpointer

import (
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlPointer
	Version   = 9
)

// Request opcodes.
const (
	OpSetCursor uint16 = 0
	OpRelease   uint16 = 1
)

// Event opcodes.
const (
	OpEnter        uint16 = 0
	OpLeave        uint16 = 1
	OpMotion       uint16 = 2
	OpButton       uint16 = 3
	OpAxis         uint16 = 4
	OpFrame        uint16 = 5
	OpAxisSource   uint16 = 6
	OpAxisStop     uint16 = 7
	OpAxisDiscrete uint16 = 8
)

const (
	ReleaseSince      uint32 = 3
	FrameSince        uint32 = 5
	AxisSourceSince   uint32 = 5
	AxisStopSince     uint32 = 5
	AxisDiscreteSince uint32 = 5
)

// Handler is wl_pointer's trait.
type Handler interface {
	SetCursor(serial uint32, surface wire.ObjectID, hotspotX, hotspotY int32, sides wlobject.Sides) error
	Release(sides wlobject.Sides) error
	Enter(serial uint32, surface wire.ObjectID, surfaceX, surfaceY wire.Fixed, sides wlobject.Sides) error
	Leave(serial uint32, surface wire.ObjectID, sides wlobject.Sides) error
	Motion(time uint32, surfaceX, surfaceY wire.Fixed, sides wlobject.Sides) error
	Button(serial, time, button, state uint32, sides wlobject.Sides) error
	Axis(time, axis uint32, value wire.Fixed, sides wlobject.Sides) error
	Frame(sides wlobject.Sides) error
	AxisSource(axisSource uint32, sides wlobject.Sides) error
	AxisStop(time, axis uint32, sides wlobject.Sides) error
	AxisDiscrete(axis uint32, discrete int32, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_pointer.
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

func TrySendSetCursor(target wire.ObjectID, serial uint32, surface wire.ObjectID, hotspotX, hotspotY int32) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	e.Object(surface)
	e.Int32(hotspotX)
	e.Int32(hotspotY)
	return e.Finish(target, OpSetCursor)
}

func TrySendRelease(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpRelease)
}

func TrySendEnter(target wire.ObjectID, serial uint32, surface wire.ObjectID, surfaceX, surfaceY wire.Fixed) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	e.Object(surface)
	e.FixedArg(surfaceX)
	e.FixedArg(surfaceY)
	return e.Finish(target, OpEnter)
}

func TrySendLeave(target wire.ObjectID, serial uint32, surface wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	e.Object(surface)
	return e.Finish(target, OpLeave)
}

func TrySendMotion(target wire.ObjectID, time uint32, surfaceX, surfaceY wire.Fixed) []byte {
	e := wire.NewEncoder()
	e.Uint32(time)
	e.FixedArg(surfaceX)
	e.FixedArg(surfaceY)
	return e.Finish(target, OpMotion)
}

func TrySendButton(target wire.ObjectID, serial, time, button, state uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	e.Uint32(time)
	e.Uint32(button)
	e.Uint32(state)
	return e.Finish(target, OpButton)
}

func TrySendAxis(target wire.ObjectID, time, axis uint32, value wire.Fixed) []byte {
	e := wire.NewEncoder()
	e.Uint32(time)
	e.Uint32(axis)
	e.FixedArg(value)
	return e.Finish(target, OpAxis)
}

func TrySendFrame(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpFrame)
}

func TrySendAxisSource(target wire.ObjectID, axisSource uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(axisSource)
	return e.Finish(target, OpAxisSource)
}

func TrySendAxisStop(target wire.ObjectID, time, axis uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(time)
	e.Uint32(axis)
	return e.Finish(target, OpAxisStop)
}

func TrySendAxisDiscrete(target wire.ObjectID, axis uint32, discrete int32) []byte {
	e := wire.NewEncoder()
	e.Uint32(axis)
	e.Int32(discrete)
	return e.Finish(target, OpAxisDiscrete)
}

// HandleRequest decodes a client->proxy wl_pointer request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpSetCursor:
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		surface, err := d.Object("surface")
		if err != nil {
			return err
		}
		hx, err := d.Int32("hotspot_x")
		if err != nil {
			return err
		}
		hy, err := d.Int32("hotspot_y")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetCursor(serial, surface, hx, hy, sides) })
	case OpRelease:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Release(sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent decodes a server->proxy wl_pointer event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpEnter:
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		surface, err := d.Object("surface")
		if err != nil {
			return err
		}
		sx, err := d.FixedArg("surface_x")
		if err != nil {
			return err
		}
		sy, err := d.FixedArg("surface_y")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Enter(serial, surface, sx, sy, sides) })
	case OpLeave:
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		surface, err := d.Object("surface")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Leave(serial, surface, sides) })
	case OpMotion:
		time, err := d.Uint32("time")
		if err != nil {
			return err
		}
		sx, err := d.FixedArg("surface_x")
		if err != nil {
			return err
		}
		sy, err := d.FixedArg("surface_y")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Motion(time, sx, sy, sides) })
	case OpButton:
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		time, err := d.Uint32("time")
		if err != nil {
			return err
		}
		button, err := d.Uint32("button")
		if err != nil {
			return err
		}
		state, err := d.Uint32("state")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Button(serial, time, button, state, sides) })
	case OpAxis:
		time, err := d.Uint32("time")
		if err != nil {
			return err
		}
		axis, err := d.Uint32("axis")
		if err != nil {
			return err
		}
		value, err := d.FixedArg("value")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Axis(time, axis, value, sides) })
	case OpFrame:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Frame(sides) })
	case OpAxisSource:
		axisSource, err := d.Uint32("axis_source")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.AxisSource(axisSource, sides) })
	case OpAxisStop:
		time, err := d.Uint32("time")
		if err != nil {
			return err
		}
		axis, err := d.Uint32("axis")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.AxisStop(time, axis, sides) })
	case OpAxisDiscrete:
		axis, err := d.Uint32("axis")
		if err != nil {
			return err
		}
		discrete, err := d.Int32("discrete")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.AxisDiscrete(axis, discrete, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// DefaultHandler forwards every request/event verbatim, translating the
// surface argument of set_cursor/enter/leave between ID spaces, and
// retires the object on release.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) SetCursor(serial uint32, surface wire.ObjectID, hotspotX, hotspotY int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendSetCursor(core.ServerID, serial, sides.ResolveServerID(surface), hotspotX, hotspotY), nil)
	}
	return nil
}

func (h DefaultHandler) Release(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendRelease(core.ServerID), nil)
	}
	core.Destroyed = true
	return nil
}

func (h DefaultHandler) forwardToClient(sides wlobject.Sides, frame []byte) {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(frame, nil)
	}
}

func (h DefaultHandler) Enter(serial uint32, surface wire.ObjectID, surfaceX, surfaceY wire.Fixed, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendEnter(core.ClientID, serial, sides.ResolveClientID(surface), surfaceX, surfaceY))
	return nil
}

func (h DefaultHandler) Leave(serial uint32, surface wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendLeave(core.ClientID, serial, sides.ResolveClientID(surface)))
	return nil
}

func (h DefaultHandler) Motion(time uint32, surfaceX, surfaceY wire.Fixed, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendMotion(core.ClientID, time, surfaceX, surfaceY))
	return nil
}

func (h DefaultHandler) Button(serial, time, button, state uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendButton(core.ClientID, serial, time, button, state))
	return nil
}

func (h DefaultHandler) Axis(time, axis uint32, value wire.Fixed, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendAxis(core.ClientID, time, axis, value))
	return nil
}

func (h DefaultHandler) Frame(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendFrame(core.ClientID))
	return nil
}

func (h DefaultHandler) AxisSource(axisSource uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendAxisSource(core.ClientID, axisSource))
	return nil
}

func (h DefaultHandler) AxisStop(time, axis uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendAxisStop(core.ClientID, time, axis))
	return nil
}

func (h DefaultHandler) AxisDiscrete(axis uint32, discrete int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendAxisDiscrete(core.ClientID, axis, discrete))
	return nil
}
