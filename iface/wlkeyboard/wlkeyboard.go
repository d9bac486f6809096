// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlkeyboard implements wl_keyboard: keymap delivery (an
// fd-typed event) and key/modifier state events (spec §4.5).
package wlkeyboard

import (
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlKeyboard
	Version   = 9
)

// Request opcode.
const OpRelease uint16 = 0

// Event opcodes.
const (
	OpKeymap      uint16 = 0
	OpEnter       uint16 = 1
	OpLeave       uint16 = 2
	OpKey         uint16 = 3
	OpModifiers   uint16 = 4
	OpRepeatInfo  uint16 = 5
)

const (
	ReleaseSince     uint32 = 3
	RepeatInfoSince  uint32 = 4
)

// Handler is wl_keyboard's trait.
type Handler interface {
	Release(sides wlobject.Sides) error
	Keymap(format uint32, fd int, size uint32, sides wlobject.Sides) error
	Enter(serial uint32, surface wire.ObjectID, keys []byte, sides wlobject.Sides) error
	Leave(serial uint32, surface wire.ObjectID, sides wlobject.Sides) error
	Key(serial, time, key, state uint32, sides wlobject.Sides) error
	Modifiers(serial, modsDepressed, modsLatched, modsLocked, group uint32, sides wlobject.Sides) error
	RepeatInfo(rate, delay int32, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_keyboard.
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

func TrySendRelease(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpRelease)
}

// TrySendKeymap encodes the keymap event; the caller hands fd to the
// destination endpoint's outbound fd queue alongside the returned frame.
func TrySendKeymap(target wire.ObjectID, format uint32, size uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(format)
	e.FD(0)
	e.Uint32(size)
	return e.Finish(target, OpKeymap)
}

func TrySendEnter(target wire.ObjectID, serial uint32, surface wire.ObjectID, keys []byte) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	e.Object(surface)
	e.Array(keys)
	return e.Finish(target, OpEnter)
}

func TrySendLeave(target wire.ObjectID, serial uint32, surface wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	e.Object(surface)
	return e.Finish(target, OpLeave)
}

func TrySendKey(target wire.ObjectID, serial, time, key, state uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	e.Uint32(time)
	e.Uint32(key)
	e.Uint32(state)
	return e.Finish(target, OpKey)
}

func TrySendModifiers(target wire.ObjectID, serial, modsDepressed, modsLatched, modsLocked, group uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	e.Uint32(modsDepressed)
	e.Uint32(modsLatched)
	e.Uint32(modsLocked)
	e.Uint32(group)
	return e.Finish(target, OpModifiers)
}

func TrySendRepeatInfo(target wire.ObjectID, rate, delay int32) []byte {
	e := wire.NewEncoder()
	e.Int32(rate)
	e.Int32(delay)
	return e.Finish(target, OpRepeatInfo)
}

// HandleRequest decodes a client->proxy wl_keyboard request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpRelease:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Release(sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent decodes a server->proxy wl_keyboard event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpKeymap:
		format, err := d.Uint32("format")
		if err != nil {
			return err
		}
		fd, err := d.FD("fd")
		if err != nil {
			return err
		}
		size, err := d.Uint32("size")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Keymap(format, fd, size, sides) })
	case OpEnter:
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		surface, err := d.Object("surface")
		if err != nil {
			return err
		}
		keys, err := d.Array("keys")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Enter(serial, surface, keys, sides) })
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
	case OpKey:
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		time, err := d.Uint32("time")
		if err != nil {
			return err
		}
		key, err := d.Uint32("key")
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
		return p.handler.Use(func(h Handler) error { return h.Key(serial, time, key, state, sides) })
	case OpModifiers:
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		depressed, err := d.Uint32("mods_depressed")
		if err != nil {
			return err
		}
		latched, err := d.Uint32("mods_latched")
		if err != nil {
			return err
		}
		locked, err := d.Uint32("mods_locked")
		if err != nil {
			return err
		}
		group, err := d.Uint32("group")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error {
			return h.Modifiers(serial, depressed, latched, locked, group, sides)
		})
	case OpRepeatInfo:
		rate, err := d.Int32("rate")
		if err != nil {
			return err
		}
		delay, err := d.Int32("delay")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.RepeatInfo(rate, delay, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// DefaultHandler forwards every event verbatim (translating the surface
// argument of enter/leave), forwards release, and retires the object.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) Release(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendRelease(core.ServerID), nil)
	}
	core.Destroyed = true
	return nil
}

func (h DefaultHandler) Keymap(format uint32, fd int, size uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendKeymap(core.ClientID, format, size), []int{fd})
	}
	return nil
}

func (h DefaultHandler) Enter(serial uint32, surface wire.ObjectID, keys []byte, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendEnter(core.ClientID, serial, sides.ResolveClientID(surface), keys), nil)
	}
	return nil
}

func (h DefaultHandler) Leave(serial uint32, surface wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendLeave(core.ClientID, serial, sides.ResolveClientID(surface)), nil)
	}
	return nil
}

func (h DefaultHandler) Key(serial, time, key, state uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendKey(core.ClientID, serial, time, key, state), nil)
	}
	return nil
}

func (h DefaultHandler) Modifiers(serial, modsDepressed, modsLatched, modsLocked, group uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendModifiers(core.ClientID, serial, modsDepressed, modsLatched, modsLocked, group), nil)
	}
	return nil
}

func (h DefaultHandler) RepeatInfo(rate, delay int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendRepeatInfo(core.ClientID, rate, delay), nil)
	}
	return nil
}
