// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package regid implements the per-endpoint ID registry (spec §3, §4.2):
// a map from wire ID to object handle, plus allocation of fresh IDs in
// the registry's own range when the proxy must name a proxy-originated
// child on that side for the first time.
package regid

import (
	"code.hybscloud.com/wlproxy/protoerr"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

// Side identifies which of the two independent ID spaces (spec §3) a
// Registry manages and therefore which range Allocate draws from and
// which "no object" error it reports.
type Side uint8

const (
	// ClientSide registries hold the IDs a specific client's wire uses.
	ClientSide Side = iota
	// ServerSide registries hold the IDs the single shared compositor
	// connection's wire uses (spec §9: one server endpoint, one ID space,
	// shared by every client).
	ServerSide
)

// Registry is a per-endpoint map from wire ID to the object it names,
// plus the allocator for IDs the proxy mints on behalf of its peer when
// a new_id argument's opposite-side ID has not been needed yet.
type Registry struct {
	side     Side
	clientID uint32 // meaningful only when side == ClientSide, for error messages
	objects  map[wire.ObjectID]wlobject.Proxy
	next     uint32
}

// NewClientRegistry returns a registry for the given client's endpoint.
func NewClientRegistry(clientID uint32) *Registry {
	return &Registry{side: ClientSide, clientID: clientID, objects: make(map[wire.ObjectID]wlobject.Proxy), next: 1}
}

// NewServerRegistry returns the single registry for the shared
// compositor endpoint.
func NewServerRegistry() *Registry {
	return &Registry{side: ServerSide, objects: make(map[wire.ObjectID]wlobject.Proxy), next: wire.ServerIDRangeStart}
}

// Side reports which ID space this registry manages.
func (r *Registry) Side() Side { return r.side }

// Len returns the number of live entries, for tests and diagnostics.
func (r *Registry) Len() int { return len(r.objects) }

// Lookup resolves a non-null wire ID to the object it names. A missing
// entry is the NoClientObject/NoServerObject error of spec §4.4/§7 —
// callers on the decode path treat it as fatal; callers on the forward
// path (resolving the *opposite* side's registry to translate an
// argument) treat it as a per-message drop. Lookup does not itself know
// which; it only reports "not found" uniformly.
func (r *Registry) Lookup(id wire.ObjectID) (wlobject.Proxy, error) {
	obj, ok := r.objects[id]
	if !ok {
		if r.side == ClientSide {
			return nil, &protoerr.NoClientObjectError{ClientID: r.clientID, ID: uint32(id)}
		}
		return nil, &protoerr.NoServerObjectError{ID: uint32(id)}
	}
	return obj, nil
}

// Insert records obj under id, taken verbatim from the wire (the
// "created" state of spec §4.4's lifecycle machine: the ID on this side
// is whatever the creating message carried).
func (r *Registry) Insert(id wire.ObjectID, obj wlobject.Proxy) {
	r.objects[id] = obj
}

// Remove drops id from the registry. Per spec §4.5, this is only ever
// authoritative when driven by the owning side's display.delete_id.
func (r *Registry) Remove(id wire.ObjectID) {
	delete(r.objects, id)
}

// inRange reports whether v falls within this registry's ID space.
func (r *Registry) inRange(v uint32) bool {
	if r.side == ClientSide {
		return wire.IsClientRange(v)
	}
	return wire.IsServerRange(v)
}

// Allocate mints a fresh, currently-unused ID in this registry's range —
// the "opposite-side ID allocated lazily" step of spec §3/§4.4. It scans
// forward from the last-allocated value, wrapping at the range boundary,
// and fails only if every ID in the range is in use.
func (r *Registry) Allocate() (wire.ObjectID, error) {
	lo, hi := uint32(1), wire.ClientIDRangeEnd
	if r.side == ServerSide {
		lo, hi = wire.ServerIDRangeStart, ^uint32(0)
	}
	span := hi - lo + 1
	candidate := r.next
	if !r.inRange(candidate) {
		candidate = lo
	}
	for i := uint64(0); i < uint64(span); i++ {
		id := wire.ObjectID(candidate)
		if _, exists := r.objects[id]; !exists {
			if candidate == hi {
				r.next = lo
			} else {
				r.next = candidate + 1
			}
			return id, nil
		}
		if candidate == hi {
			candidate = lo
		} else {
			candidate++
		}
	}
	return 0, protoerr.ErrIDSpaceExhausted
}
