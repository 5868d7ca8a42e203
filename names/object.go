// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package names implements the named-object tree that every polyscft
// component is wired into: each child is owned exclusively by its parent
// holder, and cross-object references are resolved once, by name, during
// buildSolvers.
package names

import (
	"github.com/cpmech/gosl/chk"
)

// Object is implemented by every component in the Domain tree: grids,
// decompositions, fields, blocks, interactions, updaters, histories, etc.
type Object interface {
	Name() string
	Owner() Object
	SetOwner(o Object)
	FindObject(name string) Object
}

// Base provides the common directory/ownership bookkeeping described in
// spec.md §3 (Ownership). Components embed Base and call RegisterChild for
// every object they own.
type Base struct {
	name  string
	owner Object
	dir   map[string]Object
}

// NewBase returns an initialised Base with the given local name.
func NewBase(name string) Base {
	return Base{name: name, dir: make(map[string]Object)}
}

// Name returns the local (not fully-qualified) name of this object.
func (o *Base) Name() string { return o.name }

// Owner returns the parent holder, or nil at the Domain root.
func (o *Base) Owner() Object { return o.owner }

// SetOwner sets the parent holder; called once during the tree build.
func (o *Base) SetOwner(owner Object) { o.owner = owner }

// RegisterChild places obj into self's local directory under its own name
// and sets self as obj's owner, mirroring PsNamedObject::makeAvail. self
// must be the outer object embedding this Base.
func (o *Base) RegisterChild(self, obj Object) {
	if o.dir == nil {
		o.dir = make(map[string]Object)
	}
	o.dir[obj.Name()] = obj
	obj.SetOwner(self)
}

// FindLocalObject looks only in this object's own directory.
func (o *Base) FindLocalObject(name string) Object {
	return o.dir[name]
}

// FindObject walks this object's directory, then its owner's, up to the
// root Domain, exactly as PsNamedObject::findObject does. self must be the
// outer object embedding this Base (Go has no implicit upcast from Base to
// the embedding type's interface), so implementations typically forward to
// this with themselves as self.
func (o *Base) FindObject(self Object, name string) Object {
	if child := o.FindLocalObject(name); child != nil {
		return child
	}
	if owner := o.Owner(); owner != nil && owner != self {
		return owner.FindObject(name)
	}
	return nil
}

// FullName returns the dotted path from the root Domain to this object,
// e.g. "domain.effHamil0.flory01".
func FullName(o Object) string {
	if o == nil {
		return ""
	}
	if owner := o.Owner(); owner != nil {
		return FullName(owner) + "." + o.Name()
	}
	return o.Name()
}

// Resolve finds an object of the given name reachable from start and
// reports an UnknownObject-kind error (spec.md §7) if it is absent.
func Resolve(start Object, name string) (Object, error) {
	obj := start.FindObject(name)
	if obj == nil {
		return nil, chk.Err("UnknownObject: %q not found from %q", name, FullName(start))
	}
	return obj, nil
}
