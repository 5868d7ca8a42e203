// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package names

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// leaf is a minimal Object used only to exercise Base's tree bookkeeping.
type leaf struct {
	Base
}

func newLeaf(name string) *leaf {
	return &leaf{Base: NewBase(name)}
}

func (o *leaf) FindObject(name string) Object {
	return o.Base.FindObject(o, name)
}

func Test_object01(tst *testing.T) {

	chk.PrintTitle("object01: RegisterChild sets ownership and FindObject walks up the tree")

	root := newLeaf("root")
	mid := newLeaf("mid")
	child := newLeaf("child")

	root.RegisterChild(root, mid)
	mid.RegisterChild(mid, child)

	if child.Owner() != mid {
		tst.Fatal("child's Owner should be mid after RegisterChild")
	}
	if mid.Owner() != root {
		tst.Fatal("mid's Owner should be root after RegisterChild")
	}
	if root.Owner() != nil {
		tst.Fatal("root has no owner")
	}

	// mid finds its directly registered child locally...
	if mid.FindLocalObject("child") != child {
		tst.Fatal("FindLocalObject should find a directly registered child")
	}
	// ...and a grandchild's FindObject walks up through its owner chain to
	// find an object registered at the root.
	sibling := newLeaf("sibling")
	root.RegisterChild(root, sibling)
	if got := child.FindObject("sibling"); got != sibling {
		tst.Fatalf("FindObject from child should resolve %q registered at the root, got %v", "sibling", got)
	}
}

func Test_object02(tst *testing.T) {

	chk.PrintTitle("object02: FullName builds the dotted path from the root")

	root := newLeaf("domain")
	mid := newLeaf("effHamil0")
	child := newLeaf("flory01")
	root.RegisterChild(root, mid)
	mid.RegisterChild(mid, child)

	chk.StrAssert(FullName(child), "domain.effHamil0.flory01")
	chk.StrAssert(FullName(root), "domain")
	chk.StrAssert(FullName(nil), "")
}

func Test_object03(tst *testing.T) {

	chk.PrintTitle("object03: Resolve reports an UnknownObject-kind error for a missing name")

	root := newLeaf("domain")
	if _, err := Resolve(root, "nowhere"); err == nil {
		tst.Fatal("Resolve should fail for a name that is nowhere in the tree")
	}

	child := newLeaf("child")
	root.RegisterChild(root, child)
	found, err := Resolve(root, "child")
	if err != nil {
		tst.Fatal(err)
	}
	if found != child {
		tst.Fatal("Resolve should return the registered child")
	}
}
