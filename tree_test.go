package nova

import "testing"

func TestHandleTreeAttachIdempotent(t *testing.T) {
	tr := NewHandleTree()
	p := tr.Create()
	c := tr.Create()
	if !tr.Attach(p, c) {
		t.Fatal("first attach should return true")
	}
	if tr.Attach(p, c) {
		t.Error("re-attaching to the same parent should return false")
	}
	if tr.Parent(c) != p {
		t.Error("child's parent should still be p")
	}
}

func TestHandleTreeAttachReparents(t *testing.T) {
	tr := NewHandleTree()
	p1 := tr.Create()
	p2 := tr.Create()
	c := tr.Create()
	tr.Attach(p1, c)
	tr.Attach(p2, c)
	if tr.Parent(c) != p2 {
		t.Error("child should now belong to p2")
	}
	if tr.First(p1) != 0 {
		t.Error("p1 should have no children left")
	}
	if tr.First(p2) != c {
		t.Error("p2's first child should be c")
	}
}

func TestHandleTreeSiblingOrderIsLIFO(t *testing.T) {
	tr := NewHandleTree()
	p := tr.Create()
	a := tr.Create()
	b := tr.Create()
	tr.Attach(p, a)
	tr.Attach(p, b)
	// b was attached last, so it is the new first child.
	if tr.First(p) != b {
		t.Error("most recently attached child should be first")
	}
	if tr.Next(b) != a {
		t.Error("a should follow b in sibling order")
	}
}

func TestHandleTreeDetachPreservesSiblings(t *testing.T) {
	tr := NewHandleTree()
	p := tr.Create()
	a := tr.Create()
	b := tr.Create()
	c := tr.Create()
	tr.Attach(p, a) // order after all attaches (LIFO): c, b, a
	tr.Attach(p, b)
	tr.Attach(p, c)
	tr.Detach(b)
	if tr.Next(c) != a {
		t.Error("detaching the middle sibling should link its neighbors together")
	}
	if tr.Parent(b) != 0 {
		t.Error("detached node should have no parent")
	}
}

func TestHandleTreeRemovePanicsWithChildren(t *testing.T) {
	tr := NewHandleTree()
	p := tr.Create()
	c := tr.Create()
	tr.Attach(p, c)
	defer func() {
		if recover() == nil {
			t.Error("Remove should panic when the handle still has children")
		}
	}()
	tr.Remove(p)
}

func TestHandleTreeRemoveAndOrphan(t *testing.T) {
	tr := NewHandleTree()
	p := tr.Create()
	c := tr.Create()
	tr.Attach(p, c)
	tr.RemoveAndOrphan(p)
	if tr.Parent(c) != 0 {
		t.Error("orphaned child should have no parent")
	}
}

func TestHandleTreeFreeInvalidatesAndOrphans(t *testing.T) {
	tr := NewHandleTree()
	p := tr.Create()
	c := tr.Create()
	tr.Attach(p, c)
	tr.Free(p)
	if tr.IsValid(p) {
		t.Error("freed handle should be invalid")
	}
	if tr.Parent(c) != 0 {
		t.Error("child of freed parent should be orphaned")
	}
}
