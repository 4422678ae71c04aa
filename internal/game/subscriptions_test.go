package game

import (
	"testing"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

func TestRouterSubscribeUnsubscribe(t *testing.T) {
	r := NewSubscriptionRouter()
	id := model.ChunkID{CX: 1, CY: -1}

	if !r.Subscribe("c1", id) {
		t.Fatal("first subscribe rejected")
	}
	if r.Subscribe("c1", id) {
		t.Error("duplicate subscribe accepted")
	}
	if got := r.Subscribers(id); len(got) != 1 || got[0] != "c1" {
		t.Errorf("Subscribers = %v; want [c1]", got)
	}

	if !r.Unsubscribe("c1", id) {
		t.Error("unsubscribe of an existing watch rejected")
	}
	if r.Unsubscribe("c1", id) {
		t.Error("second unsubscribe accepted")
	}
	if got := r.Subscribers(id); len(got) != 0 {
		t.Errorf("Subscribers after unsubscribe = %v; want none", got)
	}
}

func TestRouterDropConn(t *testing.T) {
	r := NewSubscriptionRouter()
	a := model.ChunkID{CX: 0, CY: 0}
	b := model.ChunkID{CX: 1, CY: 0}
	r.Subscribe("c1", a)
	r.Subscribe("c1", b)
	r.Subscribe("c2", a)

	released := r.DropConn("c1")
	if len(released) != 2 {
		t.Fatalf("DropConn released %v; want both chunks", released)
	}
	if released[0] != a || released[1] != b {
		t.Errorf("released order %v; want sorted [%v %v]", released, a, b)
	}
	if got := r.Subscribers(a); len(got) != 1 || got[0] != "c2" {
		t.Errorf("Subscribers(a) = %v; want [c2]", got)
	}
	if len(r.Watching("c1")) != 0 {
		t.Error("dropped connection still watching chunks")
	}
}

func TestRouterViewportDiff(t *testing.T) {
	r := NewSubscriptionRouter()
	a := model.ChunkID{CX: 0, CY: 0}
	b := model.ChunkID{CX: 1, CY: 0}
	c := model.ChunkID{CX: 2, CY: 0}
	r.Subscribe("c1", a)
	r.Subscribe("c1", b)

	add, remove := r.ViewportDiff("c1", []model.ChunkID{b, c})
	if len(add) != 1 || add[0] != c {
		t.Errorf("add = %v; want [%v]", add, c)
	}
	if len(remove) != 1 || remove[0] != a {
		t.Errorf("remove = %v; want [%v]", remove, a)
	}

	// Identical cover means no change.
	add, remove = r.ViewportDiff("c1", []model.ChunkID{a, b})
	if len(add) != 0 || len(remove) != 0 {
		t.Errorf("diff with unchanged cover = add %v remove %v; want empty", add, remove)
	}

	// Unknown connection: everything is an add.
	add, remove = r.ViewportDiff("c9", []model.ChunkID{a})
	if len(add) != 1 || len(remove) != 0 {
		t.Errorf("diff for unknown conn = add %v remove %v", add, remove)
	}
}
