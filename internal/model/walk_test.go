package model

import (
	"fmt"
	"testing"
)

// eventVisitor records traversal events as compact strings.
type eventVisitor struct {
	events []string
	fail   string // item name that triggers an error
}

func (v *eventVisitor) EnterModule(item *Item) error {
	v.events = append(v.events, "enter "+item.Name)
	return nil
}

func (v *eventVisitor) Item(item *Item) error {
	if item.Name == v.fail {
		return fmt.Errorf("boom on %s", item.Name)
	}
	v.events = append(v.events, "item "+item.Name)
	return nil
}

func (v *eventVisitor) LeaveModule(name string) error {
	v.events = append(v.events, "leave "+name)
	return nil
}

func walkCrate() *Crate {
	return &Crate{
		Name: "demo",
		Module: Item{
			ID:   ItemID{Crate: 0, Index: 0},
			Name: "demo",
			Inner: Module{
				IsCrate: true,
				Items: []Item{
					{
						ID:    ItemID{Crate: 0, Index: 1},
						Name:  "run",
						Inner: Function{},
					},
					{
						ID:   ItemID{Crate: 0, Index: 2},
						Name: "util",
						Inner: Module{
							Items: []Item{
								{
									ID:    ItemID{Crate: 0, Index: 3},
									Name:  "Helper",
									Inner: Struct{StructType: StructUnit},
								},
							},
						},
					},
					{
						ID:    ItemID{Crate: 0, Index: 4},
						Name:  "MAX",
						Inner: Constant{Type: Type{Kind: TypePrimitive, Name: "u32"}, Expr: "10"},
					},
				},
			},
		},
	}
}

func TestWalkOrder(t *testing.T) {
	t.Parallel()

	v := &eventVisitor{}
	if err := Walk(walkCrate(), v); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	want := []string{
		"enter demo",
		"item run",
		"enter util",
		"item Helper",
		"leave util",
		"item MAX",
		"leave demo",
	}
	if len(v.events) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(v.events), v.events, len(want))
	}
	for i := range want {
		if v.events[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, v.events[i], want[i])
		}
	}
}

func TestWalkPropagatesError(t *testing.T) {
	t.Parallel()

	v := &eventVisitor{fail: "Helper"}
	err := Walk(walkCrate(), v)
	if err == nil {
		t.Fatal("expected error from visitor")
	}
	// The walk must stop at the failing item
	for _, e := range v.events {
		if e == "item MAX" || e == "leave util" {
			t.Errorf("walk continued past failure: %v", v.events)
		}
	}
}

func TestWalkRootNotModule(t *testing.T) {
	t.Parallel()

	crate := &Crate{Module: Item{ID: ItemID{Crate: 0, Index: 0}, Inner: Function{}}}
	if err := Walk(crate, &eventVisitor{}); err == nil {
		t.Fatal("expected error for non-module root")
	}
}
