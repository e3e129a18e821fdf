package model

import "fmt"

// Visitor receives the traversal events for one crate in depth-first
// order. EnterModule fires before a module's children are delivered,
// LeaveModule after. Non-module children arrive through Item; a
// visitor recurses into item bodies itself when it needs their nested
// members.
type Visitor interface {
	EnterModule(item *Item) error
	Item(item *Item) error
	LeaveModule(name string) error
}

// Walk drives a depth-first traversal of the crate's module tree,
// starting at the root module.
func Walk(crate *Crate, v Visitor) error {
	if crate.Module.Kind() != KindModule {
		return fmt.Errorf("crate root %s is %q, not a module", crate.Module.ID, crate.Module.Kind())
	}
	return walkModule(&crate.Module, v)
}

func walkModule(item *Item, v Visitor) error {
	mod := item.Inner.(Module)
	if err := v.EnterModule(item); err != nil {
		return err
	}
	for i := range mod.Items {
		child := &mod.Items[i]
		if child.Kind() == KindModule {
			if err := walkModule(child, v); err != nil {
				return err
			}
			continue
		}
		if err := v.Item(child); err != nil {
			return err
		}
	}
	return v.LeaveModule(item.Name)
}
