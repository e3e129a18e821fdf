package model

import (
	"encoding/json"
	"fmt"
)

// itemJSON is the wire envelope for an item in a doctree file. The body
// is tagged by kind and decoded into the matching concrete type.
type itemJSON struct {
	ID          ItemID          `json:"id"`
	Name        string          `json:"name,omitempty"`
	Span        *Span           `json:"span,omitempty"`
	Visibility  Visibility      `json:"visibility"`
	Docs        string          `json:"docs,omitempty"`
	Attrs       []string        `json:"attrs,omitempty"`
	Deprecation *Deprecation    `json:"deprecation,omitempty"`
	Kind        Kind            `json:"kind"`
	Inner       json.RawMessage `json:"inner,omitempty"`
}

// MarshalJSON writes the item in doctree wire form.
func (it Item) MarshalJSON() ([]byte, error) {
	env := itemJSON{
		ID:          it.ID,
		Name:        it.Name,
		Span:        it.Span,
		Visibility:  it.Visibility,
		Docs:        it.Docs,
		Attrs:       it.Attrs,
		Deprecation: it.Deprecation,
	}
	if it.Inner != nil {
		env.Kind = it.Inner.Kind()
		inner, err := encodeBody(it.Inner)
		if err != nil {
			return nil, err
		}
		env.Inner = inner
	}
	return json.Marshal(env)
}

// UnmarshalJSON reads the item from doctree wire form.
func (it *Item) UnmarshalJSON(data []byte) error {
	var env itemJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	body, err := decodeBody(env.Kind, env.Inner)
	if err != nil {
		return fmt.Errorf("item %s: %w", env.ID, err)
	}
	*it = Item{
		ID:          env.ID,
		Name:        env.Name,
		Span:        env.Span,
		Visibility:  env.Visibility,
		Docs:        env.Docs,
		Attrs:       env.Attrs,
		Deprecation: env.Deprecation,
		Inner:       body,
	}
	return nil
}

// strippedJSON nests a second kind-tagged envelope for the hidden body.
type strippedJSON struct {
	Kind  Kind            `json:"kind"`
	Inner json.RawMessage `json:"inner,omitempty"`
}

func encodeBody(body Body) (json.RawMessage, error) {
	if s, ok := body.(Stripped); ok {
		if s.Inner == nil {
			return nil, fmt.Errorf("stripped item without a wrapped body")
		}
		inner, err := encodeBody(s.Inner)
		if err != nil {
			return nil, err
		}
		return json.Marshal(strippedJSON{Kind: s.Inner.Kind(), Inner: inner})
	}
	return json.Marshal(body)
}

func decodeBody(kind Kind, raw json.RawMessage) (Body, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch kind {
	case KindModule:
		return decodeInto[Module](raw)
	case KindExternCrate:
		return decodeInto[ExternCrate](raw)
	case KindImport:
		return decodeInto[Import](raw)
	case KindStruct:
		return decodeInto[Struct](raw)
	case KindUnion:
		return decodeInto[Union](raw)
	case KindStructField:
		return decodeInto[StructField](raw)
	case KindEnum:
		return decodeInto[Enum](raw)
	case KindVariant:
		return decodeInto[Variant](raw)
	case KindFunction:
		return decodeInto[Function](raw)
	case KindForeignFunction:
		return decodeInto[ForeignFunction](raw)
	case KindTrait:
		return decodeInto[Trait](raw)
	case KindTraitAlias:
		return decodeInto[TraitAlias](raw)
	case KindMethod:
		return decodeInto[Method](raw)
	case KindRequiredMethod:
		return decodeInto[RequiredMethod](raw)
	case KindImpl:
		return decodeInto[Impl](raw)
	case KindStatic:
		return decodeInto[Static](raw)
	case KindForeignStatic:
		return decodeInto[ForeignStatic](raw)
	case KindForeignType:
		return decodeInto[ForeignType](raw)
	case KindTypeAlias:
		return decodeInto[TypeAlias](raw)
	case KindOpaqueType:
		return decodeInto[OpaqueType](raw)
	case KindConstant:
		return decodeInto[Constant](raw)
	case KindMacro:
		return decodeInto[Macro](raw)
	case KindProcMacro:
		return decodeInto[ProcMacro](raw)
	case KindAssocConst:
		return decodeInto[AssocConst](raw)
	case KindAssocType:
		return decodeInto[AssocType](raw)
	case KindPrimitive:
		return decodeInto[Primitive](raw)
	case KindKeyword:
		return decodeInto[Keyword](raw)
	case KindStripped:
		var env strippedJSON
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decoding stripped envelope: %w", err)
		}
		inner, err := decodeBody(env.Kind, env.Inner)
		if err != nil {
			return nil, err
		}
		return Stripped{Inner: inner}, nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
}

func decodeInto[T Body](raw json.RawMessage) (Body, error) {
	var body T
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decoding %s body: %w", body.Kind(), err)
	}
	return body, nil
}
