package docjson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// taggedMarshal writes {"tag": payload}.
func taggedMarshal(tag string, payload any) ([]byte, error) {
	inner, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	b.WriteByte('{')
	key, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}
	b.Write(key)
	b.WriteByte(':')
	b.Write(inner)
	b.WriteByte('}')
	return b.Bytes(), nil
}

// taggedUnmarshal splits a single-key object into tag and payload. A
// bare JSON string decodes as a unit variant with a nil payload.
func taggedUnmarshal(data []byte) (string, json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err != nil {
			return "", nil, err
		}
		return tag, nil, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, fmt.Errorf("expected a single-key object, got %d keys", len(m))
	}
	for tag, payload := range m {
		return tag, payload, nil
	}
	return "", nil, nil
}

type itemJSON struct {
	ID          ID              `json:"id"`
	CrateID     uint32          `json:"crate_id"`
	Name        *string         `json:"name"`
	Span        *Span           `json:"span,omitempty"`
	Visibility  Visibility      `json:"visibility"`
	Docs        string          `json:"docs"`
	Links       map[string]ID   `json:"links,omitempty"`
	Attrs       []string        `json:"attrs,omitempty"`
	Deprecation *Deprecation    `json:"deprecation,omitempty"`
	Kind        string          `json:"kind"`
	Inner       json.RawMessage `json:"inner"`
}

// MarshalJSON writes the item with its flat kind field and its body as
// a single-key object.
func (it Item) MarshalJSON() ([]byte, error) {
	inner, err := marshalBody(it.Inner)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", it.ID, err)
	}
	return json.Marshal(itemJSON{
		ID:          it.ID,
		CrateID:     it.CrateID,
		Name:        it.Name,
		Span:        it.Span,
		Visibility:  it.Visibility,
		Docs:        it.Docs,
		Links:       it.Links,
		Attrs:       it.Attrs,
		Deprecation: it.Deprecation,
		Kind:        it.Kind,
		Inner:       inner,
	})
}

// UnmarshalJSON reads the item, dispatching the body by its single key.
func (it *Item) UnmarshalJSON(data []byte) error {
	var env itemJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	body, err := unmarshalBody(env.Inner)
	if err != nil {
		return fmt.Errorf("item %s: %w", env.ID, err)
	}
	*it = Item{
		ID:          env.ID,
		CrateID:     env.CrateID,
		Name:        env.Name,
		Span:        env.Span,
		Visibility:  env.Visibility,
		Docs:        env.Docs,
		Links:       env.Links,
		Attrs:       env.Attrs,
		Deprecation: env.Deprecation,
		Kind:        env.Kind,
		Inner:       body,
	}
	return nil
}

func marshalBody(body Body) (json.RawMessage, error) {
	if body == nil {
		return json.RawMessage("null"), nil
	}
	switch b := body.(type) {
	case Macro:
		return taggedMarshal(b.tag(), string(b))
	case StrippedBody:
		inner, err := marshalBody(b.Inner)
		if err != nil {
			return nil, err
		}
		return taggedMarshal(b.tag(), inner)
	default:
		return taggedMarshal(body.tag(), body)
	}
}

func unmarshalBody(data json.RawMessage) (Body, error) {
	if len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	tag, payload, err := taggedUnmarshal(data)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "module":
		return bodyInto[Module](payload)
	case "extern_crate":
		return bodyInto[ExternCrateBody](payload)
	case "import":
		return bodyInto[Import](payload)
	case "struct":
		return bodyInto[Struct](payload)
	case "struct_field":
		return bodyInto[StructField](payload)
	case "enum":
		return bodyInto[Enum](payload)
	case "variant":
		return bodyInto[Variant](payload)
	case "function":
		return bodyInto[Function](payload)
	case "method":
		return bodyInto[Method](payload)
	case "trait":
		return bodyInto[Trait](payload)
	case "trait_alias":
		return bodyInto[TraitAlias](payload)
	case "impl":
		return bodyInto[Impl](payload)
	case "static":
		return bodyInto[Static](payload)
	case "foreign_type":
		return ForeignType{}, nil
	case "type_alias":
		return bodyInto[TypeAlias](payload)
	case "opaque_type":
		return bodyInto[OpaqueType](payload)
	case "constant":
		return bodyInto[Constant](payload)
	case "macro":
		var src string
		if err := json.Unmarshal(payload, &src); err != nil {
			return nil, fmt.Errorf("decoding macro body: %w", err)
		}
		return Macro(src), nil
	case "proc_macro":
		return bodyInto[ProcMacro](payload)
	case "assoc_const":
		return bodyInto[AssocConst](payload)
	case "assoc_type":
		return bodyInto[AssocType](payload)
	case "stripped":
		inner, err := unmarshalBody(payload)
		if err != nil {
			return nil, err
		}
		return StrippedBody{Inner: inner}, nil
	default:
		return nil, fmt.Errorf("unknown body tag %q", tag)
	}
}

func bodyInto[T Body](payload json.RawMessage) (Body, error) {
	var body T
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decoding %s body: %w", body.tag(), err)
	}
	return body, nil
}

type restrictedJSON struct {
	Parent ID     `json:"parent"`
	Path   string `json:"path"`
}

// MarshalJSON writes simple visibility levels as bare strings and
// restricted visibility as {"restricted": {...}}.
func (v Visibility) MarshalJSON() ([]byte, error) {
	if v.Level == "restricted" {
		return taggedMarshal("restricted", restrictedJSON{Parent: v.Parent, Path: v.Path})
	}
	level := v.Level
	if level == "" {
		level = "default"
	}
	return json.Marshal(level)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	tag, payload, err := taggedUnmarshal(data)
	if err != nil {
		return fmt.Errorf("decoding visibility: %w", err)
	}
	if tag != "restricted" {
		*v = Visibility{Level: tag}
		return nil
	}
	var r restrictedJSON
	if err := json.Unmarshal(payload, &r); err != nil {
		return fmt.Errorf("decoding restricted visibility: %w", err)
	}
	*v = Visibility{Level: "restricted", Parent: r.Parent, Path: r.Path}
	return nil
}

type variantJSON struct {
	VariantKind string          `json:"variant_kind"`
	Inner       json.RawMessage `json:"inner,omitempty"`
}

// MarshalJSON writes the variant in its adjacently tagged form:
// variant_kind plus a kind-shaped inner payload.
func (v Variant) MarshalJSON() ([]byte, error) {
	env := variantJSON{VariantKind: v.VariantKind}
	switch v.VariantKind {
	case "plain":
	case "tuple":
		inner, err := json.Marshal(v.Types)
		if err != nil {
			return nil, err
		}
		env.Inner = inner
	case "struct":
		inner, err := json.Marshal(v.Struct)
		if err != nil {
			return nil, err
		}
		env.Inner = inner
	default:
		return nil, fmt.Errorf("unknown variant kind %q", v.VariantKind)
	}
	return json.Marshal(env)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Variant) UnmarshalJSON(data []byte) error {
	var env variantJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	out := Variant{VariantKind: env.VariantKind}
	switch env.VariantKind {
	case "plain":
	case "tuple":
		if err := json.Unmarshal(env.Inner, &out.Types); err != nil {
			return fmt.Errorf("decoding tuple variant: %w", err)
		}
	case "struct":
		out.Struct = new(Struct)
		if err := json.Unmarshal(env.Inner, out.Struct); err != nil {
			return fmt.Errorf("decoding struct variant: %w", err)
		}
	default:
		return fmt.Errorf("unknown variant kind %q", env.VariantKind)
	}
	*v = out
	return nil
}

type resolvedPathJSON struct {
	Name       string         `json:"name"`
	ID         ID             `json:"id"`
	Args       *GenericArgs   `json:"args"`
	ParamNames []GenericBound `json:"param_names"`
}

type arrayJSON struct {
	Type *Type  `json:"type"`
	Len  string `json:"len"`
}

type rawPointerJSON struct {
	Mutable bool  `json:"mutable"`
	Type    *Type `json:"type"`
}

type borrowedRefJSON struct {
	Lifetime *string `json:"lifetime"`
	Mutable  bool    `json:"mutable"`
	Type     *Type   `json:"type"`
}

type qualifiedPathJSON struct {
	Name     string `json:"name"`
	SelfType *Type  `json:"self_type"`
	Trait    *Type  `json:"trait"`
}

// MarshalJSON writes the type as a single-key object keyed by kind, or
// a bare string for never/infer.
func (t Type) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TypeResolvedPath:
		return taggedMarshal(t.Kind, resolvedPathJSON{Name: t.Name, ID: t.ID, Args: t.Args, ParamNames: t.ParamNames})
	case TypeGeneric, TypePrimitive:
		return taggedMarshal(t.Kind, t.Name)
	case TypeFunctionPointer:
		return taggedMarshal(t.Kind, t.FnPointer)
	case TypeTuple:
		return taggedMarshal(t.Kind, t.Elements)
	case TypeSlice:
		return taggedMarshal(t.Kind, t.Elem)
	case TypeArray:
		return taggedMarshal(t.Kind, arrayJSON{Type: t.Elem, Len: t.Len})
	case TypeImplTrait:
		return taggedMarshal(t.Kind, t.Bounds)
	case TypeNever, TypeInfer:
		return json.Marshal(t.Kind)
	case TypeRawPointer:
		return taggedMarshal(t.Kind, rawPointerJSON{Mutable: t.Mutable, Type: t.Elem})
	case TypeBorrowedRef:
		return taggedMarshal(t.Kind, borrowedRefJSON{Lifetime: t.Lifetime, Mutable: t.Mutable, Type: t.Elem})
	case TypeQualifiedPath:
		return taggedMarshal(t.Kind, qualifiedPathJSON{Name: t.Name, SelfType: t.SelfType, Trait: t.Trait})
	default:
		return nil, fmt.Errorf("unknown type kind %q", t.Kind)
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (t *Type) UnmarshalJSON(data []byte) error {
	tag, payload, err := taggedUnmarshal(data)
	if err != nil {
		return fmt.Errorf("decoding type: %w", err)
	}
	out := Type{Kind: tag}
	switch tag {
	case TypeResolvedPath:
		var rp resolvedPathJSON
		if err := json.Unmarshal(payload, &rp); err != nil {
			return err
		}
		out.Name, out.ID, out.Args, out.ParamNames = rp.Name, rp.ID, rp.Args, rp.ParamNames
	case TypeGeneric, TypePrimitive:
		if err := json.Unmarshal(payload, &out.Name); err != nil {
			return err
		}
	case TypeFunctionPointer:
		out.FnPointer = new(FunctionPointer)
		if err := json.Unmarshal(payload, out.FnPointer); err != nil {
			return err
		}
	case TypeTuple:
		if err := json.Unmarshal(payload, &out.Elements); err != nil {
			return err
		}
	case TypeSlice:
		out.Elem = new(Type)
		if err := json.Unmarshal(payload, out.Elem); err != nil {
			return err
		}
	case TypeArray:
		var a arrayJSON
		if err := json.Unmarshal(payload, &a); err != nil {
			return err
		}
		out.Elem, out.Len = a.Type, a.Len
	case TypeImplTrait:
		if err := json.Unmarshal(payload, &out.Bounds); err != nil {
			return err
		}
	case TypeNever, TypeInfer:
	case TypeRawPointer:
		var p rawPointerJSON
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		out.Mutable, out.Elem = p.Mutable, p.Type
	case TypeBorrowedRef:
		var r borrowedRefJSON
		if err := json.Unmarshal(payload, &r); err != nil {
			return err
		}
		out.Lifetime, out.Mutable, out.Elem = r.Lifetime, r.Mutable, r.Type
	case TypeQualifiedPath:
		var q qualifiedPathJSON
		if err := json.Unmarshal(payload, &q); err != nil {
			return err
		}
		out.Name, out.SelfType, out.Trait = q.Name, q.SelfType, q.Trait
	default:
		return fmt.Errorf("unknown type kind %q", tag)
	}
	*t = out
	return nil
}

// MarshalJSON writes the input as a [name, type] pair.
func (in FnInput) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{in.Name, in.Type})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (in *FnInput) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("fn input: expected [name, type] pair, got %d elements", len(pair))
	}
	var out FnInput
	if err := json.Unmarshal(pair[0], &out.Name); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[1], &out.Type); err != nil {
		return err
	}
	*in = out
	return nil
}

type typeParamJSON struct {
	Bounds  []GenericBound `json:"bounds"`
	Default *Type          `json:"default"`
}

type paramDefJSON struct {
	Name string          `json:"name"`
	Kind json.RawMessage `json:"kind"`
}

// MarshalJSON writes {"name": ..., "kind": <externally tagged kind>}.
func (p GenericParamDef) MarshalJSON() ([]byte, error) {
	var kind json.RawMessage
	var err error
	switch p.ParamKind {
	case ParamLifetime:
		kind, err = json.Marshal(ParamLifetime)
	case ParamType:
		kind, err = taggedMarshal(ParamType, typeParamJSON{Bounds: p.Bounds, Default: p.Default})
	case ParamConst:
		kind, err = taggedMarshal(ParamConst, p.ConstType)
	default:
		return nil, fmt.Errorf("unknown generic param kind %q", p.ParamKind)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(paramDefJSON{Name: p.Name, Kind: kind})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *GenericParamDef) UnmarshalJSON(data []byte) error {
	var env paramDefJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	tag, payload, err := taggedUnmarshal(env.Kind)
	if err != nil {
		return fmt.Errorf("decoding generic param %q: %w", env.Name, err)
	}
	out := GenericParamDef{Name: env.Name, ParamKind: tag}
	switch tag {
	case ParamLifetime:
	case ParamType:
		var tp typeParamJSON
		if err := json.Unmarshal(payload, &tp); err != nil {
			return err
		}
		out.Bounds, out.Default = tp.Bounds, tp.Default
	case ParamConst:
		out.ConstType = new(Type)
		if err := json.Unmarshal(payload, out.ConstType); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown generic param kind %q", tag)
	}
	*p = out
	return nil
}

type boundPredicateJSON struct {
	Ty     *Type          `json:"ty"`
	Bounds []GenericBound `json:"bounds"`
}

type regionPredicateJSON struct {
	Lifetime string         `json:"lifetime"`
	Bounds   []GenericBound `json:"bounds"`
}

type eqPredicateJSON struct {
	LHS *Type `json:"lhs"`
	RHS *Type `json:"rhs"`
}

// MarshalJSON writes the predicate externally tagged by kind.
func (w WherePredicate) MarshalJSON() ([]byte, error) {
	switch w.PredicateKind {
	case PredicateBound:
		return taggedMarshal(PredicateBound, boundPredicateJSON{Ty: w.Type, Bounds: w.Bounds})
	case PredicateRegion:
		return taggedMarshal(PredicateRegion, regionPredicateJSON{Lifetime: w.Lifetime, Bounds: w.Bounds})
	case PredicateEq:
		return taggedMarshal(PredicateEq, eqPredicateJSON{LHS: w.Type, RHS: w.RHS})
	default:
		return nil, fmt.Errorf("unknown where predicate kind %q", w.PredicateKind)
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (w *WherePredicate) UnmarshalJSON(data []byte) error {
	tag, payload, err := taggedUnmarshal(data)
	if err != nil {
		return fmt.Errorf("decoding where predicate: %w", err)
	}
	out := WherePredicate{PredicateKind: tag}
	switch tag {
	case PredicateBound:
		var b boundPredicateJSON
		if err := json.Unmarshal(payload, &b); err != nil {
			return err
		}
		out.Type, out.Bounds = b.Ty, b.Bounds
	case PredicateRegion:
		var r regionPredicateJSON
		if err := json.Unmarshal(payload, &r); err != nil {
			return err
		}
		out.Lifetime, out.Bounds = r.Lifetime, r.Bounds
	case PredicateEq:
		var e eqPredicateJSON
		if err := json.Unmarshal(payload, &e); err != nil {
			return err
		}
		out.Type, out.RHS = e.LHS, e.RHS
	default:
		return fmt.Errorf("unknown where predicate kind %q", tag)
	}
	*w = out
	return nil
}

type traitBoundJSON struct {
	Trait         *Type             `json:"trait"`
	GenericParams []GenericParamDef `json:"generic_params"`
	Modifier      string            `json:"modifier"`
}

// MarshalJSON writes the bound externally tagged by kind.
func (g GenericBound) MarshalJSON() ([]byte, error) {
	switch g.BoundKind {
	case BoundTrait:
		mod := g.Modifier
		if mod == "" {
			mod = "none"
		}
		return taggedMarshal(BoundTrait, traitBoundJSON{Trait: g.Trait, GenericParams: g.GenericParams, Modifier: mod})
	case BoundOutlives:
		return taggedMarshal(BoundOutlives, g.Outlives)
	default:
		return nil, fmt.Errorf("unknown generic bound kind %q", g.BoundKind)
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (g *GenericBound) UnmarshalJSON(data []byte) error {
	tag, payload, err := taggedUnmarshal(data)
	if err != nil {
		return fmt.Errorf("decoding generic bound: %w", err)
	}
	out := GenericBound{BoundKind: tag}
	switch tag {
	case BoundTrait:
		var tb traitBoundJSON
		if err := json.Unmarshal(payload, &tb); err != nil {
			return err
		}
		out.Trait, out.GenericParams, out.Modifier = tb.Trait, tb.GenericParams, tb.Modifier
	case BoundOutlives:
		if err := json.Unmarshal(payload, &out.Outlives); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown generic bound kind %q", tag)
	}
	*g = out
	return nil
}

type angleBracketedJSON struct {
	Args     []GenericArg  `json:"args"`
	Bindings []TypeBinding `json:"bindings"`
}

type parenthesizedJSON struct {
	Inputs []Type `json:"inputs"`
	Output *Type  `json:"output"`
}

// MarshalJSON writes angle-bracketed or parenthesized args, externally
// tagged.
func (a GenericArgs) MarshalJSON() ([]byte, error) {
	if a.Parenthesized {
		return taggedMarshal("parenthesized", parenthesizedJSON{Inputs: a.Inputs, Output: a.Output})
	}
	return taggedMarshal("angle_bracketed", angleBracketedJSON{Args: a.Args, Bindings: a.Bindings})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (a *GenericArgs) UnmarshalJSON(data []byte) error {
	tag, payload, err := taggedUnmarshal(data)
	if err != nil {
		return fmt.Errorf("decoding generic args: %w", err)
	}
	switch tag {
	case "angle_bracketed":
		var ab angleBracketedJSON
		if err := json.Unmarshal(payload, &ab); err != nil {
			return err
		}
		*a = GenericArgs{Args: ab.Args, Bindings: ab.Bindings}
	case "parenthesized":
		var p parenthesizedJSON
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		*a = GenericArgs{Parenthesized: true, Inputs: p.Inputs, Output: p.Output}
	default:
		return fmt.Errorf("unknown generic args form %q", tag)
	}
	return nil
}

// MarshalJSON writes the argument externally tagged by kind.
func (g GenericArg) MarshalJSON() ([]byte, error) {
	switch g.ArgKind {
	case ArgLifetime:
		return taggedMarshal(ArgLifetime, g.Lifetime)
	case ArgType:
		return taggedMarshal(ArgType, g.Type)
	case ArgConst:
		return taggedMarshal(ArgConst, g.Const)
	default:
		return nil, fmt.Errorf("unknown generic arg kind %q", g.ArgKind)
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (g *GenericArg) UnmarshalJSON(data []byte) error {
	tag, payload, err := taggedUnmarshal(data)
	if err != nil {
		return fmt.Errorf("decoding generic arg: %w", err)
	}
	out := GenericArg{ArgKind: tag}
	switch tag {
	case ArgLifetime:
		if err := json.Unmarshal(payload, &out.Lifetime); err != nil {
			return err
		}
	case ArgType:
		out.Type = new(Type)
		if err := json.Unmarshal(payload, out.Type); err != nil {
			return err
		}
	case ArgConst:
		out.Const = new(Constant)
		if err := json.Unmarshal(payload, out.Const); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown generic arg kind %q", tag)
	}
	*g = out
	return nil
}

type bindingJSON struct {
	Name    string          `json:"name"`
	Binding json.RawMessage `json:"binding"`
}

// MarshalJSON writes {"name": ..., "binding": <externally tagged>}.
func (b TypeBinding) MarshalJSON() ([]byte, error) {
	var binding json.RawMessage
	var err error
	switch b.BindingKind {
	case BindingEquality:
		binding, err = taggedMarshal(BindingEquality, b.Type)
	case BindingConstraint:
		binding, err = taggedMarshal(BindingConstraint, b.Bounds)
	default:
		return nil, fmt.Errorf("unknown type binding kind %q", b.BindingKind)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(bindingJSON{Name: b.Name, Binding: binding})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (b *TypeBinding) UnmarshalJSON(data []byte) error {
	var env bindingJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	tag, payload, err := taggedUnmarshal(env.Binding)
	if err != nil {
		return fmt.Errorf("decoding type binding %q: %w", env.Name, err)
	}
	out := TypeBinding{Name: env.Name, BindingKind: tag}
	switch tag {
	case BindingEquality:
		out.Type = new(Type)
		if err := json.Unmarshal(payload, out.Type); err != nil {
			return err
		}
	case BindingConstraint:
		if err := json.Unmarshal(payload, &out.Bounds); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown type binding kind %q", tag)
	}
	*b = out
	return nil
}
