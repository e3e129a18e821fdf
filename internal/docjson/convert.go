package docjson

import (
	"fmt"

	"cratedoc/internal/model"
)

// idFor converts an internal ID to its serialized form.
func idFor(id model.ItemID) ID {
	return ID(id.String())
}

func idPtr(id *model.ItemID) *ID {
	if id == nil {
		return nil
	}
	out := idFor(*id)
	return &out
}

// memberIDs collects the IDs of a body's owned child items, preserving
// declaration order.
func memberIDs(items []model.Item) []ID {
	ids := make([]ID, 0, len(items))
	for i := range items {
		ids = append(ids, idFor(items[i].ID))
	}
	return ids
}

func strList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// convertItem maps one internal item to its public form. Relation
// lists (impls on types, implementors on traits) are left empty; the
// renderer attaches them after resolution. Panics on item kinds with
// no public representation, aborting the run: a partial document is
// worse than none.
func convertItem(it *model.Item, links *linkIndex) Item {
	body, kind := convertBody(it)
	out := Item{
		ID:          idFor(it.ID),
		CrateID:     it.ID.Crate,
		Name:        optName(it.Name),
		Span:        convertSpan(it.Span),
		Visibility:  convertVisibility(it.Visibility),
		Docs:        it.Docs,
		Attrs:       it.Attrs,
		Deprecation: convertDeprecation(it.Deprecation),
		Kind:        kind,
		Inner:       body,
	}
	if links != nil && it.Docs != "" {
		out.Links = links.resolve(it.Docs)
	}
	return out
}

// convertBody maps an internal body to the public body plus the item's
// flat kind string. The two differ where shapes merge on output: a
// union flattens into the struct shape, foreign functions and statics
// into their plain counterparts.
func convertBody(it *model.Item) (Body, string) {
	switch b := it.Inner.(type) {
	case model.Module:
		return Module{IsCrate: b.IsCrate, Items: memberIDs(b.Items)}, "module"
	case model.ExternCrate:
		return ExternCrateBody{Name: b.Name, Rename: b.Rename}, "extern_crate"
	case model.Import:
		return Import{Source: b.Source, Name: b.Name, ID: idPtr(b.ID), Glob: b.Glob}, "import"
	case model.Struct:
		return Struct{
			StructType:     string(b.StructType),
			Generics:       convertGenerics(b.Generics),
			FieldsStripped: b.FieldsStripped,
			Fields:         memberIDs(b.Fields),
		}, "struct"
	case model.Union:
		return Struct{
			StructType:     string(model.StructPlain),
			Generics:       convertGenerics(b.Generics),
			FieldsStripped: b.FieldsStripped,
			Fields:         memberIDs(b.Fields),
		}, "union"
	case model.StructField:
		return StructField{Type: convertType(b.Type)}, "struct_field"
	case model.Enum:
		return Enum{
			Generics:         convertGenerics(b.Generics),
			VariantsStripped: b.VariantsStripped,
			Variants:         memberIDs(b.Variants),
		}, "enum"
	case model.Variant:
		return convertVariant(b), "variant"
	case model.Function:
		return Function{Decl: convertFnDecl(b.Decl), Generics: convertGenerics(b.Generics), Header: convertHeader(b.Header)}, "function"
	case model.ForeignFunction:
		return Function{Decl: convertFnDecl(b.Decl), Generics: convertGenerics(b.Generics), Header: convertHeader(b.Header)}, "function"
	case model.Method:
		return Method{Decl: convertFnDecl(b.Decl), Generics: convertGenerics(b.Generics), Header: convertHeader(b.Header), HasBody: b.HasBody}, "method"
	case model.RequiredMethod:
		return Method{Decl: convertFnDecl(b.Decl), Generics: convertGenerics(b.Generics), Header: convertHeader(b.Header), HasBody: false}, "method"
	case model.Trait:
		return Trait{
			IsAuto:   b.IsAuto,
			IsUnsafe: b.IsUnsafe,
			Items:    memberIDs(b.Items),
			Generics: convertGenerics(b.Generics),
			Bounds:   convertBounds(b.Bounds),
		}, "trait"
	case model.TraitAlias:
		return TraitAlias{Generics: convertGenerics(b.Generics), Bounds: convertBounds(b.Bounds)}, "trait_alias"
	case model.Impl:
		return Impl{
			IsUnsafe:        b.IsUnsafe,
			Generics:        convertGenerics(b.Generics),
			ProvidedMethods: strList(b.ProvidedMethods),
			Trait:           convertTypePtr(b.Trait),
			For:             convertType(b.For),
			Items:           memberIDs(b.Items),
			Negative:        b.Negative,
			Synthetic:       b.Synthetic,
			BlanketImpl:     convertTypePtr(b.BlanketImpl),
		}, "impl"
	case model.Static:
		return Static{Type: convertType(b.Type), Mutable: b.Mutable, Expr: b.Expr}, "static"
	case model.ForeignStatic:
		return Static{Type: convertType(b.Type), Mutable: b.Mutable}, "static"
	case model.ForeignType:
		return ForeignType{}, "foreign_type"
	case model.TypeAlias:
		return TypeAlias{Type: convertType(b.Type), Generics: convertGenerics(b.Generics)}, "type_alias"
	case model.OpaqueType:
		return OpaqueType{Bounds: convertBounds(b.Bounds), Generics: convertGenerics(b.Generics)}, "opaque_type"
	case model.Constant:
		return convertConstant(b), "constant"
	case model.Macro:
		return Macro(b.Source), "macro"
	case model.ProcMacro:
		return ProcMacro{MacroKind: string(b.MacroKind), Helpers: strList(b.Helpers)}, procMacroKind(b.MacroKind)
	case model.AssocConst:
		return AssocConst{Type: convertType(b.Type), Default: b.Default}, "assoc_const"
	case model.AssocType:
		return AssocType{Bounds: convertBounds(b.Bounds), Default: convertTypePtr(b.Default)}, "assoc_type"
	case model.Stripped:
		wrapped := model.Item{ID: it.ID, Inner: b.Inner}
		inner, kind := convertBody(&wrapped)
		return StrippedBody{Inner: inner}, kind
	default:
		panic(fmt.Sprintf("item kind %q is not supported for JSON output", it.Kind()))
	}
}

func procMacroKind(k model.MacroKind) string {
	switch k {
	case model.MacroAttr:
		return "proc_attribute"
	case model.MacroDerive:
		return "proc_derive"
	default:
		return "macro"
	}
}

func optName(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}

func convertSpan(s *model.Span) *Span {
	if s == nil {
		return nil
	}
	return &Span{Filename: s.Filename, Begin: s.Begin, End: s.End}
}

func convertDeprecation(d *model.Deprecation) *Deprecation {
	if d == nil {
		return nil
	}
	return &Deprecation{Since: d.Since, Note: d.Note}
}

func convertVisibility(v model.Visibility) Visibility {
	out := Visibility{Level: string(v.Level)}
	if out.Level == "" {
		out.Level = string(model.VisDefault)
	}
	if v.Level == model.VisRestricted {
		if v.Parent != nil {
			out.Parent = idFor(*v.Parent)
		}
		out.Path = v.Path
	}
	return out
}

func convertVariant(v model.Variant) Variant {
	switch v.Form {
	case model.VariantTuple:
		return Variant{VariantKind: "tuple", Types: convertTypes(v.Types)}
	case model.VariantStruct:
		return Variant{VariantKind: "struct", Struct: &Struct{
			StructType: string(model.StructPlain),
			Fields:     memberIDs(v.Fields),
		}}
	default:
		return Variant{VariantKind: "plain"}
	}
}

func convertConstant(c model.Constant) Constant {
	return Constant{Type: convertType(c.Type), Expr: c.Expr, Value: c.Value, IsLiteral: c.IsLiteral}
}

func convertHeader(h model.FnHeader) FnHeader {
	return FnHeader{Const: h.Const, Unsafe: h.Unsafe, Async: h.Async, ABI: h.ABI}
}

func convertFnDecl(d model.FnDecl) FnDecl {
	inputs := make([]FnInput, 0, len(d.Inputs))
	for _, in := range d.Inputs {
		inputs = append(inputs, FnInput{Name: in.Name, Type: convertType(in.Type)})
	}
	return FnDecl{Inputs: inputs, Output: convertTypePtr(d.Output), CVariadic: d.CVariadic}
}

func convertType(t model.Type) Type {
	out := Type{Kind: string(t.Kind)}
	switch t.Kind {
	case model.TypeResolvedPath:
		out.Name = t.Name
		if t.ID != nil {
			out.ID = idFor(*t.ID)
		}
		out.Args = convertGenericArgs(t.Args)
		out.ParamNames = convertBounds(t.ParamNames)
	case model.TypeGeneric, model.TypePrimitive:
		out.Name = t.Name
	case model.TypeFunctionPointer:
		out.FnPointer = convertFnPointer(t.FnPointer)
	case model.TypeTuple:
		out.Elements = convertTypes(t.Elements)
	case model.TypeSlice:
		out.Elem = convertTypePtr(t.Elem)
	case model.TypeArray:
		out.Elem = convertTypePtr(t.Elem)
		out.Len = t.Len
	case model.TypeImplTrait:
		out.Bounds = convertBounds(t.Bounds)
	case model.TypeNever, model.TypeInfer:
	case model.TypeRawPointer:
		out.Mutable = t.Mutable
		out.Elem = convertTypePtr(t.Elem)
	case model.TypeBorrowedRef:
		out.Lifetime = t.Lifetime
		out.Mutable = t.Mutable
		out.Elem = convertTypePtr(t.Elem)
	case model.TypeQualifiedPath:
		out.Name = t.Name
		out.SelfType = convertTypePtr(t.SelfType)
		out.Trait = convertTypePtr(t.Trait)
	}
	return out
}

func convertTypePtr(t *model.Type) *Type {
	if t == nil {
		return nil
	}
	out := convertType(*t)
	return &out
}

func convertTypes(types []model.Type) []Type {
	out := make([]Type, 0, len(types))
	for _, t := range types {
		out = append(out, convertType(t))
	}
	return out
}

func convertFnPointer(fp *model.FunctionPointer) *FunctionPointer {
	if fp == nil {
		return nil
	}
	return &FunctionPointer{
		IsUnsafe:      fp.IsUnsafe,
		GenericParams: convertParamDefs(fp.GenericParams),
		Decl:          convertFnDecl(fp.Decl),
		ABI:           fp.ABI,
	}
}

func convertGenerics(g model.Generics) Generics {
	return Generics{
		Params:          convertParamDefs(g.Params),
		WherePredicates: convertPredicates(g.WherePredicates),
	}
}

func convertParamDefs(params []model.GenericParamDef) []GenericParamDef {
	out := make([]GenericParamDef, 0, len(params))
	for _, p := range params {
		out = append(out, GenericParamDef{
			Name:      p.Name,
			ParamKind: string(p.ParamKind),
			Bounds:    convertBounds(p.Bounds),
			Default:   convertTypePtr(p.Default),
			ConstType: convertTypePtr(p.ConstType),
		})
	}
	return out
}

func convertPredicates(preds []model.WherePredicate) []WherePredicate {
	out := make([]WherePredicate, 0, len(preds))
	for _, p := range preds {
		conv := WherePredicate{Bounds: convertBounds(p.Bounds), Lifetime: p.Lifetime}
		switch p.PredicateKind {
		case model.PredicateBound:
			conv.PredicateKind = PredicateBound
			conv.Type = convertTypePtr(p.Type)
		case model.PredicateRegion:
			conv.PredicateKind = PredicateRegion
		case model.PredicateEq:
			conv.PredicateKind = PredicateEq
			conv.Type = convertTypePtr(p.Type)
			conv.RHS = convertTypePtr(p.RHS)
		}
		out = append(out, conv)
	}
	return out
}

func convertBounds(bounds []model.GenericBound) []GenericBound {
	out := make([]GenericBound, 0, len(bounds))
	for _, b := range bounds {
		switch b.BoundKind {
		case model.BoundOutlives:
			out = append(out, GenericBound{BoundKind: BoundOutlives, Outlives: b.Outlives})
		default:
			out = append(out, GenericBound{
				BoundKind:     BoundTrait,
				Trait:         convertTypePtr(b.Trait),
				GenericParams: convertParamDefs(b.GenericParams),
				Modifier:      string(b.Modifier),
			})
		}
	}
	return out
}

func convertGenericArgs(a *model.GenericArgs) *GenericArgs {
	if a == nil {
		return nil
	}
	if a.Parenthesized {
		return &GenericArgs{Parenthesized: true, Inputs: convertTypes(a.Inputs), Output: convertTypePtr(a.Output)}
	}
	out := &GenericArgs{}
	for _, arg := range a.Args {
		conv := GenericArg{ArgKind: string(arg.ArgKind), Lifetime: arg.Lifetime, Type: convertTypePtr(arg.Type)}
		if arg.Const != nil {
			c := convertConstant(*arg.Const)
			conv.Const = &c
		}
		out.Args = append(out.Args, conv)
	}
	for _, b := range a.Bindings {
		out.Bindings = append(out.Bindings, TypeBinding{
			Name:        b.Name,
			BindingKind: string(b.BindingKind),
			Type:        convertTypePtr(b.Type),
			Bounds:      convertBounds(b.Bounds),
		})
	}
	return out
}
