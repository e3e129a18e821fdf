// Package model defines the documentation tree handed over by the front
// end: a crate root module with nested items, plus the companion tables
// (paths, external crates, impl relations) built during tree construction.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// LocalCrate is the crate number of the crate being documented.
const LocalCrate uint32 = 0

// ItemID identifies one documented entity by its defining location:
// the originating crate number and the entity's index within that crate.
// The same entity reached through different paths always carries the
// same ID.
type ItemID struct {
	Crate uint32
	Index uint32
}

// IsLocal reports whether the item is defined in the crate being
// documented rather than in a dependency.
func (id ItemID) IsLocal() bool {
	return id.Crate == LocalCrate
}

// String renders the ID in its serialized "crate:index" form.
func (id ItemID) String() string {
	return fmt.Sprintf("%d:%d", id.Crate, id.Index)
}

// MarshalText implements encoding.TextMarshaler so IDs can key JSON maps.
func (id ItemID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ItemID) UnmarshalText(text []byte) error {
	parsed, err := ParseItemID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseItemID parses the "crate:index" form.
func ParseItemID(s string) (ItemID, error) {
	crateStr, indexStr, ok := strings.Cut(s, ":")
	if !ok {
		return ItemID{}, fmt.Errorf("malformed item id %q: missing separator", s)
	}
	crate, err := strconv.ParseUint(crateStr, 10, 32)
	if err != nil {
		return ItemID{}, fmt.Errorf("malformed item id %q: %w", s, err)
	}
	index, err := strconv.ParseUint(indexStr, 10, 32)
	if err != nil {
		return ItemID{}, fmt.Errorf("malformed item id %q: %w", s, err)
	}
	return ItemID{Crate: uint32(crate), Index: uint32(index)}, nil
}

// Kind discriminates item bodies.
type Kind string

const (
	KindModule          Kind = "module"
	KindExternCrate     Kind = "extern_crate"
	KindImport          Kind = "import"
	KindStruct          Kind = "struct"
	KindUnion           Kind = "union"
	KindStructField     Kind = "struct_field"
	KindEnum            Kind = "enum"
	KindVariant         Kind = "variant"
	KindFunction        Kind = "function"
	KindForeignFunction Kind = "foreign_function"
	KindTrait           Kind = "trait"
	KindTraitAlias      Kind = "trait_alias"
	KindMethod          Kind = "method"
	KindRequiredMethod  Kind = "required_method"
	KindImpl            Kind = "impl"
	KindStatic          Kind = "static"
	KindForeignStatic   Kind = "foreign_static"
	KindForeignType     Kind = "foreign_type"
	KindTypeAlias       Kind = "type_alias"
	KindOpaqueType      Kind = "opaque_type"
	KindConstant        Kind = "constant"
	KindMacro           Kind = "macro"
	KindProcMacro       Kind = "proc_macro"
	KindAssocConst      Kind = "assoc_const"
	KindAssocType       Kind = "assoc_type"
	KindStripped        Kind = "stripped"

	// Pseudo-items the front end synthesizes for language primitives and
	// keywords. They exist in the tree but have no output representation.
	KindPrimitive Kind = "primitive"
	KindKeyword   Kind = "keyword"
)

// Item is one documented entity in the tree. Bodies embed full child
// items, so a struct carries its field items, an enum its variants, and
// so on; the flat output form is produced later by the render pass.
type Item struct {
	ID          ItemID
	Name        string // empty for unnamed items such as impl blocks
	Span        *Span
	Visibility  Visibility
	Docs        string
	Attrs       []string
	Deprecation *Deprecation
	Inner       Body
}

// Kind returns the discriminant of the item's body, or "" for an item
// with no body.
func (it *Item) Kind() Kind {
	if it.Inner == nil {
		return ""
	}
	return it.Inner.Kind()
}

// Span is a source location. Lines and columns are zero-indexed.
type Span struct {
	Filename string `json:"filename"`
	Begin    [2]int `json:"begin"`
	End      [2]int `json:"end"`
}

// Deprecation carries the #[deprecated] attribute payload.
type Deprecation struct {
	Since *string `json:"since"`
	Note  *string `json:"note"`
}

// Visibility of an item. Parent and Path are set only for Restricted
// ("pub(in path)") visibility.
type Visibility struct {
	Level  VisLevel `json:"level"`
	Parent *ItemID  `json:"parent,omitempty"`
	Path   string   `json:"path,omitempty"`
}

type VisLevel string

const (
	VisPublic     VisLevel = "public"
	VisDefault    VisLevel = "default"
	VisCrate      VisLevel = "crate"
	VisRestricted VisLevel = "restricted"
)

// Body is the kind-specific payload of an item.
type Body interface {
	Kind() Kind
}

// Module lists the items declared directly inside it. Children are full
// subtrees; the walker delivers them as their own visits.
type Module struct {
	IsCrate bool   `json:"is_crate"`
	Items   []Item `json:"items"`
}

func (Module) Kind() Kind { return KindModule }

// ExternCrate is an `extern crate` declaration.
type ExternCrate struct {
	Name   string  `json:"name"`
	Rename *string `json:"rename"`
}

func (ExternCrate) Kind() Kind { return KindExternCrate }

// Import is a `use` declaration.
type Import struct {
	Source string  `json:"source"`
	Name   string  `json:"name"`
	ID     *ItemID `json:"id"`
	Glob   bool    `json:"glob"`
}

func (Import) Kind() Kind { return KindImport }

// StructType distinguishes the three struct declaration forms.
type StructType string

const (
	StructPlain StructType = "plain"
	StructTuple StructType = "tuple"
	StructUnit  StructType = "unit"
)

// Struct owns its field items.
type Struct struct {
	StructType     StructType `json:"struct_type"`
	Generics       Generics   `json:"generics"`
	FieldsStripped bool       `json:"fields_stripped"`
	Fields         []Item     `json:"fields"`
}

func (Struct) Kind() Kind { return KindStruct }

// Union owns its field items. Unions share the struct output shape.
type Union struct {
	Generics       Generics `json:"generics"`
	FieldsStripped bool     `json:"fields_stripped"`
	Fields         []Item   `json:"fields"`
}

func (Union) Kind() Kind { return KindUnion }

// StructField carries the field's declared type.
type StructField struct {
	Type Type `json:"type"`
}

func (StructField) Kind() Kind { return KindStructField }

// Enum owns its variant items.
type Enum struct {
	Generics         Generics `json:"generics"`
	VariantsStripped bool     `json:"variants_stripped"`
	Variants         []Item   `json:"variants"`
}

func (Enum) Kind() Kind { return KindEnum }

// VariantForm distinguishes plain, tuple, and struct-like variants.
type VariantForm string

const (
	VariantPlain  VariantForm = "plain"
	VariantTuple  VariantForm = "tuple"
	VariantStruct VariantForm = "struct"
)

// Variant is one enum variant. Tuple variants carry payload types;
// struct-like variants own field items of their own.
type Variant struct {
	Form   VariantForm `json:"form"`
	Types  []Type      `json:"types,omitempty"`
	Fields []Item      `json:"fields,omitempty"`
}

func (Variant) Kind() Kind { return KindVariant }

// FnHeader carries function qualifiers as they appeared in source.
type FnHeader struct {
	Const  bool   `json:"const"`
	Unsafe bool   `json:"unsafe"`
	Async  bool   `json:"async"`
	ABI    string `json:"abi"`
}

// Function is a free function.
type Function struct {
	Decl     FnDecl   `json:"decl"`
	Generics Generics `json:"generics"`
	Header   FnHeader `json:"header"`
}

func (Function) Kind() Kind { return KindFunction }

// ForeignFunction is a function declared in an extern block.
type ForeignFunction struct {
	Decl     FnDecl   `json:"decl"`
	Generics Generics `json:"generics"`
	Header   FnHeader `json:"header"`
}

func (ForeignFunction) Kind() Kind { return KindForeignFunction }

// Method is an associated function with a body (inherent or provided).
type Method struct {
	Decl     FnDecl   `json:"decl"`
	Generics Generics `json:"generics"`
	Header   FnHeader `json:"header"`
	HasBody  bool     `json:"has_body"`
}

func (Method) Kind() Kind { return KindMethod }

// RequiredMethod is a trait method without a default body.
type RequiredMethod struct {
	Decl     FnDecl   `json:"decl"`
	Generics Generics `json:"generics"`
	Header   FnHeader `json:"header"`
}

func (RequiredMethod) Kind() Kind { return KindRequiredMethod }

// Trait owns its associated-member items. Implementors are not part of
// the body; they live in the crate's relation tables.
type Trait struct {
	IsAuto   bool           `json:"is_auto"`
	IsUnsafe bool           `json:"is_unsafe"`
	Items    []Item         `json:"items"`
	Generics Generics       `json:"generics"`
	Bounds   []GenericBound `json:"bounds"`
}

func (Trait) Kind() Kind { return KindTrait }

// TraitAlias is a `trait A = B + C` declaration.
type TraitAlias struct {
	Generics Generics       `json:"generics"`
	Bounds   []GenericBound `json:"bounds"`
}

func (TraitAlias) Kind() Kind { return KindTraitAlias }

// Impl is an implementation block: the members it provides for an
// interface/type pair (or inherent members when Trait is nil).
type Impl struct {
	IsUnsafe        bool     `json:"is_unsafe"`
	Generics        Generics `json:"generics"`
	ProvidedMethods []string `json:"provided_trait_methods"`
	Trait           *Type    `json:"trait"`
	For             Type     `json:"for"`
	Items           []Item   `json:"items"`
	Negative        bool     `json:"negative"`
	Synthetic       bool     `json:"synthetic"`
	BlanketImpl     *Type    `json:"blanket_impl"`
}

func (Impl) Kind() Kind { return KindImpl }

// Static is a `static` item.
type Static struct {
	Type    Type   `json:"type"`
	Mutable bool   `json:"mutable"`
	Expr    string `json:"expr"`
}

func (Static) Kind() Kind { return KindStatic }

// ForeignStatic is a static declared in an extern block.
type ForeignStatic struct {
	Type    Type `json:"type"`
	Mutable bool `json:"mutable"`
}

func (ForeignStatic) Kind() Kind { return KindForeignStatic }

// ForeignType is an opaque `type` from an extern block.
type ForeignType struct{}

func (ForeignType) Kind() Kind { return KindForeignType }

// TypeAlias is a `type X = Y` declaration.
type TypeAlias struct {
	Type     Type     `json:"type"`
	Generics Generics `json:"generics"`
}

func (TypeAlias) Kind() Kind { return KindTypeAlias }

// OpaqueType is an `impl Trait` in type-alias position.
type OpaqueType struct {
	Bounds   []GenericBound `json:"bounds"`
	Generics Generics       `json:"generics"`
}

func (OpaqueType) Kind() Kind { return KindOpaqueType }

// Constant is a `const` item or an expression in const position.
type Constant struct {
	Type      Type    `json:"type"`
	Expr      string  `json:"expr"`
	Value     *string `json:"value"`
	IsLiteral bool    `json:"is_literal"`
}

func (Constant) Kind() Kind { return KindConstant }

// Macro is a declarative macro_rules! definition, stored as source text.
type Macro struct {
	Source string `json:"source"`
}

func (Macro) Kind() Kind { return KindMacro }

// MacroKind distinguishes the proc-macro flavors.
type MacroKind string

const (
	MacroBang   MacroKind = "bang"
	MacroAttr   MacroKind = "attr"
	MacroDerive MacroKind = "derive"
)

// ProcMacro is a procedural macro definition.
type ProcMacro struct {
	MacroKind MacroKind `json:"macro_kind"`
	Helpers   []string  `json:"helpers"`
}

func (ProcMacro) Kind() Kind { return KindProcMacro }

// AssocConst is an associated constant in a trait or impl.
type AssocConst struct {
	Type    Type    `json:"type"`
	Default *string `json:"default"`
}

func (AssocConst) Kind() Kind { return KindAssocConst }

// AssocType is an associated type in a trait or impl.
type AssocType struct {
	Bounds  []GenericBound `json:"bounds"`
	Default *Type          `json:"default"`
}

func (AssocType) Kind() Kind { return KindAssocType }

// Stripped wraps the body of an item hidden by a filtering pass, such
// as a private field when private items are excluded.
type Stripped struct {
	Inner Body `json:"-"`
}

func (Stripped) Kind() Kind { return KindStripped }

// Primitive is a pseudo-item documenting a language primitive.
type Primitive struct {
	Name string `json:"name"`
}

func (Primitive) Kind() Kind { return KindPrimitive }

// Keyword is a pseudo-item documenting a language keyword.
type Keyword struct {
	Name string `json:"name"`
}

func (Keyword) Kind() Kind { return KindKeyword }

// TypeKind discriminates type shapes.
type TypeKind string

const (
	TypeResolvedPath    TypeKind = "resolved_path"
	TypeGeneric         TypeKind = "generic"
	TypePrimitive       TypeKind = "primitive"
	TypeFunctionPointer TypeKind = "function_pointer"
	TypeTuple           TypeKind = "tuple"
	TypeSlice           TypeKind = "slice"
	TypeArray           TypeKind = "array"
	TypeImplTrait       TypeKind = "impl_trait"
	TypeNever           TypeKind = "never"
	TypeInfer           TypeKind = "infer"
	TypeRawPointer      TypeKind = "raw_pointer"
	TypeBorrowedRef     TypeKind = "borrowed_ref"
	TypeQualifiedPath   TypeKind = "qualified_path"
)

// Type is one type shape. Kind selects which fields are meaningful:
//
//	resolved_path    Name, ID, Args, ParamNames
//	generic          Name (the parameter name)
//	primitive        Name (e.g. "u32")
//	function_pointer FnPointer
//	tuple            Elements
//	slice            Elem
//	array            Elem, Len
//	impl_trait       Bounds
//	never, infer     no fields
//	raw_pointer      Mutable, Elem
//	borrowed_ref     Lifetime, Mutable, Elem
//	qualified_path   Name, SelfType, Trait
type Type struct {
	Kind       TypeKind         `json:"kind"`
	Name       string           `json:"name,omitempty"`
	ID         *ItemID          `json:"id,omitempty"`
	Args       *GenericArgs     `json:"args,omitempty"`
	ParamNames []GenericBound   `json:"param_names,omitempty"`
	FnPointer  *FunctionPointer `json:"fn_pointer,omitempty"`
	Elements   []Type           `json:"elements,omitempty"`
	Elem       *Type            `json:"elem,omitempty"`
	Len        string           `json:"len,omitempty"`
	Bounds     []GenericBound   `json:"bounds,omitempty"`
	Lifetime   *string          `json:"lifetime,omitempty"`
	Mutable    bool             `json:"mutable,omitempty"`
	SelfType   *Type            `json:"self_type,omitempty"`
	Trait      *Type            `json:"trait,omitempty"`
}

// FunctionPointer is an `extern "ABI" fn` type.
type FunctionPointer struct {
	IsUnsafe      bool              `json:"is_unsafe"`
	GenericParams []GenericParamDef `json:"generic_params"`
	Decl          FnDecl            `json:"decl"`
	ABI           string            `json:"abi"`
}

// FnDecl is a function signature: named inputs and an optional output.
type FnDecl struct {
	Inputs    []FnInput `json:"inputs"`
	Output    *Type     `json:"output"`
	CVariadic bool      `json:"c_variadic"`
}

// FnInput is one named function parameter.
type FnInput struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Generics carries an item's generic parameters and where clauses.
type Generics struct {
	Params          []GenericParamDef `json:"params"`
	WherePredicates []WherePredicate  `json:"where_predicates"`
}

// GenericParamKind discriminates generic parameter declarations.
type GenericParamKind string

const (
	ParamLifetime GenericParamKind = "lifetime"
	ParamType     GenericParamKind = "type"
	ParamConst    GenericParamKind = "const"
)

// GenericParamDef is one declared generic parameter. Bounds and Default
// apply to type parameters; ConstType to const parameters.
type GenericParamDef struct {
	Name      string           `json:"name"`
	ParamKind GenericParamKind `json:"param_kind"`
	Bounds    []GenericBound   `json:"bounds,omitempty"`
	Default   *Type            `json:"default,omitempty"`
	ConstType *Type            `json:"const_type,omitempty"`
}

// PredicateKind discriminates where-clause predicates.
type PredicateKind string

const (
	PredicateBound  PredicateKind = "bound"
	PredicateRegion PredicateKind = "region"
	PredicateEq     PredicateKind = "eq"
)

// WherePredicate is one where-clause entry.
type WherePredicate struct {
	PredicateKind PredicateKind  `json:"predicate_kind"`
	Type          *Type          `json:"type,omitempty"`
	Bounds        []GenericBound `json:"bounds,omitempty"`
	Lifetime      string         `json:"lifetime,omitempty"`
	RHS           *Type          `json:"rhs,omitempty"`
}

// BoundKind discriminates generic bounds.
type BoundKind string

const (
	BoundTrait    BoundKind = "trait_bound"
	BoundOutlives BoundKind = "outlives"
)

// TraitBoundModifier is the ?/const modifier on a trait bound.
type TraitBoundModifier string

const (
	ModifierNone       TraitBoundModifier = "none"
	ModifierMaybe      TraitBoundModifier = "maybe"
	ModifierMaybeConst TraitBoundModifier = "maybe_const"
)

// GenericBound is one bound: a trait bound or a lifetime outlives.
type GenericBound struct {
	BoundKind     BoundKind          `json:"bound_kind"`
	Trait         *Type              `json:"trait,omitempty"`
	GenericParams []GenericParamDef  `json:"generic_params,omitempty"`
	Modifier      TraitBoundModifier `json:"modifier,omitempty"`
	Outlives      string             `json:"outlives,omitempty"`
}

// GenericArgs is the argument list applied at a path use site.
type GenericArgs struct {
	// angle_bracketed form
	Args     []GenericArg  `json:"args,omitempty"`
	Bindings []TypeBinding `json:"bindings,omitempty"`
	// parenthesized (Fn-sugar) form
	Parenthesized bool   `json:"parenthesized,omitempty"`
	Inputs        []Type `json:"inputs,omitempty"`
	Output        *Type  `json:"output,omitempty"`
}

// GenericArgKind discriminates applied generic arguments.
type GenericArgKind string

const (
	ArgLifetime GenericArgKind = "lifetime"
	ArgType     GenericArgKind = "type"
	ArgConst    GenericArgKind = "const"
)

// GenericArg is one applied generic argument.
type GenericArg struct {
	ArgKind  GenericArgKind `json:"arg_kind"`
	Lifetime string         `json:"lifetime,omitempty"`
	Type     *Type          `json:"type,omitempty"`
	Const    *Constant      `json:"const,omitempty"`
}

// BindingKind discriminates associated-type bindings.
type BindingKind string

const (
	BindingEquality   BindingKind = "equality"
	BindingConstraint BindingKind = "constraint"
)

// TypeBinding is an associated-type binding inside generic args,
// such as `Item = u32` or `Item: Display`.
type TypeBinding struct {
	Name        string         `json:"name"`
	BindingKind BindingKind    `json:"binding_kind"`
	Type        *Type          `json:"type,omitempty"`
	Bounds      []GenericBound `json:"bounds,omitempty"`
}

// PathEntry is the fully qualified path and kind recorded for an ID in
// the crate's path table.
type PathEntry struct {
	Crate uint32   `json:"crate"`
	Path  []string `json:"path"`
	Kind  Kind     `json:"kind"`
}

// ExternalCrateInfo names a dependency crate and, when known, the root
// URL of its published documentation.
type ExternalCrateInfo struct {
	Name        string  `json:"name"`
	HTMLRootURL *string `json:"html_root_url"`
}

// Crate is the complete documentation tree plus the companion tables
// the front end builds while constructing it.
type Crate struct {
	Name            string
	Version         *string
	IncludesPrivate bool

	// Module is the crate root; its ID is the document root identifier.
	Module Item

	// Impls maps a nominal type's ID to the implementation blocks
	// targeting it. Implementors maps a trait's ID to the blocks
	// implementing it. Both preserve the front end's recording order
	// and are read-only during rendering.
	Impls        map[ItemID][]Item
	Implementors map[ItemID][]Item

	// Paths covers every ID referenced anywhere in the tree, local or
	// external. ExternalCrates maps crate numbers to dependency info.
	Paths          map[ItemID]PathEntry
	ExternalCrates map[uint32]ExternalCrateInfo
}
