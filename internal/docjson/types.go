// Package docjson builds the flat, cross-referenced document form of a
// documentation tree: every item keyed by ID in one index, container
// bodies holding member IDs instead of subtrees, and impl/implementor
// relations resolved inline. The package also reads and writes the
// serialized document artifact.
package docjson

// FormatVersion identifies the document schema. Any change to the
// public shapes bumps it; documents carry the version they were built
// with and make no compatibility promise across versions.
const FormatVersion = 1

// ID is the opaque serialized form of an item identifier,
// "crate:index". IDs key the index and appear anywhere one item
// references another.
type ID string

// Crate is the complete assembled document.
type Crate struct {
	Root            ID                       `json:"root"`
	CrateVersion    *string                  `json:"crate_version"`
	IncludesPrivate bool                     `json:"includes_private"`
	Index           map[ID]Item              `json:"index"`
	Paths           map[ID]ItemSummary       `json:"paths"`
	ExternalCrates  map[uint32]ExternalCrate `json:"external_crates"`
	FormatVersion   int                      `json:"format_version"`
}

// ExternalCrate names a dependency crate and, when known, the root URL
// of its published documentation.
type ExternalCrate struct {
	Name        string  `json:"name"`
	HTMLRootURL *string `json:"html_root_url"`
}

// ItemSummary gives the fully qualified path and kind for an ID. The
// paths table covers every referenced ID, including external ones that
// have no index entry.
type ItemSummary struct {
	CrateID uint32   `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

// Item is one documented entity in the index.
type Item struct {
	ID          ID            `json:"id"`
	CrateID     uint32        `json:"crate_id"`
	Name        *string       `json:"name"`
	Span        *Span         `json:"span,omitempty"`
	Visibility  Visibility    `json:"visibility"`
	Docs        string        `json:"docs"`
	Links       map[string]ID `json:"links,omitempty"`
	Attrs       []string      `json:"attrs,omitempty"`
	Deprecation *Deprecation  `json:"deprecation,omitempty"`
	Kind        string        `json:"kind"`
	Inner       Body          `json:"-"`
}

// Span is a source location with zero-indexed line/column pairs.
type Span struct {
	Filename string `json:"filename"`
	Begin    [2]int `json:"begin"`
	End      [2]int `json:"end"`
}

// Deprecation is the #[deprecated] payload.
type Deprecation struct {
	Since *string `json:"since"`
	Note  *string `json:"note"`
}

// Visibility serializes as "public", "default" or "crate", or as
// {"restricted": {"parent": id, "path": "..."}}.
type Visibility struct {
	Level  string `json:"-"`
	Parent ID     `json:"-"`
	Path   string `json:"-"`
}

// Body is the kind-specific payload of an item. It serializes inside
// the item as a single-key object keyed by the body's tag, for example
// {"struct": {...}} or {"impl": {...}}.
type Body interface {
	tag() string
}

// Module lists its direct members by ID.
type Module struct {
	IsCrate bool `json:"is_crate"`
	Items   []ID `json:"items"`
}

func (Module) tag() string { return "module" }

// ExternCrateBody is an `extern crate` declaration.
type ExternCrateBody struct {
	Name   string  `json:"name"`
	Rename *string `json:"rename"`
}

func (ExternCrateBody) tag() string { return "extern_crate" }

// Import is a `use` declaration.
type Import struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	ID     *ID    `json:"id"`
	Glob   bool   `json:"glob"`
}

func (Import) tag() string { return "import" }

// Struct lists field members by ID, plus the implementation blocks
// targeting the type. Unions flatten into this shape as well.
type Struct struct {
	StructType     string   `json:"struct_type"`
	Generics       Generics `json:"generics"`
	FieldsStripped bool     `json:"fields_stripped"`
	Fields         []ID     `json:"fields"`
	Impls          []ID     `json:"impls"`
}

func (Struct) tag() string { return "struct" }

// StructField carries the field's declared type.
type StructField struct {
	Type Type `json:"type"`
}

func (StructField) tag() string { return "struct_field" }

// Enum lists variant members by ID, plus the implementation blocks
// targeting the type.
type Enum struct {
	Generics         Generics `json:"generics"`
	VariantsStripped bool     `json:"variants_stripped"`
	Variants         []ID     `json:"variants"`
	Impls            []ID     `json:"impls"`
}

func (Enum) tag() string { return "enum" }

// Variant is one enum variant: plain, tuple (payload types), or
// struct-like (a nested struct body listing field IDs).
type Variant struct {
	VariantKind string  `json:"-"`
	Types       []Type  `json:"-"`
	Struct      *Struct `json:"-"`
}

func (Variant) tag() string { return "variant" }

// FnHeader carries function qualifiers.
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

func (Function) tag() string { return "function" }

// Method is an associated function. HasBody is false for trait methods
// without a default implementation.
type Method struct {
	Decl     FnDecl   `json:"decl"`
	Generics Generics `json:"generics"`
	Header   FnHeader `json:"header"`
	HasBody  bool     `json:"has_body"`
}

func (Method) tag() string { return "method" }

// Trait lists associated members by ID and the implementation blocks
// implementing it.
type Trait struct {
	IsAuto       bool           `json:"is_auto"`
	IsUnsafe     bool           `json:"is_unsafe"`
	Items        []ID           `json:"items"`
	Generics     Generics       `json:"generics"`
	Bounds       []GenericBound `json:"bounds"`
	Implementors []ID           `json:"implementors"`
}

func (Trait) tag() string { return "trait" }

// TraitAlias is a `trait A = B + C` declaration.
type TraitAlias struct {
	Generics Generics       `json:"generics"`
	Bounds   []GenericBound `json:"bounds"`
}

func (TraitAlias) tag() string { return "trait_alias" }

// Impl binds member IDs to an interface/type pair. Trait is nil for
// inherent impls.
type Impl struct {
	IsUnsafe        bool     `json:"is_unsafe"`
	Generics        Generics `json:"generics"`
	ProvidedMethods []string `json:"provided_trait_methods"`
	Trait           *Type    `json:"trait"`
	For             Type     `json:"for"`
	Items           []ID     `json:"items"`
	Negative        bool     `json:"negative"`
	Synthetic       bool     `json:"synthetic"`
	BlanketImpl     *Type    `json:"blanket_impl"`
}

func (Impl) tag() string { return "impl" }

// Static is a `static` item.
type Static struct {
	Type    Type   `json:"type"`
	Mutable bool   `json:"mutable"`
	Expr    string `json:"expr"`
}

func (Static) tag() string { return "static" }

// ForeignType is an opaque `type` from an extern block.
type ForeignType struct{}

func (ForeignType) tag() string { return "foreign_type" }

// TypeAlias is a `type X = Y` declaration.
type TypeAlias struct {
	Type     Type     `json:"type"`
	Generics Generics `json:"generics"`
}

func (TypeAlias) tag() string { return "type_alias" }

// OpaqueType is an `impl Trait` in type-alias position.
type OpaqueType struct {
	Bounds   []GenericBound `json:"bounds"`
	Generics Generics       `json:"generics"`
}

func (OpaqueType) tag() string { return "opaque_type" }

// Constant is a `const` item.
type Constant struct {
	Type      Type    `json:"type"`
	Expr      string  `json:"expr"`
	Value     *string `json:"value"`
	IsLiteral bool    `json:"is_literal"`
}

func (Constant) tag() string { return "constant" }

// Macro is a declarative macro definition; the body is its source text.
type Macro string

func (Macro) tag() string { return "macro" }

// ProcMacro is a procedural macro definition.
type ProcMacro struct {
	MacroKind string   `json:"kind"`
	Helpers   []string `json:"helpers"`
}

func (ProcMacro) tag() string { return "proc_macro" }

// AssocConst is an associated constant.
type AssocConst struct {
	Type    Type    `json:"type"`
	Default *string `json:"default"`
}

func (AssocConst) tag() string { return "assoc_const" }

// AssocType is an associated type.
type AssocType struct {
	Bounds  []GenericBound `json:"bounds"`
	Default *Type          `json:"default"`
}

func (AssocType) tag() string { return "assoc_type" }

// StrippedBody wraps the body of an item hidden by a filtering pass.
type StrippedBody struct {
	Inner Body
}

func (StrippedBody) tag() string { return "stripped" }
