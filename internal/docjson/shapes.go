package docjson

// Type shape tags. A Type serializes as a single-key object keyed by
// its kind ({"slice": ...}), or as a bare string for the unit shapes
// "never" and "infer".
const (
	TypeResolvedPath    = "resolved_path"
	TypeGeneric         = "generic"
	TypePrimitive       = "primitive"
	TypeFunctionPointer = "function_pointer"
	TypeTuple           = "tuple"
	TypeSlice           = "slice"
	TypeArray           = "array"
	TypeImplTrait       = "impl_trait"
	TypeNever           = "never"
	TypeInfer           = "infer"
	TypeRawPointer      = "raw_pointer"
	TypeBorrowedRef     = "borrowed_ref"
	TypeQualifiedPath   = "qualified_path"
)

// Type is one type shape. Kind selects which fields are meaningful;
// see the model package's Type for the field-per-kind breakdown.
type Type struct {
	Kind       string
	Name       string
	ID         ID
	Args       *GenericArgs
	ParamNames []GenericBound
	FnPointer  *FunctionPointer
	Elements   []Type
	Elem       *Type
	Len        string
	Bounds     []GenericBound
	Lifetime   *string
	Mutable    bool
	SelfType   *Type
	Trait      *Type
}

// FunctionPointer is an `extern "ABI" fn` type.
type FunctionPointer struct {
	IsUnsafe      bool              `json:"is_unsafe"`
	GenericParams []GenericParamDef `json:"generic_params"`
	Decl          FnDecl            `json:"decl"`
	ABI           string            `json:"abi"`
}

// FnDecl is a function signature. Inputs serialize as [name, type]
// pairs.
type FnDecl struct {
	Inputs    []FnInput `json:"inputs"`
	Output    *Type     `json:"output"`
	CVariadic bool      `json:"c_variadic"`
}

// FnInput is one named parameter, serialized as a two-element array.
type FnInput struct {
	Name string
	Type Type
}

// Generics carries generic parameters and where clauses.
type Generics struct {
	Params          []GenericParamDef `json:"params"`
	WherePredicates []WherePredicate  `json:"where_predicates"`
}

// Generic parameter kinds.
const (
	ParamLifetime = "lifetime"
	ParamType     = "type"
	ParamConst    = "const"
)

// GenericParamDef is one declared generic parameter. The kind payload
// serializes externally tagged: "lifetime", {"type": {...}} or
// {"const": <type>}.
type GenericParamDef struct {
	Name      string
	ParamKind string
	Bounds    []GenericBound
	Default   *Type
	ConstType *Type
}

// Where-predicate kinds.
const (
	PredicateBound  = "bound_predicate"
	PredicateRegion = "region_predicate"
	PredicateEq     = "eq_predicate"
)

// WherePredicate is one where-clause entry, serialized externally
// tagged by predicate kind.
type WherePredicate struct {
	PredicateKind string
	Type          *Type
	Bounds        []GenericBound
	Lifetime      string
	RHS           *Type
}

// Generic bound kinds.
const (
	BoundTrait    = "trait_bound"
	BoundOutlives = "outlives"
)

// GenericBound is a trait bound or an outlives bound, serialized
// externally tagged.
type GenericBound struct {
	BoundKind     string
	Trait         *Type
	GenericParams []GenericParamDef
	Modifier      string
	Outlives      string
}

// GenericArgs is the argument list at a path use site: angle-bracketed
// (`<T, Item = U>`) or parenthesized Fn sugar (`(A, B) -> C`).
type GenericArgs struct {
	Parenthesized bool
	Args          []GenericArg
	Bindings      []TypeBinding
	Inputs        []Type
	Output        *Type
}

// Applied generic argument kinds.
const (
	ArgLifetime = "lifetime"
	ArgType     = "type"
	ArgConst    = "const"
)

// GenericArg is one applied argument, serialized externally tagged.
type GenericArg struct {
	ArgKind  string
	Lifetime string
	Type     *Type
	Const    *Constant
}

// Type binding kinds.
const (
	BindingEquality   = "equality"
	BindingConstraint = "constraint"
)

// TypeBinding is an associated-type binding inside generic args.
type TypeBinding struct {
	Name        string
	BindingKind string
	Type        *Type
	Bounds      []GenericBound
}
