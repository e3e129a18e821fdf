package docjson

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"cratedoc/internal/model"
)

func TestItemGolden(t *testing.T) {
	t.Parallel()

	r := NewRenderer(&model.Crate{Name: "sample"}, Options{SkipDocLinks: true})
	s := structItem(lid(20), "Widget", fieldItem(lid(21), "size"))
	if err := r.Item(&s); err != nil {
		t.Fatalf("Item: %v", err)
	}

	cases := []struct {
		id   ID
		want string
	}{
		{
			id: "0:20",
			want: `{"id":"0:20","crate_id":0,"name":"Widget","visibility":"public","docs":"","kind":"struct",` +
				`"inner":{"struct":{"struct_type":"plain","generics":{"params":[],"where_predicates":[]},` +
				`"fields_stripped":false,"fields":["0:21"],"impls":[]}}}`,
		},
		{
			id: "0:21",
			want: `{"id":"0:21","crate_id":0,"name":"size","visibility":"public","docs":"","kind":"struct_field",` +
				`"inner":{"struct_field":{"type":{"primitive":"u32"}}}}`,
		},
	}
	for _, tc := range cases {
		got, err := json.Marshal(r.index[tc.id])
		if err != nil {
			t.Fatalf("Marshal(%s): %v", tc.id, err)
		}
		if string(got) != tc.want {
			t.Errorf("item %s:\n got %s\nwant %s", tc.id, got, tc.want)
		}
	}
}

func TestDocumentGolden(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(validDoc())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	prefix := `{"root":"0:0","crate_version":"0.1.0","includes_private":false,"index":`
	if !strings.HasPrefix(string(data), prefix) {
		t.Errorf("envelope prefix = %.80s, want %s", data, prefix)
	}
	suffix := `"external_crates":{},"format_version":1}`
	if !strings.HasSuffix(string(data), suffix) {
		t.Errorf("envelope suffix missing %s", suffix)
	}
}

func TestItemRoundTrip(t *testing.T) {
	t.Parallel()

	method := Item{
		ID:         "0:31",
		CrateID:    0,
		Name:       strPtr("draw"),
		Visibility: Visibility{Level: "public"},
		Docs:       "Draws the thing.",
		Kind:       "method",
		Inner: Method{
			Decl: FnDecl{
				Inputs: []FnInput{
					{Name: "self", Type: Type{Kind: TypeBorrowedRef, Elem: &Type{Kind: TypeGeneric, Name: "Self"}}},
					{Name: "depth", Type: Type{Kind: TypePrimitive, Name: "u32"}},
				},
			},
			Generics: Generics{Params: []GenericParamDef{}, WherePredicates: []WherePredicate{}},
			HasBody:  true,
		},
	}

	data, err := json.Marshal(method)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"inputs":[["self",`) {
		t.Errorf("inputs not encoded as pairs: %s", data)
	}

	var back Item
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, method) {
		t.Errorf("round trip:\n got %+v\nwant %+v", back, method)
	}
}

func TestTypeEncoding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		typ  Type
		want string
	}{
		{"primitive", Type{Kind: TypePrimitive, Name: "u32"}, `{"primitive":"u32"}`},
		{"generic", Type{Kind: TypeGeneric, Name: "T"}, `{"generic":"T"}`},
		{"never", Type{Kind: TypeNever}, `"never"`},
		{"infer", Type{Kind: TypeInfer}, `"infer"`},
		{
			"slice",
			Type{Kind: TypeSlice, Elem: &Type{Kind: TypePrimitive, Name: "u8"}},
			`{"slice":{"primitive":"u8"}}`,
		},
		{
			"tuple",
			Type{Kind: TypeTuple, Elements: []Type{{Kind: TypePrimitive, Name: "i32"}, {Kind: TypeGeneric, Name: "T"}}},
			`{"tuple":[{"primitive":"i32"},{"generic":"T"}]}`,
		},
		{
			"borrowed_ref",
			Type{Kind: TypeBorrowedRef, Lifetime: strPtr("'a"), Mutable: true, Elem: &Type{Kind: TypeGeneric, Name: "T"}},
			`{"borrowed_ref":{"lifetime":"'a","mutable":true,"type":{"generic":"T"}}}`,
		},
		{
			"array",
			Type{Kind: TypeArray, Elem: &Type{Kind: TypePrimitive, Name: "u8"}, Len: "16"},
			`{"array":{"type":{"primitive":"u8"},"len":"16"}}`,
		},
		{
			"qualified_path",
			Type{
				Kind: TypeQualifiedPath, Name: "Output",
				SelfType: &Type{Kind: TypeGeneric, Name: "Self"},
				Trait:    &Type{Kind: TypeResolvedPath, Name: "Add", ID: "2:7"},
			},
			`{"qualified_path":{"name":"Output","self_type":{"generic":"Self"},` +
				`"trait":{"resolved_path":{"name":"Add","id":"2:7","args":null,"param_names":null}}}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(tc.typ)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tc.want {
				t.Errorf("Marshal = %s, want %s", data, tc.want)
			}
			var back Type
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !reflect.DeepEqual(back, tc.typ) {
				t.Errorf("round trip:\n got %+v\nwant %+v", back, tc.typ)
			}
		})
	}
}

func TestResolvedPathWithArgs(t *testing.T) {
	t.Parallel()

	typ := Type{
		Kind: TypeResolvedPath, Name: "Iterator", ID: "2:9",
		Args: &GenericArgs{
			Bindings: []TypeBinding{
				{Name: "Item", BindingKind: BindingEquality, Type: &Type{Kind: TypePrimitive, Name: "u32"}},
			},
		},
	}

	data, err := json.Marshal(typ)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"resolved_path":{"name":"Iterator","id":"2:9",` +
		`"args":{"angle_bracketed":{"args":null,"bindings":[{"name":"Item","binding":{"equality":{"primitive":"u32"}}}]}},` +
		`"param_names":null}}`
	if string(data) != want {
		t.Errorf("Marshal:\n got %s\nwant %s", data, want)
	}

	var back Type
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, typ) {
		t.Errorf("round trip:\n got %+v\nwant %+v", back, typ)
	}
}

func TestVisibilityEncoding(t *testing.T) {
	t.Parallel()

	restricted := Visibility{Level: "restricted", Parent: "0:5", Path: "crate::detail"}
	data, err := json.Marshal(restricted)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"restricted":{"parent":"0:5","path":"crate::detail"}}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
	var back Visibility
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != restricted {
		t.Errorf("round trip = %+v", back)
	}

	data, err = json.Marshal(Visibility{Level: "crate"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"crate"` {
		t.Errorf("Marshal = %s, want \"crate\"", data)
	}
}

func TestVariantEncoding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		variant Variant
		want    string
	}{
		{"plain", Variant{VariantKind: "plain"}, `{"variant_kind":"plain"}`},
		{
			"tuple",
			Variant{VariantKind: "tuple", Types: []Type{{Kind: TypePrimitive, Name: "f64"}}},
			`{"variant_kind":"tuple","inner":[{"primitive":"f64"}]}`,
		},
		{
			"struct",
			Variant{VariantKind: "struct", Struct: &Struct{
				StructType: "plain",
				Generics:   Generics{Params: []GenericParamDef{}, WherePredicates: []WherePredicate{}},
				Fields:     []ID{"0:3"},
				Impls:      []ID{},
			}},
			`{"variant_kind":"struct","inner":{"struct_type":"plain",` +
				`"generics":{"params":[],"where_predicates":[]},"fields_stripped":false,"fields":["0:3"],"impls":[]}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(tc.variant)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tc.want {
				t.Errorf("Marshal:\n got %s\nwant %s", data, tc.want)
			}
			var back Variant
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !reflect.DeepEqual(back, tc.variant) {
				t.Errorf("round trip:\n got %+v\nwant %+v", back, tc.variant)
			}
		})
	}
}

func TestStrippedBodyNesting(t *testing.T) {
	t.Parallel()

	body, err := marshalBody(StrippedBody{Inner: Module{IsCrate: false, Items: []ID{"0:4"}}})
	if err != nil {
		t.Fatalf("marshalBody: %v", err)
	}
	want := `{"stripped":{"module":{"is_crate":false,"items":["0:4"]}}}`
	if string(body) != want {
		t.Errorf("marshalBody = %s, want %s", body, want)
	}

	back, err := unmarshalBody(body)
	if err != nil {
		t.Fatalf("unmarshalBody: %v", err)
	}
	stripped, ok := back.(StrippedBody)
	if !ok {
		t.Fatalf("body = %T", back)
	}
	mod, ok := stripped.Inner.(Module)
	if !ok || len(mod.Items) != 1 || mod.Items[0] != "0:4" {
		t.Errorf("inner = %+v", stripped.Inner)
	}
}

func TestGenericParamDefEncoding(t *testing.T) {
	t.Parallel()

	lifetime := GenericParamDef{Name: "'a", ParamKind: ParamLifetime}
	data, err := json.Marshal(lifetime)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"name":"'a","kind":"lifetime"}` {
		t.Errorf("Marshal = %s", data)
	}

	typed := GenericParamDef{
		Name:      "T",
		ParamKind: ParamType,
		Bounds: []GenericBound{
			{BoundKind: BoundTrait, Trait: &Type{Kind: TypeResolvedPath, Name: "Clone", ID: "2:3"}, Modifier: "none"},
		},
	}
	data, err = json.Marshal(typed)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back GenericParamDef
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, typed) {
		t.Errorf("round trip:\n got %+v\nwant %+v", back, typed)
	}
}

func TestUnmarshalBodyErrors(t *testing.T) {
	t.Parallel()

	if _, err := unmarshalBody(json.RawMessage(`{"widget":{}}`)); err == nil || !strings.Contains(err.Error(), "unknown body tag") {
		t.Errorf("err = %v, want unknown body tag", err)
	}
	if _, err := unmarshalBody(json.RawMessage(`{"struct":{},"enum":{}}`)); err == nil {
		t.Error("expected error for two-key body")
	}

	var in FnInput
	if err := json.Unmarshal([]byte(`["only_name"]`), &in); err == nil {
		t.Error("expected error for one-element pair")
	}
}
