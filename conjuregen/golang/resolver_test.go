package golang

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/conjure/conjuregen/spec"
)

const testPkg = "com.example.test"

func object(name string, fields ...spec.FieldDefinition) *spec.ObjectDefinition {
	return &spec.ObjectDefinition{Name: spec.TypeName{Name: name, Package: testPkg}, Fields: fields}
}

func alias(name string, target spec.Type) *spec.AliasDefinition {
	return &spec.AliasDefinition{Name: spec.TypeName{Name: name, Package: testPkg}, Alias: target}
}

func field(name string, t spec.Type) spec.FieldDefinition {
	return spec.FieldDefinition{FieldName: name, Type: t}
}

func ref(name string) *spec.ReferenceType {
	return spec.Ref(testPkg, name)
}

func tn(name string) spec.TypeName {
	return spec.TypeName{Name: name, Package: testPkg}
}

func newTestResolver(t *testing.T, cfg GeneratorConfig, types ...spec.TypeDefinition) (*Resolver, error) {
	t.Helper()
	if cfg.ModulePrefix == "" {
		cfg.ModulePrefix = "example.com/out"
	}
	def := &spec.ConjureDefinition{Version: 1, Types: types}
	pkgs := newPackageMap(cfg)
	index := NewIndex(def)
	names := NewContext(func(tn spec.TypeName) string { return pkgs.forType(tn).ImportPath })
	require.NoError(t, names.RegisterTypes(index.Names()))
	return newResolver(index, pkgs, names, cfg)
}

func render(s fmt.GoStringer) string {
	return s.GoString()
}

func TestResolver_Primitives(t *testing.T) {
	r, err := newTestResolver(t, GeneratorConfig{})
	require.NoError(t, err)

	tests := []struct {
		in   spec.Type
		want string
	}{
		{spec.String(), "string"},
		{spec.Integer(), "int32"},
		{spec.Boolean(), "bool"},
		{spec.Double(), "conjure.Double"},
		{spec.Safelong(), "conjure.SafeLong"},
		{spec.Binary(), "conjure.Binary"},
		{spec.Primitive(spec.PrimitiveAny), "any"},
		{spec.Primitive(spec.PrimitiveUUID), "conjure.UUID"},
		{spec.Primitive(spec.PrimitiveRID), "conjure.RID"},
		{spec.Primitive(spec.PrimitiveBearertoken), "conjure.BearerToken"},
		{spec.Primitive(spec.PrimitiveDatetime), "conjure.DateTime"},
		{spec.Optional(spec.String()), "*string"},
		{spec.List(spec.Integer()), "[]int32"},
		{spec.Set(spec.String()), "[]string"},
		{spec.Map(spec.String(), spec.Double()), "map[string]conjure.Double"},
		{spec.Map(spec.Boolean(), spec.String()), "map[conjure.Boolean]string"},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, err := r.Resolve(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, render(got))
		})
	}
}

func TestResolver_UnknownReference(t *testing.T) {
	r, err := newTestResolver(t, GeneratorConfig{})
	require.NoError(t, err)

	_, err = r.Resolve(ref("Missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownReference))
}

func TestResolver_MapKeys(t *testing.T) {
	r, err := newTestResolver(t, GeneratorConfig{},
		object("Obj"),
		alias("Id", spec.String()),
		alias("Blob", spec.Binary()),
		&spec.EnumDefinition{Name: tn("Color"), Values: []spec.EnumValueDefinition{{Value: "RED"}}},
	)
	require.NoError(t, err)

	valid := []spec.Type{spec.String(), spec.Integer(), spec.Boolean(), spec.Primitive(spec.PrimitiveUUID), ref("Id"), ref("Color")}
	for _, k := range valid {
		_, err := r.Resolve(spec.Map(k, spec.String()))
		assert.NoError(t, err, "key %s", k)
	}

	invalid := []spec.Type{
		spec.Binary(),
		spec.Primitive(spec.PrimitiveAny),
		spec.Optional(spec.String()),
		spec.List(spec.String()),
		spec.Map(spec.String(), spec.String()),
		ref("Obj"),
		ref("Blob"),
	}
	for _, k := range invalid {
		_, err := r.Resolve(spec.Map(k, spec.String()))
		require.Error(t, err, "key %s", k)
		assert.True(t, errors.Is(err, ErrUnsupported), "key %s", k)
	}
}

func TestResolver_Cycles(t *testing.T) {
	t.Run("mutual by value", func(t *testing.T) {
		r, err := newTestResolver(t, GeneratorConfig{},
			object("A", field("b", ref("B"))),
			object("B", field("a", ref("A"))),
		)
		require.NoError(t, err)
		assert.True(t, r.Boxed(tn("A"), ref("B")))
		assert.True(t, r.Boxed(tn("B"), ref("A")))

		got, err := r.ResolveField(tn("A"), ref("B"))
		require.NoError(t, err)
		assert.Equal(t, "*test.B", render(got))
	})

	t.Run("through list", func(t *testing.T) {
		r, err := newTestResolver(t, GeneratorConfig{},
			object("A", field("bs", spec.List(ref("B")))),
			object("B", field("a", ref("A"))),
		)
		require.NoError(t, err)
		assert.False(t, r.Boxed(tn("B"), ref("A")))
		assert.False(t, r.Boxed(tn("A"), spec.List(ref("B"))))
	})

	t.Run("self through optional", func(t *testing.T) {
		r, err := newTestResolver(t, GeneratorConfig{},
			object("Node", field("next", spec.Optional(ref("Node")))),
		)
		require.NoError(t, err)
		assert.False(t, r.Boxed(tn("Node"), spec.Optional(ref("Node"))))
	})

	t.Run("self by value", func(t *testing.T) {
		r, err := newTestResolver(t, GeneratorConfig{},
			object("Node", field("next", ref("Node"))),
		)
		require.NoError(t, err)
		assert.True(t, r.Boxed(tn("Node"), ref("Node")))
	})

	t.Run("through alias", func(t *testing.T) {
		r, err := newTestResolver(t, GeneratorConfig{},
			object("A", field("b", ref("BAlias"))),
			alias("BAlias", ref("B")),
			object("B", field("a", ref("A"))),
		)
		require.NoError(t, err)
		assert.True(t, r.Boxed(tn("A"), ref("BAlias")))
		assert.True(t, r.Boxed(tn("B"), ref("A")))
	})

	t.Run("unrelated", func(t *testing.T) {
		r, err := newTestResolver(t, GeneratorConfig{},
			object("A", field("b", ref("B"))),
			object("B"),
		)
		require.NoError(t, err)
		assert.False(t, r.Boxed(tn("A"), ref("B")))
	})

	t.Run("alias only", func(t *testing.T) {
		_, err := newTestResolver(t, GeneratorConfig{},
			alias("X", ref("Y")),
			alias("Y", ref("X")),
		)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupported))
		assert.Contains(t, err.Error(), "alias cycle")
	})
}

func TestResolver_RequiredAndEmpty(t *testing.T) {
	r, err := newTestResolver(t, GeneratorConfig{},
		alias("Names", spec.List(spec.String())),
		alias("MaybeName", spec.Optional(spec.String())),
		alias("Name", spec.String()),
	)
	require.NoError(t, err)

	tests := []struct {
		in       spec.Type
		required bool
		empty    EmptyKind
	}{
		{spec.String(), true, EmptyNone},
		{spec.Optional(spec.String()), false, EmptyNil},
		{spec.List(spec.String()), false, EmptyLen},
		{spec.Set(spec.String()), false, EmptyLen},
		{spec.Map(spec.String(), spec.String()), false, EmptyLen},
		{ref("Names"), false, EmptyLen},
		{ref("MaybeName"), false, EmptyAliasOptional},
		{ref("Name"), true, EmptyNone},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.required, r.IsRequired(tt.in))
			assert.Equal(t, tt.empty, r.EmptyCheck(tt.in))
		})
	}
}

func TestResolver_ExternalTypes(t *testing.T) {
	mapped := &spec.ExternalType{
		ExternalReference: spec.TypeName{Name: "Instant", Package: "java.time"},
		Fallback:          spec.String(),
	}
	unmapped := &spec.ExternalType{
		ExternalReference: spec.TypeName{Name: "Duration", Package: "java.time"},
		Fallback:          spec.Safelong(),
	}

	r, err := newTestResolver(t, GeneratorConfig{
		ExternalTypes: map[string]string{"java.time.Instant": "time.Time"},
	})
	require.NoError(t, err)

	got, err := r.Resolve(mapped)
	require.NoError(t, err)
	assert.Equal(t, "time.Time", render(got))
	assert.Empty(t, r.Warnings())

	got, err = r.Resolve(unmapped)
	require.NoError(t, err)
	assert.Equal(t, "conjure.SafeLong", render(got))

	// Warned once per external type.
	_, err = r.Resolve(unmapped)
	require.NoError(t, err)
	require.Len(t, r.Warnings(), 1)
	assert.Equal(t, "external_fallback", r.Warnings()[0].Code)

	bad, err := newTestResolver(t, GeneratorConfig{
		ExternalTypes: map[string]string{"java.time.Instant": "Time"},
	})
	require.NoError(t, err)
	_, err = bad.Resolve(mapped)
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestResolver_CrossPackage(t *testing.T) {
	other := &spec.AliasDefinition{
		Name:  spec.TypeName{Name: "Id", Package: "com.example.common"},
		Alias: spec.String(),
	}
	r, err := newTestResolver(t, GeneratorConfig{StripPackagePrefix: "com.example"}, other)
	require.NoError(t, err)

	got, err := r.Resolve(spec.Ref("com.example.common", "Id"))
	require.NoError(t, err)
	assert.Equal(t, "common.Id", render(got))
}
