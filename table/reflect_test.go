package table

import (
	"fmt"
	"reflect"
	"testing"
)

// Structure traversal tests

type S1 struct {
	X int    `desc:"x field" alias:"xx"`
	Y string `desc:"y field"`
	Z int
}

func TestDefineTableFromTags(t *testing.T) {
	v1 := S1{X: 10, Y: "twenty", Z: 30}
	fs := DefineTableFromTags(reflect.TypeFor[S1](), nil)
	if s := fs["X"].Fmt(&v1, PrintMods(0)); s != "10" {
		t.Fatalf("X %s", s)
	}
	if s := fs["xx"].Fmt(&v1, PrintMods(0)); s != "10" {
		t.Fatalf("xx %s", s)
	}
	if fs["xx"].AliasOf != "X" {
		t.Fatalf("xx alias %s", fs["xx"].AliasOf)
	}
	if s := fs["Y"].Fmt(&v1, PrintMods(0)); s != "twenty" {
		t.Fatalf("Y %s", s)
	}
	if fs["X"].Help != "x field" {
		t.Fatalf("X help %s", fs["X"].Help)
	}
	// No desc annotation, no formatter
	if _, found := fs["Z"]; found {
		t.Fatal("Z should be excluded")
	}
}

func TestDefineTableFromTagsExcluded(t *testing.T) {
	fs := DefineTableFromTags(reflect.TypeFor[S1](), map[string]bool{"Y": true})
	if _, found := fs["Y"]; found {
		t.Fatal("Y should be excluded")
	}
	if _, found := fs["X"]; !found {
		t.Fatal("X should be present")
	}
}

// Field formatter tests

type tstringer int

func (t tstringer) String() string {
	if t < 0 {
		return ""
	}
	return fmt.Sprintf("+%d+", int(t))
}

func TestReflectStringer(t *testing.T) {
	type st struct {
		V tstringer
	}
	sf := reflectTypeFormatter(0, reflect.TypeFor[tstringer]())
	if s := sf(st{33}, PrintModNoDefaults); s != "+33+" {
		t.Fatalf("stringer %s", s)
	}
	if s := sf(st{-1}, PrintModNoDefaults); s != "*skip*" {
		t.Fatalf("stringer %s", s)
	}
}

func TestReflectBool(t *testing.T) {
	type st struct {
		V bool
	}
	sf := reflectTypeFormatter(0, reflect.TypeFor[bool]())
	if s := sf(st{true}, 0); s != "yes" {
		t.Fatalf("bool %s", s)
	}
	if s := sf(st{false}, 0); s != "no" {
		t.Fatalf("bool %s", s)
	}
	if s := sf(st{false}, PrintModNoDefaults); s != "*skip*" {
		t.Fatalf("bool %s", s)
	}
}

func TestReflectInt64(t *testing.T) {
	type st struct {
		V int64
	}
	sf := reflectTypeFormatter(0, reflect.TypeFor[int64]())
	if s := sf(st{37}, 0); s != "37" {
		t.Fatalf("int64 %s", s)
	}
	if s := sf(st{-4}, 0); s != "-4" {
		t.Fatalf("int64 %s", s)
	}
	if s := sf(st{0}, PrintModNoDefaults); s != "*skip*" {
		t.Fatalf("int64 %s", s)
	}
}

func TestReflectFloat64(t *testing.T) {
	type st struct {
		V float64
	}
	sf := reflectTypeFormatter(0, reflect.TypeFor[float64]())
	if s := sf(st{13.75}, 0); s != "13.75" {
		t.Fatalf("float64 %s", s)
	}
	if s := sf(st{0}, PrintModNoDefaults); s != "*skip*" {
		t.Fatalf("float64 %s", s)
	}
}

func TestReflectString(t *testing.T) {
	type st struct {
		V string
	}
	sf := reflectTypeFormatter(0, reflect.TypeFor[string]())
	if s := sf(st{"hi there"}, 0); s != "hi there" {
		t.Fatalf("string %s", s)
	}
	if s := sf(st{"hi there"}, PrintModNoDefaults); s != "hi there" {
		t.Fatalf("string %s", s)
	}
	if s := sf(st{""}, PrintModNoDefaults); s != "*skip*" {
		t.Fatalf("string %s", s)
	}
}
