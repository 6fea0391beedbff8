package lumen

import "testing"

type fakeSourceReader map[string]string

func (f fakeSourceReader) ReadSource(path string) (string, error) {
	src, ok := f[path]
	if !ok {
		return "", &ModuleError{Path: path, Msg: "no such file"}
	}
	return src, nil
}

func newTestRegistryAndTypes() (*Registry, *typeTable) {
	tt := newTypeTable()
	registerPrimitiveTypes(tt)
	reg := NewRegistry()
	registerBuiltinOperators(reg, tt)
	return reg, tt
}

func TestModuleLoadAndUse(t *testing.T) {
	reader := fakeSourceReader{"math.lumen": "let pi = 3;"}
	loader := NewModuleLoader(reader)
	reg, tt := newTestRegistryAndTypes()

	modVal, err := loader.Load("math.lumen", reg, tt)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := Unwrap[*ModuleRecord](modVal, TypeModule)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := rec.Get("pi")
	if !ok || v.MustInt() != 3 {
		t.Fatalf("got %+v ok=%v", v, ok)
	}
}

func TestModuleLoadCachesByPath(t *testing.T) {
	reader := fakeSourceReader{"m.lumen": "let x = 1;"}
	loader := NewModuleLoader(reader)
	reg, tt := newTestRegistryAndTypes()

	v1, err := loader.Load("m.lumen", reg, tt)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := loader.Load("m.lumen", reg, tt)
	if err != nil {
		t.Fatal(err)
	}
	rec1, _ := Unwrap[*ModuleRecord](v1, TypeModule)
	rec2, _ := Unwrap[*ModuleRecord](v2, TypeModule)
	if rec1 != rec2 {
		t.Fatal("expected the second load to return the cached record")
	}
}

func TestModuleImportCycleFails(t *testing.T) {
	reader := fakeSourceReader{"a.lumen": `let x = import "a.lumen";`}
	loader := NewModuleLoader(reader)
	reg, tt := newTestRegistryAndTypes()

	_, err := loader.Load("a.lumen", reg, tt)
	if err == nil {
		t.Fatal("expected a ModuleError for a self-import cycle")
	}
	if _, ok := err.(*ModuleError); !ok {
		t.Fatalf("expected *ModuleError, got %T: %v", err, err)
	}
}

func TestModuleMissingSourceFails(t *testing.T) {
	reader := fakeSourceReader{}
	loader := NewModuleLoader(reader)
	reg, tt := newTestRegistryAndTypes()

	_, err := loader.Load("missing.lumen", reg, tt)
	if err == nil {
		t.Fatal("expected an error for a missing module source")
	}
}
