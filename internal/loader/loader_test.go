package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devbrain/datascript/internal/ast"
)

// stubParse builds a minimal *ast.Module recording one import declaration
// per importsOf, keyed by file path, with the package name pkgOf gives for
// that path, if any.
func stubParse(importsOf map[string][]*ast.ImportDecl, pkgOf map[string]string) func(string, []byte) (*ast.Module, error) {
	return func(file string, _ []byte) (*ast.Module, error) {
		abs, _ := filepath.Abs(file)
		m := &ast.Module{File: abs}
		if pkg, ok := pkgOf[abs]; ok && pkg != "" {
			m.Package = &ast.PackageDecl{Parts: []string{pkg}}
		}
		m.Imports = importsOf[abs]
		return m, nil
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadResolvesRegularImport(t *testing.T) {
	dir := t.TempDir()
	mainFile := filepath.Join(dir, "main.ds")
	depFile := filepath.Join(dir, "dep.ds")
	writeFile(t, mainFile, "")
	writeFile(t, depFile, "")

	mainAbs, _ := filepath.Abs(mainFile)
	depAbs, _ := filepath.Abs(depFile)

	parse := stubParse(map[string][]*ast.ImportDecl{
		mainAbs: {{Parts: []string{"dep"}}},
	}, nil)

	set, err := Load(mainFile, nil, parse)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set.Imported) != 1 {
		t.Fatalf("expected 1 imported module, got %d", len(set.Imported))
	}
	if set.Imported[0].FilePath != depAbs {
		t.Errorf("imported file = %q, want %q", set.Imported[0].FilePath, depAbs)
	}
}

func TestLoadImportNotFound(t *testing.T) {
	dir := t.TempDir()
	mainFile := filepath.Join(dir, "main.ds")
	writeFile(t, mainFile, "")
	mainAbs, _ := filepath.Abs(mainFile)

	parse := stubParse(map[string][]*ast.ImportDecl{
		mainAbs: {{Parts: []string{"missing"}}},
	}, nil)

	_, err := Load(mainFile, nil, parse)
	if err == nil {
		t.Fatal("expected an error for a missing import")
	}
	notFound, ok := err.(*ImportNotFoundError)
	if !ok {
		t.Fatalf("expected *ImportNotFoundError, got %T: %v", err, err)
	}
	if notFound.Name != "missing" {
		t.Errorf("Name = %q", notFound.Name)
	}
	if len(notFound.Checked) == 0 {
		t.Error("expected at least one searched path recorded")
	}
}

func TestLoadWildcardImportNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	mainFile := filepath.Join(dir, "main.ds")
	writeFile(t, mainFile, "")
	pkgDir := filepath.Join(dir, "pkg")
	writeFile(t, filepath.Join(pkgDir, "b10.ds"), "")
	writeFile(t, filepath.Join(pkgDir, "b2.ds"), "")
	writeFile(t, filepath.Join(pkgDir, "b1.ds"), "")

	mainAbs, _ := filepath.Abs(mainFile)
	parse := stubParse(map[string][]*ast.ImportDecl{
		mainAbs: {{Parts: []string{"pkg"}, IsWildcard: true}},
	}, nil)

	set, err := Load(mainFile, nil, parse)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set.Imported) != 3 {
		t.Fatalf("expected 3 wildcard-imported modules, got %d", len(set.Imported))
	}
	var names []string
	for _, m := range set.Imported {
		names = append(names, filepath.Base(m.FilePath))
	}
	want := []string{"b1.ds", "b2.ds", "b10.ds"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("natural order mismatch: got %v, want %v", names, want)
		}
	}
}

func TestLoadDedupesDiamondImport(t *testing.T) {
	dir := t.TempDir()
	mainFile := filepath.Join(dir, "main.ds")
	aFile := filepath.Join(dir, "a.ds")
	bFile := filepath.Join(dir, "b.ds")
	cFile := filepath.Join(dir, "c.ds")
	for _, f := range []string{mainFile, aFile, bFile, cFile} {
		writeFile(t, f, "")
	}
	mainAbs, _ := filepath.Abs(mainFile)
	aAbs, _ := filepath.Abs(aFile)
	bAbs, _ := filepath.Abs(bFile)

	parse := stubParse(map[string][]*ast.ImportDecl{
		mainAbs: {{Parts: []string{"a"}}, {Parts: []string{"b"}}},
		aAbs:    {{Parts: []string{"c"}}},
		bAbs:    {{Parts: []string{"c"}}},
	}, nil)

	set, err := Load(mainFile, nil, parse)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set.Imported) != 3 {
		t.Fatalf("expected a+b+c (c loaded once), got %d modules", len(set.Imported))
	}
}

func TestSearchPathsOrder(t *testing.T) {
	t.Setenv("DATASCRIPT_PATH", "/extra/one:/extra/two")
	paths := SearchPaths("/proj/main.ds", []string{"/user/path"})
	if paths[0] != "/proj" {
		t.Errorf("expected main file dir first, got %q", paths[0])
	}
	if paths[1] != "/user/path" {
		t.Errorf("expected user path second, got %q", paths[1])
	}
	foundEnv1, foundEnv2 := false, false
	for _, p := range paths {
		if p == "/extra/one" {
			foundEnv1 = true
		}
		if p == "/extra/two" {
			foundEnv2 = true
		}
	}
	if !foundEnv1 || !foundEnv2 {
		t.Errorf("expected both DATASCRIPT_PATH entries present, got %v", paths)
	}
}
