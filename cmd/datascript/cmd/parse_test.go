package cmd

import "testing"

func TestParseModuleRejectsSyntaxErrors(t *testing.T) {
	_, err := parseModule("bad.ds", []byte("struct S { uint32 }"))
	if err == nil {
		t.Fatal("expected a syntax error for a field with no name")
	}
}

func TestParseModuleAcceptsValidSchema(t *testing.T) {
	m, err := parseModule("ok.ds", []byte("struct S {\n\tuint32 x;\n};\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Structs) != 1 || m.Structs[0].Name != "S" {
		t.Fatalf("expected a single struct S, got %+v", m.Structs)
	}
}
