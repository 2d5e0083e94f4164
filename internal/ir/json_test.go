package ir_test

import (
	"testing"

	"github.com/devbrain/datascript/internal/ir"
	"github.com/gkampitakis/go-snaps/snaps"
)

func TestMarshalIRRoundTripsViaGjson(t *testing.T) {
	src := `
struct Header {
	uint32 magic;
	uint16 version;
};
`
	b, _ := buildBundle(t, src)
	raw, err := ir.MarshalIR(b)
	if err != nil {
		t.Fatalf("MarshalIR: %v", err)
	}

	if got := ir.Query(raw, "entity_count").Int(); got != 1 {
		t.Errorf("entity_count = %d, want 1", got)
	}
	if got := ir.Query(raw, "entities.0.name").String(); got != "Header" {
		t.Errorf("entities.0.name = %q, want Header", got)
	}
	if got := ir.Query(raw, "entities.0.body.0.name").String(); got != "magic" {
		t.Errorf("entities.0.body.0.name = %q, want magic", got)
	}
	if got := ir.Query(raw, "entities.0.body.1.type.bits").Int(); got != 16 {
		t.Errorf("version bits = %d, want 16", got)
	}
}

func TestMarshalIRBundleShapeSnapshot(t *testing.T) {
	src := `
enum Flavor : uint8 { Red, Green, Blue };

struct Header {
	uint32 magic;
	Flavor flavor;
	uint8 count;
	uint32 payload[count];
};
`
	b, _ := buildBundle(t, src)
	raw, err := ir.MarshalIR(b)
	if err != nil {
		t.Fatalf("MarshalIR: %v", err)
	}
	snaps.MatchJSON(t, raw)
}
