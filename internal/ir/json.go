package ir

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MarshalIR renders the bundle to its JSON wire form: an "entities" array
// in Bundle order plus an "entity_count" convenience field, with
// every reference already
// resolved to a bundle-local index or a tagged kind. Each entity's
// payload is a dynamically-shaped object (only the keys its own kind
// uses), so it's assembled with sjson rather than a single struct tag
// set that would otherwise have to carry every kind's fields on every
// entity.
func MarshalIR(b *Bundle) ([]byte, error) {
	entities := make([]map[string]any, len(b.Entities))
	for i, e := range b.Entities {
		entities[i] = entityJSON(e)
	}
	entitiesJSON, err := json.Marshal(entities)
	if err != nil {
		return nil, fmt.Errorf("ir: marshal entities: %w", err)
	}

	doc := []byte("{}")
	doc, err = sjson.SetRawBytes(doc, "entities", entitiesJSON)
	if err != nil {
		return nil, fmt.Errorf("ir: set entities: %w", err)
	}
	doc, err = sjson.SetBytes(doc, "entity_count", len(b.Entities))
	if err != nil {
		return nil, fmt.Errorf("ir: set entity_count: %w", err)
	}
	return doc, nil
}

// Query runs a gjson path against a bundle already rendered by
// MarshalIR, for callers (tests, CLI inspection) that want a single
// value out of the bundle without unmarshaling the whole document.
func Query(raw []byte, path string) gjson.Result {
	return gjson.GetBytes(raw, path)
}

func entityJSON(e *Entity) map[string]any {
	m := map[string]any{
		"kind":    e.Kind.String(),
		"name":    e.Name,
		"package": e.Package,
	}
	if e.Doc != "" {
		m["doc"] = e.Doc
	}
	switch e.Kind {
	case EntConstant:
		m["type"] = typeRefJSON(e.Constant.Type)
		m["value"] = e.Constant.Value
		m["signed"] = e.Constant.Signed
		if e.Constant.Poisoned {
			m["poisoned"] = true
		}
	case EntSubtype:
		m["base"] = typeRefJSON(e.Subtype.Base)
		if e.Subtype.Constraint != nil {
			m["constraint"] = exprJSON(e.Subtype.Constraint)
		}
	case EntTypeAlias:
		m["target"] = typeRefJSON(e.TypeAlias.Target)
	case EntEnum:
		m["base"] = typeRefJSON(e.Enum.Base)
		m["is_bitmask"] = e.Enum.IsBitmask
		items := make([]map[string]any, len(e.Enum.Items))
		for i, it := range e.Enum.Items {
			items[i] = map[string]any{"name": it.Name, "value": it.Value}
		}
		m["items"] = items
	case EntStruct:
		m["params"] = paramsJSON(e.Struct.Params)
		m["body"] = bodyJSON(e.Struct.Body)
	case EntUnion:
		m["params"] = paramsJSON(e.Union.Params)
		cases := make([]map[string]any, len(e.Union.Cases))
		for i, c := range e.Union.Cases {
			cm := map[string]any{"name": c.Name, "body": bodyJSON(c.Body)}
			if c.Condition != nil {
				cm["condition"] = exprJSON(c.Condition)
			}
			cases[i] = cm
		}
		m["cases"] = cases
	case EntChoice:
		m["params"] = paramsJSON(e.Choice.Params)
		disc := map[string]any{}
		if e.Choice.Discriminator.External != nil {
			disc["external"] = exprJSON(e.Choice.Discriminator.External)
		} else {
			disc["inline"] = typeRefJSON(e.Choice.Discriminator.Inline)
		}
		m["discriminator"] = disc
		cases := make([]map[string]any, len(e.Choice.Cases))
		for i, c := range e.Choice.Cases {
			cm := map[string]any{"is_default": c.IsDefault, "kind": selectorKindName(c.Kind), "field_name": c.FieldName, "body": bodyJSON(c.Body)}
			if c.RangeBound != nil {
				cm["range_bound"] = exprJSON(c.RangeBound)
			}
			if len(c.Values) > 0 {
				values := make([]map[string]any, len(c.Values))
				for j, v := range c.Values {
					values[j] = exprJSON(v)
				}
				cm["values"] = values
			}
			cases[i] = cm
		}
		m["cases"] = cases
	}
	return m
}

func paramsJSON(params []ParamInfo) []map[string]any {
	out := make([]map[string]any, len(params))
	for i, p := range params {
		out[i] = map[string]any{"name": p.Name, "type": typeRefJSON(p.Type)}
	}
	return out
}

func bodyJSON(body []*BodyEntry) []map[string]any {
	out := make([]map[string]any, len(body))
	for i, entry := range body {
		switch entry.Kind {
		case BodyField:
			f := entry.Field
			fm := map[string]any{"kind": "field", "name": f.Name, "type": typeRefJSON(f.Type), "offset": f.Offset}
			if f.Guard != nil {
				fm["guard"] = exprJSON(f.Guard)
			}
			if f.Constraint != nil {
				fm["constraint"] = exprJSON(f.Constraint)
			}
			if f.Default != nil {
				fm["default"] = exprJSON(f.Default)
			}
			if f.Doc != "" {
				fm["doc"] = f.Doc
			}
			out[i] = fm
		case BodyLabel:
			out[i] = map[string]any{"kind": "label", "offset": exprJSON(entry.LabelOffset)}
		case BodyAlign:
			out[i] = map[string]any{"kind": "align", "to": exprJSON(entry.AlignTo)}
		}
	}
	return out
}

func typeRefJSON(t *TypeRef) map[string]any {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case RefPrimitive:
		return map[string]any{"kind": "primitive", "signed": t.Primitive.Signed, "bits": t.Primitive.Bits, "big_endian": t.Primitive.BigEndian}
	case RefBitfield:
		return map[string]any{"kind": "bitfield", "width": exprJSON(t.BitWidth)}
	case RefBool:
		return map[string]any{"kind": "bool"}
	case RefString:
		return map[string]any{"kind": "string", "width": t.String.Width, "big_endian": t.String.BigEndian}
	case RefArray:
		m := map[string]any{"kind": "array", "element": typeRefJSON(t.Element), "sizing": arraySizingName(t.Sizing)}
		if t.Size != nil {
			m["size"] = exprJSON(t.Size)
		}
		if t.Min != nil {
			m["min"] = exprJSON(t.Min)
		}
		if t.Max != nil {
			m["max"] = exprJSON(t.Max)
		}
		return m
	case RefEntity:
		return map[string]any{"kind": "entity_ref", "entity_index": t.EntityIndex}
	}
	return nil
}

func exprJSON(e *Expr) map[string]any {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ExprIntLit:
		return map[string]any{"kind": "int", "value": e.IntValue}
	case ExprBoolLit:
		return map[string]any{"kind": "bool", "value": e.BoolValue}
	case ExprStringLit:
		return map[string]any{"kind": "string", "value": e.StringValue}
	case ExprFieldRef:
		return map[string]any{"kind": "field_ref", "name": e.FieldName}
	case ExprConstRef:
		return map[string]any{"kind": "const_ref", "entity_index": e.ConstIndex}
	case ExprParamRef:
		return map[string]any{"kind": "param_ref", "index": e.ParamIndex, "name": e.ParamName}
	case ExprEnumItemRef:
		return map[string]any{"kind": "enum_item_ref", "entity_index": e.EnumIndex, "item": e.EnumItemName}
	case ExprUnary:
		return map[string]any{"kind": "unary", "op": e.Op, "operand": exprJSON(e.Operand)}
	case ExprBinary:
		return map[string]any{"kind": "binary", "op": e.Op, "left": exprJSON(e.Left), "right": exprJSON(e.Right)}
	case ExprTernary:
		return map[string]any{"kind": "ternary", "cond": exprJSON(e.Cond), "then": exprJSON(e.Then), "else": exprJSON(e.Else)}
	case ExprFieldAccess:
		return map[string]any{"kind": "field_access", "object": exprJSON(e.Object), "field": e.Field}
	case ExprIndex:
		return map[string]any{"kind": "index", "array": exprJSON(e.Array), "index": exprJSON(e.Index)}
	case ExprCall:
		args := make([]map[string]any, len(e.Args))
		for i, a := range e.Args {
			args[i] = exprJSON(a)
		}
		return map[string]any{"kind": "call", "callee": e.Callee, "args": args}
	}
	return nil
}

func arraySizingName(s ArraySizing) string {
	switch s {
	case ArraySizeFixed:
		return "fixed"
	case ArraySizeRanged:
		return "ranged"
	case ArraySizeUnsized:
		return "unsized"
	}
	return "unknown"
}

func selectorKindName(k SelectorKind) string {
	switch k {
	case SelectorExact:
		return "exact"
	case SelectorGE:
		return ">="
	case SelectorGT:
		return ">"
	case SelectorLE:
		return "<="
	case SelectorLT:
		return "<"
	case SelectorNE:
		return "!="
	}
	return "?"
}
