package tool

import (
	"reflect"
	"testing"
)

func TestSanitizeOutput_StringLeaves(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"script tag", `before<script>alert(1)</script>after`, "beforeafter"},
		{"script tag with attrs", `<script type="text/javascript">x</script>ok`, "ok"},
		{"javascript uri", `click javascript:alert(1)`, "click alert(1)"},
		{"event handler", `<img onerror=hack()>`, `<img hack()>`},
		{"clean", "plain text stays", "plain text stays"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeOutput(tt.in); got != tt.want {
				t.Errorf("SanitizeOutput(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeOutput_DropsMetaKeys(t *testing.T) {
	in := map[string]any{
		"__proto__": "bad",
		"$where":    "bad",
		"name":      "<script>x</script>ok",
		"nested": map[string]any{
			"__hidden": 1,
			"value":    "fine",
		},
	}

	got, ok := SanitizeOutput(in).(map[string]any)
	if !ok {
		t.Fatalf("got %T", SanitizeOutput(in))
	}
	if _, exists := got["__proto__"]; exists {
		t.Error("__proto__ not dropped")
	}
	if _, exists := got["$where"]; exists {
		t.Error("$where not dropped")
	}
	if got["name"] != "ok" {
		t.Errorf("name = %v", got["name"])
	}
	nested := got["nested"].(map[string]any)
	if _, exists := nested["__hidden"]; exists {
		t.Error("nested __hidden not dropped")
	}
	if nested["value"] != "fine" {
		t.Errorf("nested value = %v", nested["value"])
	}
}

func TestWrapForModel(t *testing.T) {
	wrapped := WrapForModel([]any{"a", "b", "c"})
	want := map[string]any{"count": 3, "items": []any{"a", "b", "c"}}
	if !reflect.DeepEqual(wrapped, want) {
		t.Errorf("WrapForModel = %v, want %v", wrapped, want)
	}

	// 非数组输出原样返回
	if got := WrapForModel("scalar"); got != "scalar" {
		t.Errorf("WrapForModel(scalar) = %v", got)
	}
}
