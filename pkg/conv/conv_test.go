package conv

import "testing"

func TestToInt64(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{7, 7, true},
		{int64(9), 9, true},
		{7.9, 7, true},
		{" 14 ", 14, true},
		{"seven", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToInt64(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ToInt64(%v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestConfigGetters(t *testing.T) {
	cfg := map[string]any{
		"n":      3,
		"weight": 1,
		"ratio":  0.25,
		"dedup":  false,
		"ids":    []any{"a", 42, 1.0, map[string]any{}},
	}

	if got := ConfigGetInt64(cfg, "n", 0); got != 3 {
		t.Errorf("n = %d", got)
	}
	if got := ConfigGetInt64(cfg, "missing", 5); got != 5 {
		t.Errorf("missing = %d", got)
	}
	if got := ConfigGetFloat64(cfg, "weight", 0); got != 1 {
		t.Errorf("weight = %v", got)
	}
	if got := ConfigGetFloat64(cfg, "ratio", 0); got != 0.25 {
		t.Errorf("ratio = %v", got)
	}
	if got := ConfigGet(cfg, "dedup", true); got {
		t.Error("dedup should be false")
	}
	if got := ConfigGet(cfg, "n", "x"); got != "x" {
		t.Errorf("type mismatch should return default, got %q", got)
	}
	if got := ConfigGet[string](nil, "n", "d"); got != "d" {
		t.Errorf("nil map = %q", got)
	}

	ids := SliceAnyToString(cfg["ids"])
	want := []string{"a", "42", "1"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}
