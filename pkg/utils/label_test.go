package utils

import "testing"

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{"empty existing", Label{}, Label{Value: "hybrid", Source: "recall"}, Label{Value: "hybrid", Source: "recall"}},
		{"empty incoming", Label{Value: "hybrid", Source: "recall"}, Label{}, Label{Value: "hybrid", Source: "recall"}},
		{"accumulate", Label{Value: "hybrid", Source: "recall"}, Label{Value: "popular", Source: "service"}, Label{Value: "hybrid|popular", Source: "recall,service"}},
		{"dedupe value", Label{Value: "hybrid|popular", Source: "recall"}, Label{Value: "popular", Source: "recall"}, Label{Value: "hybrid|popular", Source: "recall"}},
		{"prefix is not a match", Label{Value: "pop", Source: "recall"}, Label{Value: "popular", Source: "recall"}, Label{Value: "pop|popular", Source: "recall"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeLabel(tt.existing, tt.incoming); got != tt.want {
				t.Errorf("MergeLabel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
