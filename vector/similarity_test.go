package vector

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"scaled", []float64{1, 2}, []float64{2, 4}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero", []float64{0, 0}, []float64{1, 1}, 0},
		{"partial", []float64{1, 4, 0}, []float64{5, 0, 1}, 5 / (math.Sqrt(17) * math.Sqrt(26))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > eps {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSparse(t *testing.T) {
	a := map[string]float64{"red": 1, "leather": 1, "jacket": 1}
	b := map[string]float64{"red": 1, "leather": 1, "bag": 1}
	c := map[string]float64{"blue": 1, "plastic": 1, "chair": 1}

	if got := CosineSparse(a, b); math.Abs(got-2.0/3.0) > eps {
		t.Errorf("CosineSparse(a,b) = %v, want 2/3", got)
	}
	if got := CosineSparse(a, c); got != 0 {
		t.Errorf("CosineSparse(a,c) = %v, want 0", got)
	}
	if got := CosineSparse(a, nil); got != 0 {
		t.Errorf("CosineSparse(a,nil) = %v, want 0", got)
	}
}

func TestNormalize(t *testing.T) {
	v := []float64{3, 4}
	Normalize(v)
	if math.Abs(Norm(v)-1) > eps {
		t.Fatalf("norm after Normalize = %v", Norm(v))
	}
	z := []float64{0, 0}
	Normalize(z)
	if z[0] != 0 || z[1] != 0 {
		t.Fatalf("zero vector changed: %v", z)
	}
}

func TestTopKStable(t *testing.T) {
	in := []Scored{{"a", 0.5}, {"b", 0.9}, {"c", 0.5}, {"d", 0.1}}
	got := TopK(in, 3)
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}
	if in[0].ID != "a" {
		t.Fatal("TopK must not reorder its input")
	}
	if all := TopK(in, 0); len(all) != 4 {
		t.Fatalf("k=0 should keep all, got %d", len(all))
	}
}

func TestRankMap(t *testing.T) {
	got := RankMap(map[string]float64{"x": 2, "b": 3, "a": 2, "z": 0})
	want := []string{"b", "a", "x"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}
}
