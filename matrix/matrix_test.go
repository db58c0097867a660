package matrix

import (
	"testing"

	"github.com/merobazar/recsys/core"
)

func ia(user, item string, kind core.InteractionKind) core.Interaction {
	return core.Interaction{UserID: user, ItemID: item, Kind: kind, Weight: 1}
}

func TestBuildEmpty(t *testing.T) {
	m := Build(nil)
	if !m.Empty() {
		t.Fatal("expected empty matrix")
	}
	if len(m.Values) != 0 || len(m.Items) != 0 || len(m.UserIndex) != 0 || len(m.ItemIndex) != 0 {
		t.Fatalf("expected 0x0 matrix, got %+v", m)
	}
	if _, ok := m.Row("u1"); ok {
		t.Fatal("Row on empty matrix should report missing")
	}
}

func TestBuild(t *testing.T) {
	snapshot := []core.Interaction{
		ia("u1", "i1", core.KindView),
		ia("u1", "i2", core.KindCart),
		ia("u2", "i1", core.KindPurchase),
		ia("u2", "i3", core.KindView),
		ia("u1", "i1", core.KindClick),
	}
	m := Build(snapshot)

	if got, want := m.Users, []string{"u1", "u2"}; !equal(got, want) {
		t.Fatalf("Users = %v, want %v", got, want)
	}
	if got, want := m.Items, []string{"i1", "i2", "i3"}; !equal(got, want) {
		t.Fatalf("Items = %v, want %v", got, want)
	}

	tests := []struct {
		user, item string
		want       float64
	}{
		{"u1", "i1", 3},
		{"u1", "i2", 4},
		{"u1", "i3", 0},
		{"u2", "i1", 5},
		{"u2", "i3", 1},
		{"u3", "i1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.user+"/"+tt.item, func(t *testing.T) {
			if got := m.Cell(tt.user, tt.item); got != tt.want {
				t.Errorf("Cell = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildIgnoresAccumulatedWeight(t *testing.T) {
	in := ia("u1", "i1", core.KindCart)
	in.Weight = 7
	m := Build([]core.Interaction{in})
	if got := m.Cell("u1", "i1"); got != 4 {
		t.Fatalf("Cell = %v, want kind strength 4", got)
	}
}

func TestBuildIndexesAreFresh(t *testing.T) {
	a := Build([]core.Interaction{ia("u1", "i1", core.KindView)})
	b := Build([]core.Interaction{ia("u2", "i2", core.KindView), ia("u1", "i1", core.KindView)})
	if a.UserIndex["u1"] != 0 || b.UserIndex["u1"] != 1 {
		t.Fatalf("indexes leaked across builds: %v %v", a.UserIndex, b.UserIndex)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
