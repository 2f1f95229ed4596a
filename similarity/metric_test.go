package similarity

import (
	"math"
	"testing"

	"github.com/rushteam/cfkit/core"
)

func TestTanimoto_Similarity(t *testing.T) {
	tests := []struct {
		name string
		a    core.ItemSet
		b    core.ItemSet
		want float64
	}{
		{
			name: "partial overlap",
			a:    core.NewItemSet("A", "B"),
			b:    core.NewItemSet("A", "B", "C"),
			want: 2.0 / 3.0,
		},
		{
			name: "no overlap",
			a:    core.NewItemSet("A", "B"),
			b:    core.NewItemSet("C", "D"),
			want: 0,
		},
		{
			name: "identical sets",
			a:    core.NewItemSet("A", "B"),
			b:    core.NewItemSet("A", "B"),
			want: 1,
		},
		{
			name: "both empty",
			a:    core.ItemSet{},
			b:    core.ItemSet{},
			want: 0,
		},
		{
			name: "one empty",
			a:    core.NewItemSet("A"),
			b:    core.ItemSet{},
			want: 0,
		},
		{
			name: "disjoint singletons",
			a:    core.NewItemSet("A"),
			b:    core.NewItemSet("B"),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tanimoto{}.Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetrics_SymmetryAndRange(t *testing.T) {
	sets := []core.ItemSet{
		core.ItemSet{},
		core.NewItemSet("A"),
		core.NewItemSet("A", "B"),
		core.NewItemSet("A", "B", "C"),
		core.NewItemSet("C", "D"),
		core.NewItemSet("B", "C", "D", "E"),
	}
	metrics := []Metric{Tanimoto{}, Cosine{}, Dice{}}

	for _, m := range metrics {
		for _, a := range sets {
			for _, b := range sets {
				ab := m.Similarity(a, b)
				ba := m.Similarity(b, a)
				if ab != ba {
					t.Errorf("%s: similarity not symmetric: %v vs %v", m.Name(), ab, ba)
				}
				if ab < 0 || ab > 1 {
					t.Errorf("%s: similarity %v out of [0,1]", m.Name(), ab)
				}
			}
			// 非空集合与自身相似度为 1
			if len(a) > 0 {
				if got := m.Similarity(a, a); got != 1 {
					t.Errorf("%s: self similarity = %v, want 1", m.Name(), got)
				}
			}
		}
	}
}

func TestCosine_Similarity(t *testing.T) {
	a := core.NewItemSet("A", "B")
	b := core.NewItemSet("A", "B", "C")
	want := 2.0 / math.Sqrt(6.0)
	if got := (Cosine{}).Similarity(a, b); math.Abs(got-want) > 1e-12 {
		t.Errorf("Cosine = %v, want %v", got, want)
	}
}

func TestDice_Similarity(t *testing.T) {
	a := core.NewItemSet("A", "B")
	b := core.NewItemSet("A", "B", "C")
	want := 4.0 / 5.0
	if got := (Dice{}).Similarity(a, b); math.Abs(got-want) > 1e-12 {
		t.Errorf("Dice = %v, want %v", got, want)
	}
}

func TestMetricByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "tanimoto", want: "tanimoto"},
		{name: "jaccard", want: "tanimoto"},
		{name: "", want: "tanimoto"},
		{name: "cosine", want: "cosine"},
		{name: "dice", want: "dice"},
		{name: "unknown", want: "tanimoto"},
	}
	for _, tt := range tests {
		if got := MetricByName(tt.name).Name(); got != tt.want {
			t.Errorf("MetricByName(%q).Name() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
