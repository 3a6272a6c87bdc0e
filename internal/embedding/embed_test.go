package embedding

import "testing"

func TestEmbedLengthAndRange(t *testing.T) {
	vector := Embed("I love plants", 1536)
	if len(vector) != 1536 {
		t.Fatalf("expected 1536 dimensions, got %d", len(vector))
	}
	for i, value := range vector {
		if value < 0 || value > 1 {
			t.Fatalf("component %d out of range: %f", i, value)
		}
	}
}

func TestEmbedDeterministic(t *testing.T) {
	a := Embed("same input", 64)
	b := Embed("same input", 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %f vs %f", i, a[i], b[i])
		}
	}
	c := Embed("different input", 64)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different inputs produced identical vectors")
	}
}

func TestEmbedZeroDimensions(t *testing.T) {
	if Embed("anything", 0) != nil {
		t.Fatal("expected nil vector for zero dimensions")
	}
}
