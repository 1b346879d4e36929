package mathx

import "testing"

func TestClamp(t *testing.T) {
	for _, c := range []struct{ v, lo, hi, want float32 }{
		{-5, 0, 100, 0},
		{105, 0, 100, 100},
		{42.5, 0, 100, 42.5},
		{7, 10, 0, 7},
		{-1, 10, 0, 0},
	} {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Fatalf("Clamp(%v,%v,%v) = %v, want %v", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestBetween(t *testing.T) {
	if !Between(0, 0, 23) || !Between(23, 0, 23) || Between(24, 0, 23) || Between(-1, 0, 23) {
		t.Fatal("Between must be inclusive at both ends")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(5, 4) != 1 || Wrap(-1, 4) != 3 || Wrap(8, 4) != 0 || Wrap(3, 0) != 0 {
		t.Fatal("unexpected Wrap result")
	}
}
