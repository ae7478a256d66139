package hostinfo

import "testing"

func TestLogicalCPUsPositive(t *testing.T) {
	if n := LogicalCPUs(); n <= 0 {
		t.Fatalf("expected positive cpu count, got %d", n)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want int }{
		{1, 2, 8, 2},
		{2, 2, 8, 2},
		{5, 2, 8, 5},
		{64, 2, 8, 8},
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Fatalf("Clamp(%d,%d,%d)=%d want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
}
