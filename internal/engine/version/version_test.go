package version

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want []int
	}{
		{"1.2.3", []int{1, 2, 3}},
		{"v2.1", []int{2, 1, 0}},
		{"1.x.3", []int{1, 0, 3}},
		{"", []int{0, 0, 0}},
		{"abc", []int{0, 0, 0}},
		{"1.2.3-beta+build", []int{1, 2, 3}},
		{"3-rc1", []int{3, 0, 0}},
		{"1.2.3.4", []int{1, 2, 3, 4}},
		{"2.0.0~alpha", []int{2, 0, 0}},
		{"v1", []int{1, 0, 0}},
	}

	for _, tc := range cases {
		got := Parse(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
				break
			}
		}
	}
}

func TestParseMinimumLength(t *testing.T) {
	for _, in := range []string{"", "abc", "1", "1.2", "weird~~string", "...."} {
		if got := Parse(in); len(got) < 3 {
			t.Errorf("Parse(%q) returned %d components, want >= 3", in, len(got))
		}
	}
}

func TestParseCacheDoesNotAlias(t *testing.T) {
	a := Parse("9.8.7")
	a[0] = 42
	b := Parse("9.8.7")
	if b[0] != 9 {
		t.Fatalf("cached parse result was mutated through a caller slice: %v", b)
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.2.0", -1},
		{"2.0.0", "1.9.9", 1},
		{"v1.0.0", "1.0.0", 0},
		{"1.0", "1.0.0", 0},
		{"1.2.3", "1.2.3.0", -1},
		{"1.2.3.0", "1.2.3", 1},
		{"1.0.0-alpha", "1.0.0", 0},
		{"abc", "", 0},
		{"0.1", "0.0.9", 1},
	}

	for _, tc := range cases {
		if got := Compare(tc.a, tc.b); got != tc.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCompareAntisymmetric(t *testing.T) {
	versions := []string{"1.0.0", "1.2.0", "2.0.0", "v1.0", "1.0.0.1", "0.9", "abc", ""}
	for _, a := range versions {
		for _, b := range versions {
			if Compare(a, b) != -Compare(b, a) {
				t.Errorf("Compare(%q, %q) is not antisymmetric", a, b)
			}
		}
	}
}

func TestCompareTransitive(t *testing.T) {
	versions := []string{"0.1.0", "1.0.0", "1.0.1", "1.2.0", "2.0.0", "2.0.0.1", "10.0.0"}
	for i, a := range versions {
		for j, b := range versions {
			for k, c := range versions {
				if i < j && j < k {
					if Compare(a, b) > 0 || Compare(b, c) > 0 || Compare(a, c) > 0 {
						t.Errorf("ordering violated for %q < %q < %q", a, b, c)
					}
				}
			}
		}
	}
}

func TestCompareReflexive(t *testing.T) {
	for _, v := range []string{"", "1", "1.2.3", "v4.5.6-rc1", "garbage"} {
		if Compare(v, v) != 0 {
			t.Errorf("Compare(%q, %q) != 0", v, v)
		}
	}
}

func TestMax(t *testing.T) {
	if got := Max([]string{"1.0.0", "1.2.0", "0.9.0"}); got != "1.2.0" {
		t.Errorf("Max = %q, want 1.2.0", got)
	}
	if got := Max(nil); got != "" {
		t.Errorf("Max(nil) = %q, want empty", got)
	}
}
