package heuristics

import "testing"

func TestNormalizeForSearch(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":       "hello world",
		"  multi   space  ":   "multi space",
		"Café-Müller (2014)":  "cafe muller 2014",
		"":                    "",
		"already normal text": "already normal text",
	}
	for in, want := range cases {
		if got := NormalizeForSearch(in); got != want {
			t.Errorf("NormalizeForSearch(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeForSearchStripsDiacritics(t *testing.T) {
	cases := map[string]string{
		"café":   "cafe",
		"naïve":  "naive",
		"Zürich": "zurich",
		"élève":  "eleve",
	}
	for in, want := range cases {
		if got := NormalizeForSearch(in); got != want {
			t.Errorf("NormalizeForSearch(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeForSearchIdempotent(t *testing.T) {
	samples := []string{"Hello, World!", "already normalized", "2014 Journal Vol. 12", ""}
	for _, s := range samples {
		once := NormalizeForSearch(s)
		twice := NormalizeForSearch(once)
		if once != twice {
			t.Errorf("normalize not idempotent for %q: once=%q twice=%q", s, once, twice)
		}
	}
}

func TestIsProbableAuthorLine(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Smith, J., Doe, A., 2014. Journal of X, vol 12.", true},
		{"Introduction", false},
		{"Retrieved from the university archive in 2019", true},
		{"https://doi.org/10.1000/xyz 2020 citation reference line", true},
		{"Chapter 3: Methods", false},
		{"Report 2020 summary of activities for the year", false},
		{"A, B, C, D, E, F, G 1999", true},
	}
	for _, c := range cases {
		if got := IsProbableAuthorLine(c.text); got != c.want {
			t.Errorf("IsProbableAuthorLine(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}
