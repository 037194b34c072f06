package normalization

import (
	"regexp"
	"testing"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Daft Punk", "daft-punk"},
		{"  The  Weeknd!! ", "the-weeknd"},
		{"AC/DC", "ac-dc"},
		{"---", ""},
		{"", ""},
		{"Sigur Rós", "sigur-r-s"},
		{"already-a-slug", "already-a-slug"},
		{"MiXeD__case..2024", "mixed-case-2024"},
		{"\t\nBand Name☃", "band-name"},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Fatalf("Slug(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestSlugOutputShapeAndIdempotence(t *testing.T) {
	inputs := []string{
		"Daft Punk", "-a-", "a--b", "ÆØÅ band", "123", "x_y_z", "  ", "Björk & Friends (Live)", "日本語 Artist",
	}
	for _, in := range inputs {
		out := Slug(in)
		if out != "" && !slugPattern.MatchString(out) {
			t.Fatalf("Slug(%q)=%q does not match %s", in, out, slugPattern)
		}
		if again := Slug(out); again != out {
			t.Fatalf("Slug not idempotent for %q: %q -> %q", in, out, again)
		}
	}
}
