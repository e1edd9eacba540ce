package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		hint string
		want string
	}{
		{"zh", "zh"},
		{"zh-CN", "zh"},
		{"en-US", "en"},
		{" ja ", "ja"},
		{"", ""},
		{"not-a-language-tag!!", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.hint); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.hint, got, tc.want)
		}
	}
}
