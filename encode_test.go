package mdh

import "testing"

func TestObfuscateAlternatesEntityForms(t *testing.T) {
	if got := obfuscate("ab"); got != "&#97;&#x62;" {
		t.Fatalf("obfuscate(%q) = %q", "ab", got)
	}
	if got := obfuscate(""); got != "" {
		t.Fatalf("obfuscate empty = %q", got)
	}
}

func TestGenerateAnchorName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"H1", "h1"},
		{"Some Title", "some-title"},
		{"A  B", "a-b"},
		{"Héllo Wörld", "héllo-wörld"},
		{"!!leading", "leading"},
		{"trailing!!", "trailing-"},
		{"", ""},
	}
	for _, c := range cases {
		if got := generateAnchorName(c.in); got != c.want {
			t.Fatalf("generateAnchorName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
