package charset

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"shift_jis underscore", "shift_jis", "cp932"},
		{"shift-jis hyphen", "shift-jis", "cp932"},
		{"shiftjis bare", "shiftjis", "cp932"},
		{"sjis short form", "sjis", "cp932"},
		{"declared casing", "Shift_JIS", "cp932"},
		{"all caps", "SJIS", "cp932"},
		{"eucjp bare", "eucjp", "euc-jp"},
		{"eucjp caps", "EUCJP", "euc-jp"},
		{"already canonical", "cp932", "cp932"},
		{"utf-8 untouched", "utf-8", "utf-8"},
		{"unmapped passes through", "KOI8-R", "KOI8-R"},
		{"nonsense passes through", "not-a-charset", "not-a-charset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.in); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	names := []string{"shift_jis", "shiftjis", "sjis", "Shift-JIS", "eucjp", "euc-jp", "cp932", "utf-8", "latin1"}
	for _, in := range names {
		once := Canonicalize(in)
		if twice := Canonicalize(once); twice != once {
			t.Errorf("Canonicalize(Canonicalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}
