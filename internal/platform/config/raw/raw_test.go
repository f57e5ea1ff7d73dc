package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_FORMAT", " json ")
	t.Setenv("ADX_NAME", "insurees")

	root := New()
	log := root.Prefix("LOG_")

	tests := []struct {
		name string
		conf Conf
		key  string
		def  string
		want string
	}{
		{"prefixed and trimmed", log, "FORMAT", "console", "json"},
		{"root lookup", root, "ADX_NAME", "", "insurees"},
		{"missing default", log, "LEVEL", "info", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conf.Get(tt.key, tt.def); got != tt.want {
				t.Fatalf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("B_")
	t.Setenv("B_ONE", "1")
	t.Setenv("B_YES", " YES ")
	t.Setenv("B_NO", "no")
	t.Setenv("B_ZERO", "0")

	tests := []struct {
		key  string
		def  bool
		want bool
	}{
		{"ONE", false, true},
		{"YES", false, true},
		{"NO", true, false},
		{"ZERO", true, false},
		{"MISSING", true, true},
	}
	for _, tt := range tests {
		if got := c.GetBool(tt.key, tt.def); got != tt.want {
			t.Fatalf("GetBool(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("N_")
	t.Setenv("N_OK", " 12 ")
	t.Setenv("N_NEG", "-3")
	t.Setenv("N_BAD", "4x")

	tests := []struct {
		key  string
		def  int
		want int
	}{
		{"OK", 0, 12},
		{"NEG", 5, 5},
		{"BAD", 7, 7},
		{"MISSING", 9, 9},
	}
	for _, tt := range tests {
		if got := c.GetInt(tt.key, tt.def); got != tt.want {
			t.Fatalf("GetInt(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}
