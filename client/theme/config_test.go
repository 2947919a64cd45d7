package theme

import "testing"

func TestParseConfigSectionsAndKeys(t *testing.T) {
	cfg := parseConfig(`
; a comment
[button]
background_normal = 0xFF101010
shadow=0xFF000000

[view]
background_normal = 0xFFFFFFFF
`)

	if got := cfg.Int("button", "background_normal", -1); got != 0xFF101010 {
		t.Fatalf("button.background_normal = %#x, want 0xFF101010", got)
	}
	if got := cfg.Int("button", "shadow", -1); got != 0xFF000000 {
		t.Fatalf("button.shadow = %#x, want 0xFF000000", got)
	}
	if got := cfg.Int("view", "background_normal", -1); got != 0xFFFFFFFF {
		t.Fatalf("view.background_normal = %#x, want 0xFFFFFFFF", got)
	}
}

func TestParseConfigMissingKeyUsesDefault(t *testing.T) {
	cfg := parseConfig("[button]\nbackground_normal = 1\n")
	if got := cfg.Int("button", "missing", 42); got != 42 {
		t.Fatalf("missing key = %d, want default 42", got)
	}
	if got := cfg.Int("missing-section", "x", 7); got != 7 {
		t.Fatalf("missing section = %d, want default 7", got)
	}
}

func TestParseConfigString(t *testing.T) {
	cfg := parseConfig("[strings]\nwallpaper = /usr/share/wallpaper.fbmp\n")
	if got := cfg.String("strings", "wallpaper", ""); got != "/usr/share/wallpaper.fbmp" {
		t.Fatalf("wallpaper = %q", got)
	}
	if got := cfg.String("strings", "missing", "fallback"); got != "fallback" {
		t.Fatalf("missing string = %q, want fallback", got)
	}
}

func TestParseConfigIgnoresMalformedLines(t *testing.T) {
	cfg := parseConfig("[button]\nnot-a-key-value-line\nbezel = 1\n")
	if got := cfg.Int("button", "bezel", -1); got != 1 {
		t.Fatalf("bezel = %d, want 1", got)
	}
}

func TestNilConfigReturnsDefaults(t *testing.T) {
	var cfg *Config
	if got := cfg.Int("a", "b", 9); got != 9 {
		t.Fatalf("nil config Int = %d, want 9", got)
	}
	if got := cfg.String("a", "b", "x"); got != "x" {
		t.Fatalf("nil config String = %q, want x", got)
	}
}
