package preview

import (
	"testing"
)

func TestDefaultOptions_Canonical(t *testing.T) {
	want := "ecl=M;margin=4;width=256;dark=000000;light=ffffff;format=svg"
	if got := DefaultOptions().String(); got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
}

func TestNormalize_EquivalentInputsShareKey(t *testing.T) {
	n := NewNormalizer(DefaultOptions(), Limits{})

	a := RawOptions{}
	a["format"] = "png"
	a["width"] = "300"
	a["ecl"] = "M"

	b := RawOptions{}
	b["ecl"] = "m"
	b["width"] = " 300 "
	b["format"] = "PNG"
	b["dark"] = "#000"
	b["margin"] = "4"

	oa, ob := n.Normalize(a), n.Normalize(b)
	if oa != ob {
		t.Fatalf("Normalize() differ: %v vs %v", oa, ob)
	}
	if BuildKey("hello", oa) != BuildKey("hello", ob) {
		t.Error("equivalent options produced different keys")
	}
	if n.Normalize(nil) != DefaultOptions() {
		t.Errorf("Normalize(nil) = %v", n.Normalize(nil))
	}
}

func TestNormalize_Total(t *testing.T) {
	n := NewNormalizer(DefaultOptions(), Limits{})
	d := DefaultOptions()

	tests := []struct {
		name  string
		raw   RawOptions
		check func(RenderOptions) bool
	}{
		{"unknown ecl", RawOptions{"ecl": "Z"}, func(o RenderOptions) bool { return o.ErrorCorrection == ECLMedium }},
		{"lowercase ecl", RawOptions{"ecl": "h"}, func(o RenderOptions) bool { return o.ErrorCorrection == ECLHigh }},
		{"negative width", RawOptions{"width": "-5"}, func(o RenderOptions) bool { return o.Width == 32 }},
		{"zero width", RawOptions{"width": "0"}, func(o RenderOptions) bool { return o.Width == 32 }},
		{"huge width", RawOptions{"width": "9999999"}, func(o RenderOptions) bool { return o.Width == 2048 }},
		{"overflowing width", RawOptions{"width": "99999999999999999999999"}, func(o RenderOptions) bool { return o.Width == 2048 }},
		{"overflowing negative width", RawOptions{"width": "-99999999999999999999999"}, func(o RenderOptions) bool { return o.Width == 32 }},
		{"text width", RawOptions{"width": "wide"}, func(o RenderOptions) bool { return o.Width == d.Width }},
		{"float width", RawOptions{"width": "12.5"}, func(o RenderOptions) bool { return o.Width == d.Width }},
		{"negative margin", RawOptions{"margin": "-3"}, func(o RenderOptions) bool { return o.Margin == 0 }},
		{"huge margin", RawOptions{"margin": "1000"}, func(o RenderOptions) bool { return o.Margin == 64 }},
		{"zero margin", RawOptions{"margin": "0"}, func(o RenderOptions) bool { return o.Margin == 0 }},
		{"short color", RawOptions{"dark": "#ABC"}, func(o RenderOptions) bool { return o.Dark == "aabbcc" }},
		{"bad color", RawOptions{"light": "zzzzzz"}, func(o RenderOptions) bool { return o.Light == DefaultLight }},
		{"named color", RawOptions{"dark": "red"}, func(o RenderOptions) bool { return o.Dark == DefaultDark }},
		{"png", RawOptions{"format": "PNG"}, func(o RenderOptions) bool { return o.Format == FormatPNG }},
		{"gif", RawOptions{"format": "gif"}, func(o RenderOptions) bool { return o.Format == FormatSVG }},
		{"unknown keys", RawOptions{"logo": "x.png"}, func(o RenderOptions) bool { return o == d }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.raw); !tt.check(got) {
				t.Errorf("Normalize(%v) = %v", tt.raw, got)
			}
		})
	}
}

func TestNewNormalizer_CustomDefaults(t *testing.T) {
	n := NewNormalizer(RenderOptions{
		ErrorCorrection: "bogus",
		Margin:          2,
		Width:           5000,
		Dark:            "#123456",
		Format:          FormatPNG,
	}, Limits{MaxWidth: 1000})

	d := n.Defaults()
	want := RenderOptions{
		ErrorCorrection: ECLMedium,
		Margin:          2,
		Width:           1000,
		Dark:            "123456",
		Light:           DefaultLight,
		Format:          FormatPNG,
	}
	if d != want {
		t.Errorf("Defaults() = %v, want %v", d, want)
	}

	n = NewNormalizer(RenderOptions{Margin: 4}, Limits{MinWidth: 300, MaxWidth: 400})
	if n.Defaults().Width != 300 {
		t.Errorf("default width = %d, want clamped to 300", n.Defaults().Width)
	}
}

func TestLimits_WithDefaults(t *testing.T) {
	l := Limits{MinWidth: 500, MaxWidth: 100, MaxMargin: -1}.WithDefaults()
	if l.MaxContentBytes != MaxCapacity || l.MaxWidth != 500 || l.MaxMargin != 64 {
		t.Errorf("WithDefaults() = %+v", l)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"000000", "000000", true},
		{"#FFaa00", "ffaa00", true},
		{"f0a", "ff00aa", true},
		{" 123456 ", "123456", true},
		{"12345", "", false},
		{"1234567", "", false},
		{"ggg", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseColor(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestColor_RGB(t *testing.T) {
	r, g, b := Color("ff8001").RGB()
	if r != 0xff || g != 0x80 || b != 0x01 {
		t.Errorf("RGB() = %d %d %d", r, g, b)
	}
	if r, g, b := Color("bad").RGB(); r|g|b != 0 {
		t.Error("invalid color should be black")
	}
}

func TestFormat_ContentType(t *testing.T) {
	if FormatSVG.ContentType() != "image/svg+xml" || FormatPNG.ContentType() != "image/png" {
		t.Error("unexpected content types")
	}
}
