package transform

import (
	"regexp"
	"strings"
	"testing"
)

func TestFamilySpecNames(t *testing.T) {
	specs := FamilySpecs()
	if len(specs) != len(FamilyEncodings)*len(FamilyRepresentations) {
		t.Fatalf("expected %d specs, got %d", len(FamilyEncodings)*len(FamilyRepresentations), len(specs))
	}

	valid := regexp.MustCompile(`^[a-z0-9]+_(hex|base64|percent)$`)
	seen := make(map[string]bool)
	for _, spec := range specs {
		name := spec.Name()
		if !valid.MatchString(name) {
			t.Errorf("name %q is not identifier-safe", name)
		}
		if seen[name] {
			t.Errorf("duplicate family name %q", name)
		}
		seen[name] = true
	}

	for _, want := range []string{"utf8_hex", "latin1_base64", "cp1251_percent", "utf16le_hex", "utf16be_base64", "utf7_percent"} {
		if !seen[want] {
			t.Errorf("expected family %q", want)
		}
	}
}

func TestFamilyOutputs(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		transform string
		input     string
		expected  string
	}{
		{"utf8_hex", "aé", "61c3a9"},
		{"utf8_base64", "Ж", "0JY="},
		{"utf8_percent", "a", "%61"},
		{"latin1_hex", "aé€Ж", "61e93f3f"},
		{"cp1251_hex", "aé€Ж", "613f88c6"},
		{"cp1252_hex", "aé€Ж", "61e9803f"},
		{"utf16le_hex", "aЖ", "61001604"},
		{"utf16be_percent", "aЖ", "%00%61%04%16"},
		{"utf7_hex", "hi!", "686921"},
	}

	for _, tt := range tests {
		t.Run(tt.transform, func(t *testing.T) {
			got, err := reg.Apply(tt.transform, tt.input)
			if err != nil {
				t.Fatalf("apply failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("%s(%q) = %q, want %q", tt.transform, tt.input, got, tt.expected)
			}
		})
	}
}

// Every generated transform must use its own encoding and representation.
// A shared loop variable would make them all behave like the last spec.
func TestFamilyTransformsAreDistinct(t *testing.T) {
	reg := newTestRegistry(t)

	input := "é€Ж"
	outputs := make(map[string]string)
	for _, spec := range FamilySpecs() {
		got, err := reg.Apply(spec.Name(), input)
		if err != nil {
			t.Fatalf("apply %s failed: %v", spec.Name(), err)
		}
		if other, ok := outputs[got]; ok {
			t.Errorf("%s and %s produce the same output %q", spec.Name(), other, got)
		}
		outputs[got] = spec.Name()
	}

	latin1, _ := reg.Apply("latin1_hex", input)
	cp1251, _ := reg.Apply("cp1251_hex", input)
	if latin1 == cp1251 {
		t.Errorf("latin1_hex and cp1251_hex both gave %q", latin1)
	}
}

func TestEncodeUTF7(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"hi!", "hi!"},
		{"a+b", "a+-b"},
		{"Hi Mom -☺-!", "Hi Mom -+Jjo--!"},
		{"日本語", "+ZeVnLIqe-"},
		{"a~b\\c", "a+AH4-b+AFw-c"},
		{"☺ ok", "+Jjo ok"},
		{"☺a", "+Jjo-a"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := string(encodeUTF7(tt.input)); got != tt.expected {
				t.Errorf("encodeUTF7(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNestedPercentFamily(t *testing.T) {
	reg := newTestRegistry(t)

	for n := minNestedPercent; n <= maxNestedPercent; n++ {
		name := nestedPercentSpec{Count: n}.Name()
		got, err := reg.Apply(name, "a b")
		if err != nil {
			t.Fatalf("apply %s failed: %v", name, err)
		}
		want := "a%" + strings.Repeat("25", n-1) + "20b"
		if got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestLowerCasePercentVariants(t *testing.T) {
	reg := newTestRegistry(t)

	if got, _ := reg.Apply("url_pct_lower", "a/é"); got != "a%2f%c3%a9" {
		t.Errorf("url_pct_lower = %q", got)
	}
	if got, _ := reg.Apply("percent_bytes_lower", "a/"); got != "%61%2f" {
		t.Errorf("percent_bytes_lower = %q", got)
	}
}

func TestFamilyRegistersEachNameOnce(t *testing.T) {
	reg := newTestRegistry(t)

	counts := make(map[string]int)
	for _, name := range reg.Order() {
		counts[name]++
	}
	for _, spec := range FamilySpecs() {
		if counts[spec.Name()] != 1 {
			t.Errorf("%s registered %d times", spec.Name(), counts[spec.Name()])
		}
	}
	for n := minNestedPercent; n <= maxNestedPercent; n++ {
		name := nestedPercentSpec{Count: n}.Name()
		if counts[name] != 1 {
			t.Errorf("%s registered %d times", name, counts[name])
		}
	}
}
