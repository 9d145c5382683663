package transform

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestChainName(t *testing.T) {
	if got := ChainName("base64", "hex_lower"); got != "base64__then__hex_lower" {
		t.Errorf("unexpected chain name %q", got)
	}
}

func TestChainAppliesInOrder(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"base64__then__hex_lower", "a", "59513d3d"},
		{"hex_lower__then__url_all", "AB", "4142"},
		{"noop__then__base64", "abc", "YWJj"},
		{"base64__then__base64_urlsafe", "a", "WVE9PQ=="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Apply(tt.name, tt.input)
			if err != nil {
				t.Fatalf("apply failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("%s(%q) = %q, want %q", tt.name, tt.input, got, tt.expected)
			}
		})
	}
}

func TestChainFallsBackToOriginalInput(t *testing.T) {
	reg := newTestRegistry(t)
	urlDecodeT, ok := reg.Lookup("url_decode")
	if !ok {
		t.Fatal("url_decode should be registered")
	}

	breakEscapes := NewTransform("break_escapes", CategoryCosmetic, "Append a malformed escape", pure(func(s string) string {
		return s + "%zz"
	}))
	failing := NewTransform("always_fails", CategoryCosmetic, "Fail on every input", func(string) (string, error) {
		return "", errors.New("boom")
	})
	panicking := NewTransform("always_panics", CategoryCosmetic, "Panic on every input", func(string) (string, error) {
		panic("boom")
	})

	tests := []struct {
		name  string
		chain Transform
	}{
		{"second stage fails", Chain(breakEscapes, urlDecodeT)},
		{"first stage fails", Chain(failing, breakEscapes)},
		{"first stage panics", Chain(panicking, breakEscapes)},
		{"second stage panics", Chain(breakEscapes, panicking)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chain.Apply("payload"); got != "payload" {
				t.Errorf("expected original input, got %q", got)
			}
		})
	}
}

func TestChainTransformsWindow(t *testing.T) {
	order := make([]Transform, 4)
	for i := range order {
		order[i] = NewTransform(fmt.Sprintf("t%d", i), CategoryCosmetic, "", pure(func(s string) string { return s }))
	}

	tests := []struct {
		name     string
		limit    int
		width    int
		expected []string
	}{
		{
			name:  "clipped at end",
			limit: 10, width: 3,
			expected: []string{
				"t0__then__t1", "t0__then__t2", "t0__then__t3",
				"t1__then__t2", "t1__then__t3",
				"t2__then__t3",
			},
		},
		{
			name:  "narrow window",
			limit: 2, width: 1,
			expected: []string{"t0__then__t1", "t1__then__t2"},
		},
		{name: "disabled by limit", limit: 0, width: 3},
		{name: "disabled by width", limit: 3, width: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chains := chainTransforms(order, tt.limit, tt.width)
			got := make([]string, len(chains))
			for i, c := range chains {
				got[i] = c.Name()
			}
			if strings.Join(got, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRegistryChains(t *testing.T) {
	reg := newTestRegistry(t)

	order := reg.Order()
	chains := reg.ListByCategory(CategoryChain)
	if len(chains) != DefaultChainLimit*DefaultChainWidth {
		t.Fatalf("expected %d chains, got %d", DefaultChainLimit*DefaultChainWidth, len(chains))
	}

	position := make(map[string]int, len(order))
	for i, name := range order {
		position[name] = i
	}

	for _, name := range chains {
		first, second, ok := strings.Cut(name, chainSeparator)
		if !ok {
			t.Fatalf("chain %q has no separator", name)
		}
		if first == second {
			t.Errorf("chain %q pairs a transform with itself", name)
		}
		i, j := position[first], position[second]
		if i >= DefaultChainLimit {
			t.Errorf("chain %q seeded from position %d", name, i)
		}
		if j <= i || j > i+DefaultChainWidth {
			t.Errorf("chain %q pairs positions %d and %d", name, i, j)
		}
		if strings.Contains(first, chainSeparator) || strings.Contains(second, chainSeparator) {
			t.Errorf("chain %q nests another chain", name)
		}
	}
}

func TestWithChainWindow(t *testing.T) {
	reg, err := New(WithSeed(1), WithChainWindow(5, 2))
	if err != nil {
		t.Fatal(err)
	}
	if got := len(reg.ListByCategory(CategoryChain)); got != 10 {
		t.Errorf("expected 10 chains, got %d", got)
	}

	reg, err = New(WithSeed(1), WithChainWindow(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if got := len(reg.ListByCategory(CategoryChain)); got != 0 {
		t.Errorf("expected no chains, got %d", got)
	}

	if _, err := New(WithChainWindow(-1, 3)); err == nil {
		t.Error("expected error for negative chain limit")
	}
}
