package transform

import "fmt"

const (
	// DefaultChainLimit is how many leading registered names seed chains.
	DefaultChainLimit = 30
	// DefaultChainWidth is how many following names each seed is paired with.
	DefaultChainWidth = 3

	chainSeparator = "__then__"
)

// ChainName returns the registry name of first followed by second.
func ChainName(first, second string) string {
	return first + chainSeparator + second
}

// chainSpec is an ordered pair of transforms run back to back.
type chainSpec struct {
	first  Transform
	second Transform
}

// Chain composes first and second. If either stage fails the chain yields its
// original input, never the intermediate value.
func Chain(first, second Transform) Transform {
	spec := chainSpec{first: first, second: second}
	return NewTransform(
		ChainName(first.Name(), second.Name()),
		CategoryChain,
		fmt.Sprintf("Apply %s, then %s", first.Name(), second.Name()),
		spec.apply,
	)
}

func (c chainSpec) apply(s string) (string, error) {
	mid, err := c.first.try(s)
	if err != nil {
		return "", err
	}
	return c.second.try(mid)
}

// chainTransforms pairs each of the first limit names with the width names that
// follow it in registration order. Pairs only look forward, so no transform is
// chained with itself, and the window is clipped at the end of the list.
func chainTransforms(order []Transform, limit, width int) []Transform {
	n := len(order)
	seeds := min(limit, n)
	out := make([]Transform, 0, seeds*width)
	for i := 0; i < seeds; i++ {
		for j := i + 1; j < min(i+1+width, n); j++ {
			out = append(out, Chain(order[i], order[j]))
		}
	}
	return out
}
