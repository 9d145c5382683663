package transform

import (
	"errors"
	"fmt"
)

// Category groups transforms for listing and filtering.
type Category string

const (
	CategoryIdentity Category = "identity"
	CategoryEncode   Category = "encode"
	CategoryDecode   Category = "decode"
	CategoryEscape   Category = "escape"
	CategoryCipher   Category = "cipher"
	CategoryCompress Category = "compress"
	CategoryCosmetic Category = "cosmetic"
	CategoryFamily   Category = "family"
	CategoryChain    Category = "chain"
)

// Step is the fallible form of a transform. Steps may return an error or
// panic; Transform.Apply converts either into the unchanged input.
type Step func(input string) (string, error)

// ErrUnknownTransform is returned by Apply when the requested name is not registered.
var ErrUnknownTransform = errors.New("unknown transform")

// UnknownTransformError carries the name that failed to resolve.
type UnknownTransformError struct {
	Name string
}

func (e *UnknownTransformError) Error() string {
	return fmt.Sprintf("unknown transform: %q", e.Name)
}

// Is reports ErrUnknownTransform so callers can use errors.Is.
func (e *UnknownTransformError) Is(target error) bool {
	return target == ErrUnknownTransform
}

// failure records an error or panic raised inside a step. It never leaves the package.
type failure struct {
	transform string
	cause     error
}

func (f *failure) Error() string {
	return fmt.Sprintf("transform %s failed: %v", f.transform, f.cause)
}

func (f *failure) Unwrap() error {
	return f.cause
}

// Transform is a named, total text-to-text function. The zero value is not usable;
// transforms are created with NewTransform or obtained from a Registry.
type Transform struct {
	name        string
	category    Category
	description string
	step        Step
}

// NewTransform wraps step as a transform. step may fail; Apply never does.
func NewTransform(name string, category Category, description string, step Step) Transform {
	return Transform{
		name:        name,
		category:    category,
		description: description,
		step:        step,
	}
}

// pure wraps an infallible function as a Step.
func pure(fn func(string) string) Step {
	return func(s string) (string, error) {
		return fn(s), nil
	}
}

func (t Transform) Name() string {
	return t.name
}

func (t Transform) Category() Category {
	return t.category
}

func (t Transform) Description() string {
	return t.description
}

// Apply runs the transform. When the step fails the original input is returned.
func (t Transform) Apply(input string) string {
	out, err := t.try(input)
	if err != nil {
		return input
	}
	return out
}

// try runs the step and reports failures, converting panics into errors.
func (t Transform) try(input string) (out string, err error) {
	if t.step == nil {
		return "", &failure{transform: t.name, cause: errors.New("no step defined")}
	}
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = &failure{transform: t.name, cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	out, err = t.step(input)
	if err != nil {
		return "", &failure{transform: t.name, cause: err}
	}
	return out, nil
}
