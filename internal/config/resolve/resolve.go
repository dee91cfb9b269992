// Package resolve produces concrete values for schema variables that are
// missing from the stored configuration.
//
// A default is either a literal value or a zero-argument provider. Providers
// perform read-only host queries (executable lookup, effective group) or
// consume randomness (secret generation); they never write to disk and never
// fail hard. A provider that cannot locate what it needs returns an empty
// value so the surrounding variable stays user-correctable.
package resolve

// Spec describes how a variable's default value is obtained.
// Exactly one of the two arms is set.
type Spec struct {
	literal  any
	provider func() any
}

// Literal creates a Spec that resolves to a fixed value.
func Literal(v any) Spec {
	return Spec{literal: v}
}

// Provider creates a Spec that resolves by invoking fn.
func Provider(fn func() any) Spec {
	return Spec{provider: fn}
}

// IsProvider reports whether the spec resolves through a provider function.
func (s Spec) IsProvider() bool {
	return s.provider != nil
}

// IsZero reports whether the spec carries neither a literal nor a provider.
func (s Spec) IsZero() bool {
	return s.provider == nil && s.literal == nil
}

// Resolve produces the concrete default value. Literals are returned as-is;
// providers are invoked with no arguments. The zero Spec resolves to nil.
func (s Spec) Resolve() any {
	if s.provider != nil {
		return s.provider()
	}
	return s.literal
}
