package domain

// Nullable is a patch field for a nullable column. Set distinguishes
// "leave unchanged" from "set to Value", where a nil Value clears the column.
type Nullable[T any] struct {
	Value *T
	Set   bool
}

// Null returns a patch field that clears the column.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// Some returns a patch field that sets the column to v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// ApplyTo writes the value into dst when the field is set.
func (n Nullable[T]) ApplyTo(dst **T) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		*dst = nil
		return
	}
	v := *n.Value
	*dst = &v
}
