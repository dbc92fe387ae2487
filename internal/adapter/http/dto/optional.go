package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iho/kakeibo/internal/domain"
)

// Optional is a request field that remembers whether it was present in the
// JSON body. An explicit null sets Set with a nil Value.
type Optional[T any] struct {
	Value *T
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Nullable converts the field into a patch value for a nullable column.
func (o Optional[T]) Nullable() domain.Nullable[T] {
	return domain.Nullable[T]{Value: o.Value, Set: o.Set}
}

// Required returns the value for a non-nullable column: nil when absent,
// an error when explicitly null.
func (o Optional[T]) Required(field string) (*T, error) {
	if o.Set && o.Value == nil {
		return nil, fmt.Errorf("%w: %s must not be null", domain.ErrMalformedInput, field)
	}
	return o.Value, nil
}

// Date is a calendar date encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate wraps t.
func NewDate(t time.Time) Date {
	return Date{Time: domain.DateOnly(t)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: expected a YYYY-MM-DD string", domain.ErrInvalidDate)
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(domain.DateLayout))
}

func datePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := NewDate(*t)
	return &d
}

func timePtr(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func dateNullable(o Optional[Date]) domain.Nullable[time.Time] {
	return domain.Nullable[time.Time]{Value: timePtr(o.Value), Set: o.Set}
}
