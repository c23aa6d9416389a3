// Package types provides common type aliases and utilities.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shabani2/salemanagement-api/internal/core/id"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroMoney returns zero Money value.
func ZeroMoney() Money {
	return decimal.Zero
}

// MoneyFromInt creates a Money value from a whole number.
func MoneyFromInt(n int64) Money {
	return decimal.NewFromInt(n)
}

// Quantity is a whole-unit stock quantity.
// Stock and movements are counted in whole units (matches BIGINT in Postgres).
type Quantity int64

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Neg() Quantity { return -q }

func (q Quantity) Int64() int64 { return int64(q) }

// Ref is a tagged reference to a related entity: either a bare ID or the
// populated entity. It is resolved once at the data-access boundary so
// business logic never branches on shape.
type Ref[T any] struct {
	ID    id.ID `json:"id"`
	Value *T    `json:"value,omitempty"`
}

// RefID creates an unresolved reference.
func RefID[T any](entityID id.ID) Ref[T] {
	return Ref[T]{ID: entityID}
}

// RefOf creates a populated reference.
func RefOf[T any](entityID id.ID, value *T) Ref[T] {
	return Ref[T]{ID: entityID, Value: value}
}

// IsPopulated reports whether the referenced entity is loaded.
func (r Ref[T]) IsPopulated() bool { return r.Value != nil }

// MarshalJSON renders a bare id string when unresolved, the full entity
// (with its id) when populated.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Value == nil {
		return json.Marshal(r.ID)
	}

	raw, err := json.Marshal(r.Value)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		// Entity does not render as an object, keep just the id.
		return json.Marshal(r.ID)
	}

	idRaw, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	obj["id"] = idRaw
	return json.Marshal(obj)
}

// UnmarshalJSON accepts either an id string or an object with an "id" field.
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := id.Parse(s)
		if err != nil {
			return fmt.Errorf("parse ref id: %w", err)
		}
		r.ID = parsed
		r.Value = nil
		return nil
	}

	var obj struct {
		ID id.ID `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.ID = obj.ID
	r.Value = &v
	return nil
}
