package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested id has no record.
	ErrNotFound = errors.New("not found")
	// ErrMalformedRecord is returned when a stored record lacks required fields.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrStoreUnavailable wraps every non-success response from a backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidInput is returned for arguments rejected before any store call.
	ErrInvalidInput = errors.New("invalid input")
)

// StoreError 描述一次失败的存储调用（KV 存储或对象存储）
type StoreError struct {
	Op    string // e.g. "GetItem", "PutObject"
	Table string // table or bucket name
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

// NewStoreError wraps err as a store failure. A nil err yields nil.
func NewStoreError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Table: table, Err: err}
}
