package customerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError reports a missing or malformed expense field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is returned for unknown ids and for ids owned by someone else.
// It never carries the owner.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("expense %d not found", e.ID)
}

type NoDataError struct {
	Err string
}

func (e *NoDataError) Error() string {
	if e.Err == "" {
		return "no expenses found to export"
	}
	return e.Err
}

type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable (%s): %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

type CacheUnavailableError struct {
	Op  string
	Err error
}

func (e *CacheUnavailableError) Error() string {
	return fmt.Sprintf("cache unavailable (%s): %v", e.Op, e.Err)
}

func (e *CacheUnavailableError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsNoData(err error) bool {
	var target *NoDataError
	return errors.As(err, &target)
}

func IsStoreUnavailable(err error) bool {
	var target *StoreUnavailableError
	return errors.As(err, &target)
}

func IsCacheUnavailable(err error) bool {
	var target *CacheUnavailableError
	return errors.As(err, &target)
}
