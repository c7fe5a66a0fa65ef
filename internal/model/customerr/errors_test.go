package customerr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_KindCheckers_ShouldSeeThroughWrapping(t *testing.T) {
	cause := errors.New("connection refused")

	assert.True(t, IsValidation(errors.Wrap(&ValidationError{Field: "amount", Reason: "required"}, "create expense")))
	assert.True(t, IsNotFound(errors.Wrap(&NotFoundError{ID: 7}, "update expense")))
	assert.True(t, IsNoData(errors.Wrap(&NoDataError{}, "export")))
	assert.True(t, IsStoreUnavailable(errors.Wrap(&StoreUnavailableError{Op: "list", Err: cause}, "list expenses")))
	assert.True(t, IsCacheUnavailable(&CacheUnavailableError{Op: "invalidate", Err: cause}))

	assert.False(t, IsNotFound(cause))
	assert.False(t, IsValidation(nil))
}

func Test_StoreUnavailable_ShouldUnwrapToCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := errors.Wrap(&StoreUnavailableError{Op: "create", Err: cause}, "create expense")

	assert.True(t, errors.Is(err, cause))
}

func Test_NotFound_ShouldNotMentionOwner(t *testing.T) {
	err := &NotFoundError{ID: 42}

	assert.Equal(t, "expense 42 not found", err.Error())
}
