package rest

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"github.com/dmitrijs2005/eventhub/internal/server/storage"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{common.NewValidationError("Invalid id."), http.StatusBadRequest, "Invalid id."},
		{common.ErrorAlreadyExists, http.StatusBadRequest, msgUserExists},
		{common.ErrInvalidCredentials, http.StatusUnauthorized, msgInvalidCredentials},
		{common.ErrTooManyAttempts, http.StatusTooManyRequests, msgTooManyAttempts},
		{common.ErrUnauthenticated, http.StatusUnauthorized, msgUnauthorized},
		{common.ErrUserNotFound, http.StatusUnauthorized, msgUserNotFound},
		{common.ErrTokenExpired, http.StatusUnauthorized, msgInvalidToken},
		{common.ErrorForbidden, http.StatusForbidden, msgForbidden},
		{common.ErrEventNotFound, http.StatusNotFound, msgEventNotFound},
		{fmt.Errorf("wrapped: %w", common.ErrRegistrationNotFound), http.StatusNotFound, msgRegistrationNotFound},
		{common.ErrCannotRegisterForOwnEvent, http.StatusBadRequest, msgOwnEvent},
		{common.ErrAlreadyRegistered, http.StatusBadRequest, msgAlreadyRegistered},
		{fmt.Errorf("%w: bad ext", common.ErrInvalidImage), http.StatusBadRequest, msgOnlyImages},
		{storage.ErrDisabled, http.StatusServiceUnavailable, msgStorageDisabled},
		{errors.New("db error: boom"), http.StatusInternalServerError, msgInternal},
	}
	for _, tt := range tests {
		status, msg := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.msg, msg, tt.err.Error())
	}
}
