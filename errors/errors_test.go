package errors

import (
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	req := require.New(t)

	req.Equal(KindValidation, KindOf(Validation("Missing fields")))
	req.Equal(KindAuth, KindOf(Auth("Unauthorized")))
	req.Equal(KindNotFound, KindOf(fmt.Errorf("lookup: %w", NotFound("No user found."))))
	req.Equal(KindConflict, KindOf(New("dup", http.StatusConflict)))
	req.Equal(KindUnknown, KindOf(fmt.Errorf("plain")))
}

func TestStorageHidesCause(t *testing.T) {
	req := require.New(t)
	cause := pkgerrors.New("pq: connection refused on 10.0.0.3")

	err := Storage("Sending message failed", cause)

	req.Equal("Sending message failed", err.Error())
	req.Equal(http.StatusInternalServerError, StatusOf(err))
	req.ErrorIs(err, cause)
	req.NotContains(err.Error(), "10.0.0.3")
}

func TestStatusOf(t *testing.T) {
	req := require.New(t)

	req.Equal(http.StatusForbidden, StatusOf(ErrInvalidCredentials))
	req.Equal(http.StatusUnprocessableEntity, StatusOf(Unprocessable("bad")))
	req.Equal(http.StatusInternalServerError, StatusOf(fmt.Errorf("boom")))
}

func TestGetUniqueContraintError(t *testing.T) {
	req := require.New(t)

	req.Nil(GetUniqueContraintError(nil))
	req.True(IsKind(GetUniqueContraintError(pkgerrors.New("email already in use")), KindConflict))
	req.True(IsKind(GetUniqueContraintError(pkgerrors.New("UNIQUE constraint failed: users.email")), KindConflict))
	req.True(IsKind(GetUniqueContraintError(pkgerrors.New("timeout")), KindStorage))
}
