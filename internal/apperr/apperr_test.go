package apperr

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWalksWrappedChain(t *testing.T) {
	base := Validation("query is too short")
	wrapped := errors.Wrap(base, "generate")

	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindValidation))
	assert.False(t, Is(wrapped, KindNotFound))
}

func TestKindOfDefaultsToExternalService(t *testing.T) {
	assert.Equal(t, KindExternalService, KindOf(errors.New("boom")))
}

func TestWrapNilIsNil(t *testing.T) {
	assert.NoError(t, Wrap(KindExternalService, nil, "ignored"))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := External(errors.New("connection reset"), "generation call for %s", "therapist")
	require.Error(t, err)
	assert.Equal(t, "generation call for therapist: connection reset", err.Error())
	assert.Equal(t, "connection reset", errors.Cause(err).Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		InputFormat("bad body"):           http.StatusBadRequest,
		Validation("too short"):           http.StatusBadRequest,
		NotFound("persona x"):             http.StatusNotFound,
		Newf(KindUnavailable, "no model"): http.StatusServiceUnavailable,
		External(errors.New("x"), "llm"):  http.StatusInternalServerError,
		errors.New("unclassified"):        http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}
