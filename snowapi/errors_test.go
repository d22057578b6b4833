package snowapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates_MatchOwnKindOnly(t *testing.T) {
	errsByKind := map[kind]*Error{
		kindConfig:            newConfigError("bad config", nil),
		kindConnection:        newConnectionError("bad connection", nil),
		kindConnectionStarved: newConnectionStarvedError("starved", nil),
		kindBadResponse:       newBadResponseError(500, "boom", nil),
		kindRequest:           newRequestError("bad request", nil),
	}

	predicates := map[kind]func(error) bool{
		kindConfig:            IsConfigError,
		kindConnection:        IsConnectionError,
		kindConnectionStarved: IsConnectionStarvedError,
		kindBadResponse:       IsBadResponseError,
		kindRequest:           IsRequestError,
	}

	for k, err := range errsByKind {
		for otherKind, pred := range predicates {
			if otherKind == k {
				assert.True(t, pred(err), "%s predicate should match its own error", k)
			} else {
				assert.False(t, pred(err), "%s predicate should not match a %s error", otherKind, k)
			}
		}
	}
}

func TestErrorPredicates_FalseForForeignErrorTypes(t *testing.T) {
	foreign := errors.New("not a snowapi error")
	assert.False(t, IsConfigError(foreign))
	assert.False(t, IsConnectionError(foreign))
	assert.False(t, IsConnectionStarvedError(foreign))
	assert.False(t, IsBadResponseError(foreign))
	assert.False(t, IsRequestError(foreign))
}

func TestError_MessageIncludesStatusWhenPresent(t *testing.T) {
	err := newBadResponseError(503, "unavailable", nil)
	assert.Contains(t, err.Error(), "503")

	cfgErr := newConfigError("missing field", nil)
	assert.NotContains(t, cfgErr.Error(), "status")
}
