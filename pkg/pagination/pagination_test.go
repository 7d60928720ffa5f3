package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/qbazz/storefront/pkg/errors"
)

func TestFromRequest_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stores", nil)
	p, err := FromRequest(req, 20, 100)

	require.NoError(t, err)
	assert.Equal(t, Params{Limit: 20}, p)
}

func TestFromRequest_CustomValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products?limit=8&offset=16", nil)
	p, err := FromRequest(req, 24, 100)

	require.NoError(t, err)
	assert.Equal(t, 8, p.Limit)
	assert.Equal(t, 16, p.Offset)
}

func TestFromRequest_Invalid(t *testing.T) {
	for _, query := range []string{"limit=0", "limit=-3", "limit=abc", "limit=101", "offset=-1", "offset=x"} {
		t.Run(query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/stores?"+query, nil)
			_, err := FromRequest(req, 20, 100)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestApply(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Apply(items, Params{Limit: 2}))
	assert.Equal(t, []int{3, 4}, Apply(items, Params{Limit: 2, Offset: 2}))
	assert.Equal(t, []int{5}, Apply(items, Params{Limit: 2, Offset: 4}))
	assert.Equal(t, []int{}, Apply(items, Params{Limit: 2, Offset: 9}))
	assert.Equal(t, items, Apply(items, Params{}))
}
