package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/obo-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestParseDeckFilter(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		want      domain.DeckFilter
		wantField string
		wantErr   error
	}{
		{name: "defaults", query: "", want: domain.DeckFilter{Limit: domain.DefaultLimit}},
		{name: "empty values are absent", query: "age=&limit=&offset=", want: domain.DeckFilter{Limit: domain.DefaultLimit}},
		{name: "all set", query: "age=5&limit=10&offset=20", want: domain.DeckFilter{Age: intPtr(5), Limit: 10, Offset: 20}},
		{name: "age zero", query: "age=0", want: domain.DeckFilter{Age: intPtr(0), Limit: domain.DefaultLimit}},
		{name: "bounds inclusive", query: "age=150&limit=200", want: domain.DeckFilter{Age: intPtr(150), Limit: 200}},
		{name: "limit one", query: "limit=1", want: domain.DeckFilter{Limit: 1}},
		{name: "non-integer age", query: "age=five", wantField: "age", wantErr: domain.ErrInvalidFormat},
		{name: "fractional limit", query: "limit=2.5", wantField: "limit", wantErr: domain.ErrInvalidFormat},
		{name: "non-integer offset", query: "offset=x", wantField: "offset", wantErr: domain.ErrInvalidFormat},
		{name: "negative age", query: "age=-1", wantField: "age", wantErr: domain.ErrOutOfRange},
		{name: "age too large", query: "age=151", wantField: "age", wantErr: domain.ErrOutOfRange},
		{name: "limit zero", query: "limit=0", wantField: "limit", wantErr: domain.ErrOutOfRange},
		{name: "limit too large", query: "limit=201", wantField: "limit", wantErr: domain.ErrOutOfRange},
		{name: "negative offset", query: "offset=-1", wantField: "offset", wantErr: domain.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/decks?"+tt.query, nil)

			got, err := parseDeckFilter(req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrValidation)

				var verr *domain.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.wantField, verr.Field)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestGetPathInt64(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		want    int64
		wantErr error
	}{
		{name: "valid", param: "42", want: 42},
		{name: "max int64", param: "9223372036854775807", want: 9223372036854775807},
		{name: "missing", param: "", wantErr: domain.ErrValidation},
		{name: "non-integer", param: "abc", wantErr: domain.ErrInvalidID},
		{name: "overflow", param: "9223372036854775808", wantErr: domain.ErrInvalidID},
		{name: "zero", param: "0", wantErr: domain.ErrInvalidID},
		{name: "negative", param: "-3", wantErr: domain.ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/decks/x", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.param)
			req = req.WithContext(contextWithRoute(req, rctx))

			got, err := getPathInt64(req, "id")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, domain.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
