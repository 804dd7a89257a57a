package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/obo-api/internal/api/shared"
	"github.com/phrazzld/obo-api/internal/domain"
)

// listDecksParams holds the parsed listing query string. Bounds are checked
// with validator tags before the filter is built.
type listDecksParams struct {
	Age    *int `query:"age"    validate:"omitempty,min=0,max=150"`
	Limit  int  `query:"limit"  validate:"min=1,max=200"`
	Offset int  `query:"offset" validate:"min=0"`
}

// parseDeckFilter reads age, limit and offset from the query string.
// Absent or empty parameters take their defaults. Non-integers and
// out-of-range values produce a *domain.ValidationError naming the parameter.
func parseDeckFilter(r *http.Request) (domain.DeckFilter, error) {
	query := r.URL.Query()
	params := listDecksParams{Limit: domain.DefaultLimit}

	if raw := query.Get("age"); raw != "" {
		age, err := parseIntParam("age", raw)
		if err != nil {
			return domain.DeckFilter{}, err
		}
		params.Age = &age
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := parseIntParam("limit", raw)
		if err != nil {
			return domain.DeckFilter{}, err
		}
		params.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := parseIntParam("offset", raw)
		if err != nil {
			return domain.DeckFilter{}, err
		}
		params.Offset = offset
	}

	if err := shared.ValidateRequest(&params); err != nil {
		return domain.DeckFilter{}, fromValidatorErrors(err)
	}

	return domain.DeckFilter{
		Age:    params.Age,
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

func parseIntParam(name, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrInvalidFormat)
	}
	return v, nil
}

// getPathInt64 extracts a positive integer ID from the URL path parameters.
//
// Returns:
//   - (id, nil): The parsed ID if valid
//   - (0, error): A validation error if the parameter is missing, not an integer, or below 1
func getPathInt64(r *http.Request, paramName string) (int64, error) {
	// Extract parameter from URL path using chi router
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(paramName, "must be an integer", domain.ErrInvalidID)
	}
	if id < 1 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", domain.ErrInvalidID)
	}

	return id, nil
}
