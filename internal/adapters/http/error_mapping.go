package httpadapter

import (
	"net/http"

	"github.com/amoghv/rollscan/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrJobNotFound), domain.IsKind(err, domain.ErrRollNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrRollExists):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
