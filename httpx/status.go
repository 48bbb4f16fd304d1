package httpx

import "net/http"

const (
	StatusOK                  = http.StatusOK
	StatusCreated             = http.StatusCreated
	StatusNoContent           = http.StatusNoContent
	StatusFound               = http.StatusFound    // Guard redirects
	StatusSeeOther            = http.StatusSeeOther // Redirect after a form POST
	StatusBadRequest          = http.StatusBadRequest
	StatusUnauthorized        = http.StatusUnauthorized // Session rejected by the API
	StatusForbidden           = http.StatusForbidden    // Session rejected by the API
	StatusNotFound            = http.StatusNotFound
	StatusUnsupportedMedia    = http.StatusUnsupportedMediaType // Upload is not a PDF
	StatusUnprocessableEntity = http.StatusUnprocessableEntity
	StatusInternalError       = http.StatusInternalServerError
	StatusBadGateway          = http.StatusBadGateway         // Remote API failure
	StatusServiceUnavailable  = http.StatusServiceUnavailable // Session not hydrated yet
)
