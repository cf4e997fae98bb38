package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dvloznov/statement-analyzer/internal/api/middleware"
	"github.com/dvloznov/statement-analyzer/internal/gcs"
	"github.com/dvloznov/statement-analyzer/internal/statement"
	"github.com/rs/zerolog"
)

// statusFor maps an analysis failure to an HTTP status and a client-facing message.
func statusFor(err error) (int, string) {
	var (
		cfgErr        *statement.ConfigurationError
		upstreamErr   *statement.UpstreamError
		malformedErr  *statement.MalformedResponseError
		incompleteErr *statement.IncompleteResultError
		maxBytesErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable, "Servicio de IA no configurado"
	case errors.As(err, &upstreamErr):
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, "Tiempo de espera agotado con el servicio de IA"
		}
		return http.StatusBadGateway, "Error del servicio de IA"
	case errors.As(err, &malformedErr):
		return http.StatusBadGateway, "Respuesta inválida del servicio de IA"
	case errors.As(err, &incompleteErr):
		return http.StatusUnprocessableEntity, "Estructura de datos incompleta en la respuesta"
	case errors.As(err, &maxBytesErr), errors.Is(err, gcs.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "El archivo excede el tamaño máximo permitido"
	case errors.Is(err, gcs.ErrInvalidURI), errors.Is(err, statement.ErrEmptyDocument):
		return http.StatusBadRequest, "Solicitud inválida"
	case errors.Is(err, gcs.ErrNotFound):
		return http.StatusNotFound, "Documento no encontrado"
	default:
		return http.StatusInternalServerError, "Error procesando el archivo"
	}
}

// writeAnalysisError logs err and writes the mapped error response.
func writeAnalysisError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status, message := statusFor(err)
	event := log.Error()
	if status < http.StatusInternalServerError {
		event = log.Warn()
	}
	event.Err(err).Int("status", status).Msg(message)
	middleware.WriteError(w, status, message, err.Error())
}
