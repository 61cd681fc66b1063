package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/ventas/internal/common"
	"github.com/dmitrijs2005/ventas/internal/server/models"
	"github.com/dmitrijs2005/ventas/internal/server/services"
)

// Reason codes for failures that are not validation verdicts.
const (
	ReasonPayload          = "PAYLOAD_ERROR"
	ReasonStorage          = "STORAGE_ERROR"
	ReasonPersistence      = "PERSISTENCE_ERROR"
	ReasonRequestAbandoned = "REQUEST_ABANDONED"
	ReasonUnauthorized     = "UNAUTHORIZED"
	ReasonInternal         = "INTERNAL_ERROR"
)

const successMessage = "✅ Venta registrada correctamente"

var rejectionMessages = map[string]string{
	models.ReasonSellerNotRegistered: "❌ Vendedor no registrado.",
	models.ReasonSerialInvalid:       "❌ Número de serie no válido.",
	models.ReasonSellerBlocked:       "⛔ Vendedor bloqueado. Contacta a administración.",
}

// errorResponse is the JSON body of every failed request. The attempt
// fields are present only for counted rejections.
type errorResponse struct {
	Error       string `json:"error"`
	Reason      string `json:"reason"`
	Attempts    int    `json:"attempts,omitempty"`
	MaxAttempts int    `json:"max_attempts,omitempty"`
	Blocked     bool   `json:"blocked,omitempty"`
}

type payloadError struct {
	msg string
}

func (e *payloadError) Error() string { return e.msg }

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"❌ Error inesperado en el servidor.","reason":"INTERNAL_ERROR"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func rejectionResponse(rej *services.RejectionError) (int, errorResponse) {
	body := errorResponse{Reason: rej.Reason}

	switch {
	case rej.Attempts == 0:
		// already blocked, nothing was counted
		body.Error = rejectionMessages[models.ReasonSellerBlocked]
		body.Blocked = true
		return http.StatusForbidden, body
	case rej.Blocked:
		body.Error = fmt.Sprintf("🚫 Has sido bloqueado por %d intentos fallidos.", rej.MaxAttempts)
		body.Attempts, body.MaxAttempts, body.Blocked = rej.Attempts, rej.MaxAttempts, true
		return http.StatusForbidden, body
	default:
		msg, ok := rejectionMessages[rej.Reason]
		if !ok {
			msg = "❌ Solicitud rechazada."
		}
		body.Error = fmt.Sprintf("%s (Intento %d/%d)", msg, rej.Attempts, rej.MaxAttempts)
		body.Attempts, body.MaxAttempts = rej.Attempts, rej.MaxAttempts
		return http.StatusBadRequest, body
	}
}

// errorToResponse translates service errors into a status and body.
func errorToResponse(err error) (int, errorResponse) {
	var (
		rej *services.RejectionError
		pe  *payloadError
	)
	switch {
	case errors.As(err, &rej):
		return rejectionResponse(rej)
	case errors.As(err, &pe):
		return http.StatusBadRequest, errorResponse{Error: pe.msg, Reason: ReasonPayload}
	case errors.Is(err, common.ErrInternalValidation):
		return http.StatusInternalServerError, errorResponse{Error: "❌ Error interno en validación.", Reason: models.ReasonInternalValidationError}
	case errors.Is(err, common.ErrRequestAbandoned):
		return http.StatusServiceUnavailable, errorResponse{Error: "❌ Solicitud cancelada.", Reason: ReasonRequestAbandoned}
	case errors.Is(err, common.ErrStorage):
		return http.StatusInternalServerError, errorResponse{Error: "❌ Error al subir la imagen.", Reason: ReasonStorage}
	case errors.Is(err, common.ErrPersistence):
		return http.StatusInternalServerError, errorResponse{Error: "❌ Error al registrar la venta en la base de datos.", Reason: ReasonPersistence}
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusForbidden, errorResponse{Error: "⛔ Acceso denegado.", Reason: ReasonUnauthorized}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "❌ Error inesperado en el servidor.", Reason: ReasonInternal}
	}
}

func respondWithError(w http.ResponseWriter, err error) {
	code, body := errorToResponse(err)
	respondWithJSON(w, code, body)
}
