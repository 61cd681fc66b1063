// Package httpapi exposes the sales service over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ventas/internal/logging"
	"github.com/dmitrijs2005/ventas/internal/server/models"
	"github.com/dmitrijs2005/ventas/internal/server/photos"
	"github.com/dmitrijs2005/ventas/internal/server/services"
)

// multipart overhead allowed on top of the photo itself
const formSlack = 1 << 20

type SalesService interface {
	Submit(ctx context.Context, sub services.Submission) (*models.Sale, services.State, error)
	List(ctx context.Context) ([]*models.Sale, error)
}

type Handler struct {
	sales         SalesService
	maxPhotoBytes int64
	logger        logging.Logger
}

func NewHandler(s SalesService, maxPhotoBytes int64, logger logging.Logger) *Handler {
	return &Handler{
		sales:         s,
		maxPhotoBytes: maxPhotoBytes,
		logger:        logger.With("module", "httpapi"),
	}
}

func (h *Handler) oversize() *payloadError {
	return &payloadError{msg: fmt.Sprintf("❌ La imagen excede el tamaño máximo permitido (%s).", formatSize(h.maxPhotoBytes))}
}

func formatSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d KB", (n+1023)>>10)
}

// readSubmission parses the multipart form. Every failure is a *payloadError.
func (h *Handler) readSubmission(w http.ResponseWriter, r *http.Request) (services.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxPhotoBytes+formSlack)

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.Submission{}, h.oversize()
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return services.Submission{}, &payloadError{msg: "Todos los campos son obligatorios."}
		}
		return services.Submission{}, &payloadError{msg: "❌ Formulario inválido."}
	}

	seller := strings.TrimSpace(r.FormValue("vendedor"))
	serial := strings.TrimSpace(r.FormValue("serie"))
	file, header, err := r.FormFile("foto")
	if err != nil || seller == "" || serial == "" {
		if file != nil {
			file.Close()
		}
		return services.Submission{}, &payloadError{msg: "Todos los campos son obligatorios."}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxPhotoBytes+1))
	if err != nil {
		return services.Submission{}, &payloadError{msg: "❌ No se pudo leer la imagen."}
	}
	if int64(len(data)) > h.maxPhotoBytes {
		return services.Submission{}, h.oversize()
	}
	if len(data) == 0 {
		return services.Submission{}, &payloadError{msg: "Todos los campos son obligatorios."}
	}

	contentType, ok := photos.DetectContentType(header.Header.Get("Content-Type"), data)
	if !ok {
		return services.Submission{}, &payloadError{msg: "❌ Solo se permiten imágenes JPEG, PNG o WEBP."}
	}

	return services.Submission{
		SalespersonID:    seller,
		SerialCode:       serial,
		PhotoName:        header.Filename,
		PhotoContentType: contentType,
		Photo:            data,
	}, nil
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sub, err := h.readSubmission(w, r)
	if err != nil {
		h.logger.Info(ctx, "payload rejected", "error", err)
		respondWithError(w, err)
		return
	}

	if _, _, err := h.sales.Submit(ctx, sub); err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"mensaje": successMessage})
}

func (h *Handler) handleListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.List(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "listing sales failed", "error", err)
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sales)
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Servidor de ventas activo ✅"))
}
