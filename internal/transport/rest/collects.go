package rest

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"payment-collect-visa/internal/debliqc"
	"payment-collect-visa/internal/service"
	"payment-collect-visa/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

const (
	maxReturnFileSize = 32 << 20
	multipartMemory   = 8 << 20
)

func (h *Handler) sendCollect(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateSendRequest(r)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			ErrorBadRequest(w, err.Error())
			return
		}
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	collectID, err := h.collects.StartSend(r.Context(), chi.URLParam(r, "paymode"), service.SendStart{
		UserID:         userID,
		PeriodIDs:      req.PeriodIDs,
		ExpirationDate: req.ExpirationDate,
		CSV:            req.CSVFormat,
	})
	if err != nil {
		startError(w, "sendCollect", err)
		return
	}

	SuccessAccepted(w, "Cobranza en proceso", map[string]interface{}{"collect_id": collectID})
}

func (h *Handler) returnCollect(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		ErrorBadRequest(w, "file is required")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		ErrorBadRequest(w, "file is required")
		return
	}
	defer file.Close()

	// one byte past the limit tells an oversized file from one that fits exactly
	data, err := io.ReadAll(io.LimitReader(file, h.maxReturnSize+1))
	if err != nil {
		ErrorBadRequest(w, "failed to read file")
		return
	}
	if int64(len(data)) > h.maxReturnSize {
		ErrorTooLarge(w, fmt.Sprintf("file exceeds the %d bytes limit", h.maxReturnSize))
		return
	}

	periods, err := parsePeriodList(r.FormValue("period_ids"))
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	collectID, err := h.collects.StartReturn(r.Context(), chi.URLParam(r, "paymode"), service.ReturnStart{
		UserID:     userID,
		PeriodIDs:  periods,
		ReturnFile: data,
	})
	if err != nil {
		startError(w, "returnCollect", err)
		return
	}

	SuccessAccepted(w, "Archivo de respuesta en proceso", map[string]interface{}{"collect_id": collectID})
}

func startError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownPayMode):
		ErrorNotFound(w, err.Error())
	case errors.Is(err, debliqc.ErrEmptyInput):
		ErrorBadRequest(w, err.Error())
	case errors.Is(err, debliqc.ErrConfiguration):
		ErrorUnprocessable(w, err.Error())
	default:
		log.Printf("[HTTP] %s error: %v", op, err)
		ErrorInternal(w, "failed to start collect")
	}
}

func (h *Handler) listCollects(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	collects, err := h.collectList.GetCollects(r.Context(), userID)
	if err != nil {
		log.Printf("[HTTP] listCollects error: %v", err)
		ErrorInternal(w, "failed to get collects")
		return
	}

	Success(w, "", collects)
}

func (h *Handler) getCollect(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	collectID := chi.URLParam(r, "collect_id")
	if collectID == "" {
		ErrorBadRequest(w, "collect_id is required")
		return
	}
	if !strings.HasPrefix(collectID, "collects:") {
		collectID = "collects:" + collectID
	}

	collect, err := h.collectList.GetCollect(r.Context(), collectID, userID)
	if err != nil {
		log.Printf("[HTTP] getCollect error: %v", err)
		ErrorNotFound(w, "collect not found")
		return
	}

	Success(w, "", collect)
}
