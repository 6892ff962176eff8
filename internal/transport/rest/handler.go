package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"payment-collect-visa/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type CollectStarter interface {
	StartSend(ctx context.Context, payMode string, start service.SendStart) (string, error)
	StartReturn(ctx context.Context, payMode string, start service.ReturnStart) (string, error)
}

type CollectListService interface {
	GetCollects(ctx context.Context, userID int64) ([]map[string]any, error)
	GetCollect(ctx context.Context, collectID string, userID int64) (map[string]any, error)
}

type Handler struct {
	collects    CollectStarter
	collectList CollectListService

	maxReturnSize int64
}

func NewHandler(collects CollectStarter, collectList CollectListService) *Handler {
	return &Handler{
		collects:      collects,
		collectList:   collectList,
		maxReturnSize: maxReturnFileSize,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		MetricsMiddleware,
		middleware.Timeout(60*time.Second),
	)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "payment-collect-visa")
	})

	r.Route("/collects", func(r chi.Router) {
		r.Get("/", h.listCollects)
		r.Get("/{collect_id}", h.getCollect)
		r.Post("/{paymode}/send", h.sendCollect)
		r.Post("/{paymode}/return", h.returnCollect)
	})

	return r
}
