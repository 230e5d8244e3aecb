package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"smm-storefront/internal/domain"
	"smm-storefront/internal/domain/model"
	"smm-storefront/internal/domain/ports/repository"
	"smm-storefront/internal/usecase"
)

// statsHandler serves order totals and revenue.
func statsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		totals, err := statsUC.Totals(ctx)
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}
		week, month, year, err := statsUC.Revenue(ctx)
		if err != nil {
			http.Error(w, "Failed to get revenue", http.StatusInternalServerError)
			return
		}

		response := struct {
			OrdersByStatus map[model.OrderStatus]int `json:"orders_by_status"`
			Revenue        struct {
				Week  int64 `json:"week"`
				Month int64 `json:"month"`
				Year  int64 `json:"year"`
			} `json:"revenue_minor"`
		}{
			OrdersByStatus: totals,
		}
		response.Revenue.Week = week
		response.Revenue.Month = month
		response.Revenue.Year = year

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// ordersListHandler returns orders in a given status.
// Accepts 'status', 'offset' and 'limit' query parameters.
func ordersListHandler(orders repository.OrderRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status := model.OrderStatus(r.URL.Query().Get("status"))
		if status == "" {
			status = model.OrderStatusProcessing
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}

		list, err := orders.ListByStatus(ctx, repository.NoTX, status, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list orders", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data   []*model.Order `json:"data"`
			Limit  int            `json:"limit"`
			Offset int            `json:"offset"`
		}{
			Data:   list,
			Limit:  limit,
			Offset: offset,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// orderGetHandler looks up one order by internal id, payment reference or
// upstream order id, in that order.
func orderGetHandler(orders repository.OrderRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Order ID is required", http.StatusBadRequest)
			return
		}

		order, err := orders.FindByID(ctx, repository.NoTX, id)
		if errors.Is(err, domain.ErrNotFound) {
			order, err = orders.FindByPaymentRef(ctx, repository.NoTX, id)
		}
		if errors.Is(err, domain.ErrNotFound) {
			order, err = orders.FindByUpstreamID(ctx, repository.NoTX, id)
		}
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to get order", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(order)
	}
}
