package handler

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hamudi896/LagerAppENV/internal/adapter/handler/rpc"
	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/core/service"
)

type GRPCHandler struct {
	ledger     *service.LedgerService
	aggregator *service.Aggregator
	logger     *slog.Logger
}

var _ rpc.LedgerServer = (*GRPCHandler)(nil)

func NewGRPCHandler(ledger *service.LedgerService, aggregator *service.Aggregator, logger *slog.Logger) *GRPCHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCHandler{ledger: ledger, aggregator: aggregator, logger: logger}
}

func (h *GRPCHandler) AdjustStock(ctx context.Context, req *rpc.AdjustStockRequest) (*rpc.AdjustStockResponse, error) {
	return h.apply(ctx, domain.AdjustBounded, req)
}

func (h *GRPCHandler) AddStock(ctx context.Context, req *rpc.AdjustStockRequest) (*rpc.AdjustStockResponse, error) {
	return h.apply(ctx, domain.AdjustUnbounded, req)
}

func (h *GRPCHandler) apply(ctx context.Context, mode domain.AdjustMode, req *rpc.AdjustStockRequest) (*rpc.AdjustStockResponse, error) {
	qty, err := h.ledger.ApplyOnce(ctx, req.GetRequestId(), mode, req.GetLocationId(), req.GetItemId(), req.GetAdjustment())
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRequest) {
			return &rpc.AdjustStockResponse{
				Success: false,
				Message: "duplicate request",
			}, nil
		}
		if errors.Is(err, domain.ErrInvalidReference) {
			return &rpc.AdjustStockResponse{
				Success: false,
				Message: "unknown location or item",
			}, nil
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return &rpc.AdjustStockResponse{
				Success: false,
				Message: "invalid request",
			}, nil
		}
		return &rpc.AdjustStockResponse{
			Success: false,
			Message: "internal error",
		}, nil
	}

	return &rpc.AdjustStockResponse{
		Success:     true,
		Message:     "stock updated",
		NewQuantity: qty,
	}, nil
}

func (h *GRPCHandler) LocationStock(ctx context.Context, req *rpc.LocationStockRequest) (*rpc.LocationStockResponse, error) {
	quantities, err := h.ledger.LocationStock(ctx, req.LocationId)
	if err != nil {
		return nil, h.statusError(err)
	}
	return &rpc.LocationStockResponse{Quantities: quantities}, nil
}

func (h *GRPCHandler) Dashboard(ctx context.Context, _ *rpc.DashboardRequest) (*rpc.DashboardResponse, error) {
	m, err := h.aggregator.Build(ctx)
	if err != nil {
		return nil, h.statusError(err)
	}
	return &rpc.DashboardResponse{Matrix: m}, nil
}

func (h *GRPCHandler) statusError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidReference):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		h.logger.Error("rpc failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
