package rpc

import "github.com/hamudi896/LagerAppENV/internal/core/domain"

type AdjustStockRequest struct {
	RequestId  string `json:"request_id,omitempty"`
	LocationId int64  `json:"location_id"`
	ItemId     int64  `json:"item_id"`
	Adjustment int64  `json:"adjustment"`
}

func (r *AdjustStockRequest) GetRequestId() string {
	if r == nil {
		return ""
	}
	return r.RequestId
}

func (r *AdjustStockRequest) GetLocationId() int64 {
	if r == nil {
		return 0
	}
	return r.LocationId
}

func (r *AdjustStockRequest) GetItemId() int64 {
	if r == nil {
		return 0
	}
	return r.ItemId
}

func (r *AdjustStockRequest) GetAdjustment() int64 {
	if r == nil {
		return 0
	}
	return r.Adjustment
}

type AdjustStockResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	NewQuantity int64  `json:"new_quantity"`
}

type LocationStockRequest struct {
	LocationId int64 `json:"location_id"`
}

type LocationStockResponse struct {
	Quantities map[int64]int64 `json:"quantities"`
}

type DashboardRequest struct{}

type DashboardResponse struct {
	Matrix domain.DashboardMatrix `json:"matrix"`
}
