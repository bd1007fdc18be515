package port

import (
	"time"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
)

// LedgerMetrics receives operational signals from the services.
type LedgerMetrics interface {
	StockAdjusted(mode domain.AdjustMode, err error)
	DashboardBuilt(took time.Duration, items int)
	ReportExported(bytes int, err error)
}

// NopMetrics discards every signal.
type NopMetrics struct{}

func (NopMetrics) StockAdjusted(domain.AdjustMode, error) {}
func (NopMetrics) DashboardBuilt(time.Duration, int) {}
func (NopMetrics) ReportExported(int, error) {}
