package port

import (
	"context"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
)

// SheetEncoder serializes a table into a single-sheet spreadsheet document.
type SheetEncoder interface {
	Encode(table domain.Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// ReportArchive keeps exported documents under a key and returns where they landed.
type ReportArchive interface {
	Store(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
