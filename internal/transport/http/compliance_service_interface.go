package http

import (
	"context"
	"io"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/services"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

// ComplianceServiceInterface defines the compliance operations the handler needs
type ComplianceServiceInterface interface {
	Inspect(ctx context.Context, upload io.Reader, filename string) (*domain.WorkbookInfo, error)
	Check(ctx context.Context, upload io.Reader, filename string, req domain.CheckRequest) (*domain.CheckResult, error)
	Download(ctx context.Context, id string) (*services.StoredResult, error)
	Discard(ctx context.Context, id string) error
}

// Ensure the concrete service satisfies the interface
var _ ComplianceServiceInterface = (*services.ComplianceService)(nil)
