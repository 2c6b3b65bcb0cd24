package http

import (
	"context"

	"sheetcli/internal/services"
	"sheetcli/pkg/contracts/domain"
)

// TableServiceInterface is the slice of the session the handlers use
type TableServiceInterface interface {
	LoadAs(ctx context.Context, source, label string) (*domain.LoadSummary, error)
	Loaded() bool
	View() (domain.TableView, error)
	Sort(column string, order domain.SortOrder) (domain.TableView, error)
	Search(term string) (domain.TableView, error)
	ResetSearch() (domain.TableView, error)
	SendEmail(ctx context.Context, req services.EmailRequest, password string) error
	Clear()
}
