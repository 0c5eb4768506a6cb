package output

import (
	"context"

	"research-agent/internal/domain/entity"
)

type PaperSearchPort interface {
	Search(ctx context.Context, query entity.SearchQuery) ([]entity.Paper, error)
}
