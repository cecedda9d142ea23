package document

import (
	"context"

	"gorm.io/gorm"

	"github.com/iyunix/go-ragchat/internal/domain"
)

// DocumentRepository is the ingestion ledger.
type DocumentRepository interface {
	ExistsByFilenameAndContentHash(ctx context.Context, filename, contentHash string) (bool, error)
	Create(ctx context.Context, doc *domain.LoadedDocument) (*domain.LoadedDocument, error)
	FindAll(ctx context.Context) ([]domain.LoadedDocument, error)
	FindByFilename(ctx context.Context, filename string) ([]domain.LoadedDocument, error)
	CountTotal(ctx context.Context) (int64, error)

	WithTx(tx *gorm.DB) DocumentRepository
}
