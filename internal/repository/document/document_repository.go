// File: internal/repository/document/document_repository.go
package document

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/iyunix/go-ragchat/internal/domain"
)

// ErrDuplicateDocument is returned when the same (filename, hash) pair is
// recorded twice.
var ErrDuplicateDocument = errors.New("document version already recorded")

type gormDocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &gormDocumentRepository{db: db}
}

func (r *gormDocumentRepository) WithTx(tx *gorm.DB) DocumentRepository {
	return &gormDocumentRepository{db: tx}
}

func (r *gormDocumentRepository) ExistsByFilenameAndContentHash(ctx context.Context, filename, contentHash string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.LoadedDocument{}).
		Where("filename = ? AND content_hash = ?", filename, contentHash).
		Count(&count).Error
	if err != nil {
		log.Printf("[DocumentRepository] Database error checking ledger for %s: %v", filename, err)
		return false, storageError("checking ledger", err)
	}
	return count > 0, nil
}

// Create writes one ledger entry. Entries are never updated.
func (r *gormDocumentRepository) Create(ctx context.Context, doc *domain.LoadedDocument) (*domain.LoadedDocument, error) {
	if doc == nil || doc.Filename == "" || doc.ContentHash == "" {
		return nil, errors.New("filename and content hash are required")
	}
	if doc.ChunkCount < 0 {
		return nil, errors.New("chunk count cannot be negative")
	}

	err := r.db.WithContext(ctx).Create(doc).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDocument, doc.Filename)
		}
		log.Printf("[DocumentRepository] Database error recording %s: %v", doc.Filename, err)
		return nil, storageError("recording document", err)
	}

	log.Printf("[DocumentRepository] Recorded %s (%d chunks)", doc.Filename, doc.ChunkCount)
	return doc, nil
}

func (r *gormDocumentRepository) FindAll(ctx context.Context) ([]domain.LoadedDocument, error) {
	var docs []domain.LoadedDocument
	if err := r.db.WithContext(ctx).Order("loaded_at ASC, id ASC").Find(&docs).Error; err != nil {
		return nil, storageError("listing ledger", err)
	}
	return docs, nil
}

func (r *gormDocumentRepository) FindByFilename(ctx context.Context, filename string) ([]domain.LoadedDocument, error) {
	var docs []domain.LoadedDocument
	err := r.db.WithContext(ctx).
		Where("filename = ?", filename).
		Order("loaded_at ASC, id ASC").
		Find(&docs).Error
	if err != nil {
		return nil, storageError("listing ledger by filename", err)
	}
	return docs, nil
}

func (r *gormDocumentRepository) CountTotal(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.LoadedDocument{}).Count(&count).Error; err != nil {
		return 0, storageError("counting ledger", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func storageError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageFailure, operation, err)
}
