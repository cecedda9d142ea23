// File: internal/domain/loaded_document.go
package domain

import "time"

// LoadedDocument records that one exact version of a knowledge-base file has
// been chunked and indexed. The (filename, content hash) pair is unique.
type LoadedDocument struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Filename     string    `json:"filename" gorm:"size:512;not null;uniqueIndex:ux_document_version,priority:1"`
	ContentHash  string    `json:"content_hash" gorm:"size:64;not null;uniqueIndex:ux_document_version,priority:2"`
	DocumentType string    `json:"document_type" gorm:"size:16;not null"`
	ChunkCount   int       `json:"chunk_count" gorm:"not null;default:0"`
	LoadedAt     time.Time `json:"loaded_at" gorm:"autoCreateTime"`
}
