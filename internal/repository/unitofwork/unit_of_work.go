package unitofwork

import (
	"context"

	"wiki-craft-be/internal/repository/contract"
)

// UnitOfWork scopes repository access to one logical transaction. Replacing
// or deleting a document's chunks happens entirely inside Begin/Commit so a
// reader never observes a half-replaced document.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	ChunkRepository() contract.ChunkRepository
}
