package repositories

import (
	"context"

	"github.com/google/uuid"
	"stark-ops.backend/internal/domain/entities"
	"stark-ops.backend/pkg/utils"
)

// TransactionRepository defines submitted-transaction data operations
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.ContractTransaction) error
	GetByHash(ctx context.Context, hash string) (*entities.ContractTransaction, error)
	GetByContract(ctx context.Context, contractID uuid.UUID, pagination utils.PaginationParams) ([]*entities.ContractTransaction, int64, error)
	// GetUnsettled returns transactions whose last observed status is not
	// terminal, oldest first.
	GetUnsettled(ctx context.Context, limit int) ([]*entities.ContractTransaction, error)
	// UpdateStatus records the latest observed network status. An empty
	// blockHash leaves the stored block hash null.
	UpdateStatus(ctx context.Context, hash, status, blockHash string) error
}
