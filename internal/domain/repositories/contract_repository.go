package repositories

import (
	"context"

	"github.com/google/uuid"
	"stark-ops.backend/internal/domain/entities"
	"stark-ops.backend/pkg/utils"
)

// ContractRepository defines contract registry data operations
type ContractRepository interface {
	Create(ctx context.Context, contract *entities.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Contract, error)
	GetByName(ctx context.Context, name string) (*entities.Contract, error)
	GetByAddress(ctx context.Context, address string) (*entities.Contract, error)
	GetAll(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Contract, int64, error)
	// SetAddress binds the on-chain address after a deployment settles.
	SetAddress(ctx context.Context, id uuid.UUID, address string) error
	Update(ctx context.Context, contract *entities.Contract) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
