package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"stark-ops.backend/internal/domain/entities"
	domainerrors "stark-ops.backend/internal/domain/errors"
	"stark-ops.backend/internal/domain/repositories"
	"stark-ops.backend/internal/infrastructure/models"
	"stark-ops.backend/pkg/utils"
)

// contractRepo implements repositories.ContractRepository
type contractRepo struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract registry repository
func NewContractRepository(db *gorm.DB) repositories.ContractRepository {
	return &contractRepo{db: db}
}

// Create creates a new contract registry record
func (r *contractRepo) Create(ctx context.Context, contract *entities.Contract) error {
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	m := r.toModel(contract)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	contract.CreatedAt = m.CreatedAt
	contract.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a contract by ID
func (r *contractRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Contract, error) {
	var m models.Contract
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByName gets a contract by its registered name
func (r *contractRepo) GetByName(ctx context.Context, name string) (*entities.Contract, error) {
	var m models.Contract
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByAddress gets a contract by its bound on-chain address
func (r *contractRepo) GetByAddress(ctx context.Context, address string) (*entities.Contract, error) {
	var m models.Contract
	if err := r.db.WithContext(ctx).Where("address = ?", address).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetAll lists registered contracts, newest first
func (r *contractRepo) GetAll(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Contract, int64, error) {
	var ms []models.Contract
	var totalCount int64

	query := r.db.WithContext(ctx).Model(&models.Contract{})
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var contracts []*entities.Contract
	for _, m := range ms {
		model := m
		contracts = append(contracts, r.toEntity(&model))
	}
	return contracts, totalCount, nil
}

// SetAddress binds the settled deployment address
func (r *contractRepo) SetAddress(ctx context.Context, id uuid.UUID, address string) error {
	result := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ?", id).
		Update("address", address)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Update updates a contract registry record
func (r *contractRepo) Update(ctx context.Context, contract *entities.Contract) error {
	updates := map[string]interface{}{
		"name":          contract.Name,
		"abi_path":      contract.AbiPath,
		"artifact_path": contract.ArtifactPath,
	}
	if contract.Address.Valid {
		updates["address"] = contract.Address.String
	}

	result := r.db.WithContext(ctx).Model(&models.Contract{}).Where("id = ?", contract.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a contract registry record
func (r *contractRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Contract{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// toEntity converts GORM model to Domain Entity
func (r *contractRepo) toEntity(m *models.Contract) *entities.Contract {
	return &entities.Contract{
		ID:           m.ID,
		Name:         m.Name,
		Address:      null.StringFromPtr(m.Address),
		AbiPath:      m.AbiPath,
		ArtifactPath: m.ArtifactPath,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// toModel converts Domain Entity to GORM model
func (r *contractRepo) toModel(e *entities.Contract) *models.Contract {
	return &models.Contract{
		ID:           e.ID,
		Name:         e.Name,
		Address:      e.Address.Ptr(),
		AbiPath:      e.AbiPath,
		ArtifactPath: e.ArtifactPath,
	}
}
