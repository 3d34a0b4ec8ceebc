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

// transactionRepo implements repositories.TransactionRepository
type transactionRepo struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) repositories.TransactionRepository {
	return &transactionRepo{db: db}
}

// Create records a freshly submitted transaction
func (r *transactionRepo) Create(ctx context.Context, tx *entities.ContractTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	m := r.toModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	tx.CreatedAt = m.CreatedAt
	tx.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByHash gets a transaction by its network hash
func (r *transactionRepo) GetByHash(ctx context.Context, hash string) (*entities.ContractTransaction, error) {
	var m models.ContractTransaction
	if err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByContract lists a contract's transactions, newest first
func (r *transactionRepo) GetByContract(ctx context.Context, contractID uuid.UUID, pagination utils.PaginationParams) ([]*entities.ContractTransaction, int64, error) {
	var ms []models.ContractTransaction
	var totalCount int64

	query := r.db.WithContext(ctx).Model(&models.ContractTransaction{}).Where("contract_id = ?", contractID)
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

	var txs []*entities.ContractTransaction
	for _, m := range ms {
		model := m
		txs = append(txs, r.toEntity(&model))
	}
	return txs, totalCount, nil
}

// GetUnsettled returns transactions still awaiting a terminal status
func (r *transactionRepo) GetUnsettled(ctx context.Context, limit int) ([]*entities.ContractTransaction, error) {
	var ms []models.ContractTransaction
	query := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{"ACCEPTED_ONCHAIN", "REJECTED"}).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	var txs []*entities.ContractTransaction
	for _, m := range ms {
		model := m
		txs = append(txs, r.toEntity(&model))
	}
	return txs, nil
}

// UpdateStatus records the latest observed network status
func (r *transactionRepo) UpdateStatus(ctx context.Context, hash, status, blockHash string) error {
	updates := map[string]interface{}{"status": status}
	if blockHash != "" {
		updates["block_hash"] = blockHash
	}

	result := r.db.WithContext(ctx).Model(&models.ContractTransaction{}).
		Where("hash = ?", hash).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// toEntity converts GORM model to Domain Entity
func (r *transactionRepo) toEntity(m *models.ContractTransaction) *entities.ContractTransaction {
	return &entities.ContractTransaction{
		ID:         m.ID,
		ContractID: m.ContractID,
		Hash:       m.Hash,
		Type:       entities.TransactionType(m.Type),
		Function:   null.StringFromPtr(m.Function),
		Status:     m.Status,
		BlockHash:  null.StringFromPtr(m.BlockHash),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// toModel converts Domain Entity to GORM model
func (r *transactionRepo) toModel(e *entities.ContractTransaction) *models.ContractTransaction {
	return &models.ContractTransaction{
		ID:         e.ID,
		ContractID: e.ContractID,
		Hash:       e.Hash,
		Type:       string(e.Type),
		Function:   e.Function.Ptr(),
		Status:     e.Status,
		BlockHash:  e.BlockHash.Ptr(),
	}
}
