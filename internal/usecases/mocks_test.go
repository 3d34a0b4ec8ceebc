package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"stark-ops.backend/internal/domain/entities"
	domainerrors "stark-ops.backend/internal/domain/errors"
	"stark-ops.backend/internal/starknet"
	"stark-ops.backend/pkg/utils"
)

// fakeRunner replays queued CLI results per verb.
type fakeRunner struct {
	results map[string][]*starknet.Result
	errs    map[string]error
	calls   [][]string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		results: make(map[string][]*starknet.Result),
		errs:    make(map[string]error),
	}
}

func (f *fakeRunner) queue(verb string, result *starknet.Result) {
	f.results[verb] = append(f.results[verb], result)
}

func (f *fakeRunner) queueStatus(status, blockHash string) {
	f.queue("tx_status", &starknet.Result{
		Stdout: fmt.Sprintf(`{"block_hash": %q, "tx_status": %q}`, blockHash, status),
	})
}

func (f *fakeRunner) Run(_ context.Context, verb string, args ...string) (*starknet.Result, error) {
	f.calls = append(f.calls, append([]string{verb}, args...))
	if err := f.errs[verb]; err != nil {
		return nil, err
	}
	queued := f.results[verb]
	if len(queued) == 0 {
		return nil, fmt.Errorf("no queued result for verb %q", verb)
	}
	result := queued[0]
	f.results[verb] = queued[1:]
	return result, nil
}

// memContractRepo is an in-memory repositories.ContractRepository.
type memContractRepo struct {
	contracts map[uuid.UUID]*entities.Contract
}

func newMemContractRepo() *memContractRepo {
	return &memContractRepo{contracts: make(map[uuid.UUID]*entities.Contract)}
}

func (r *memContractRepo) Create(_ context.Context, contract *entities.Contract) error {
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	clone := *contract
	r.contracts[contract.ID] = &clone
	return nil
}

func (r *memContractRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Contract, error) {
	contract, ok := r.contracts[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *contract
	return &clone, nil
}

func (r *memContractRepo) GetByName(_ context.Context, name string) (*entities.Contract, error) {
	for _, contract := range r.contracts {
		if contract.Name == name {
			clone := *contract
			return &clone, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memContractRepo) GetByAddress(_ context.Context, address string) (*entities.Contract, error) {
	for _, contract := range r.contracts {
		if contract.Address.Valid && contract.Address.String == address {
			clone := *contract
			return &clone, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memContractRepo) GetAll(_ context.Context, _ utils.PaginationParams) ([]*entities.Contract, int64, error) {
	var out []*entities.Contract
	for _, contract := range r.contracts {
		clone := *contract
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *memContractRepo) SetAddress(_ context.Context, id uuid.UUID, address string) error {
	contract, ok := r.contracts[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	contract.Address = null.StringFrom(address)
	return nil
}

func (r *memContractRepo) Update(_ context.Context, contract *entities.Contract) error {
	if _, ok := r.contracts[contract.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	clone := *contract
	r.contracts[contract.ID] = &clone
	return nil
}

func (r *memContractRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.contracts[id]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(r.contracts, id)
	return nil
}

// memTransactionRepo is an in-memory repositories.TransactionRepository.
type memTransactionRepo struct {
	txs map[string]*entities.ContractTransaction
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{txs: make(map[string]*entities.ContractTransaction)}
}

func (r *memTransactionRepo) Create(_ context.Context, tx *entities.ContractTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	clone := *tx
	r.txs[tx.Hash] = &clone
	return nil
}

func (r *memTransactionRepo) GetByHash(_ context.Context, hash string) (*entities.ContractTransaction, error) {
	tx, ok := r.txs[hash]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *tx
	return &clone, nil
}

func (r *memTransactionRepo) GetByContract(_ context.Context, contractID uuid.UUID, _ utils.PaginationParams) ([]*entities.ContractTransaction, int64, error) {
	var out []*entities.ContractTransaction
	for _, tx := range r.txs {
		if tx.ContractID == contractID {
			clone := *tx
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memTransactionRepo) GetUnsettled(_ context.Context, limit int) ([]*entities.ContractTransaction, error) {
	var out []*entities.ContractTransaction
	for _, tx := range r.txs {
		if tx.Status == "ACCEPTED_ONCHAIN" || tx.Status == "REJECTED" {
			continue
		}
		clone := *tx
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hash < out[j].Hash })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTransactionRepo) UpdateStatus(_ context.Context, hash, status, blockHash string) error {
	tx, ok := r.txs[hash]
	if !ok {
		return domainerrors.ErrNotFound
	}
	tx.Status = status
	if blockHash != "" {
		tx.BlockHash = null.StringFrom(blockHash)
	}
	return nil
}
