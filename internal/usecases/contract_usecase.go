package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"stark-ops.backend/internal/domain/entities"
	domainerrors "stark-ops.backend/internal/domain/errors"
	"stark-ops.backend/internal/domain/repositories"
	"stark-ops.backend/internal/infrastructure/metrics"
	"stark-ops.backend/internal/starknet"
	"stark-ops.backend/pkg/logger"
	"stark-ops.backend/pkg/redis"
	"stark-ops.backend/pkg/utils"
)

var readAbiFile = os.ReadFile

// ContractUsecase orchestrates contract registry, deployment, invocation and
// transaction tracking over the starknet CLI.
type ContractUsecase struct {
	contractRepo repositories.ContractRepository
	txRepo       repositories.TransactionRepository
	runner       starknet.Runner
	poller       *starknet.Poller
	abiCache     *redis.ABICache // nil disables caching
}

// NewContractUsecase creates a new contract usecase
func NewContractUsecase(
	contractRepo repositories.ContractRepository,
	txRepo repositories.TransactionRepository,
	runner starknet.Runner,
	poller *starknet.Poller,
	abiCache *redis.ABICache,
) *ContractUsecase {
	return &ContractUsecase{
		contractRepo: contractRepo,
		txRepo:       txRepo,
		runner:       runner,
		poller:       poller,
		abiCache:     abiCache,
	}
}

// Register adds a compiled contract to the registry. The ABI file must be
// loadable; a contract with an unreadable ABI would fail on every later
// operation anyway.
func (u *ContractUsecase) Register(ctx context.Context, input *entities.RegisterContractInput) (*entities.Contract, error) {
	if _, err := u.loadIndex(ctx, input.AbiPath); err != nil {
		return nil, err
	}

	contract := &entities.Contract{
		Name:         input.Name,
		AbiPath:      input.AbiPath,
		ArtifactPath: input.ArtifactPath,
	}
	if input.Address != "" {
		contract.Address = null.StringFrom(input.Address)
	}

	if _, err := u.contractRepo.GetByName(ctx, input.Name); err == nil {
		return nil, domainerrors.ErrAlreadyExists
	} else if err != domainerrors.ErrNotFound {
		return nil, err
	}

	if err := u.contractRepo.Create(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// Get returns a registered contract by ID
func (u *ContractUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.Contract, error) {
	return u.contractRepo.GetByID(ctx, id)
}

// List returns registered contracts
func (u *ContractUsecase) List(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Contract, int64, error) {
	return u.contractRepo.GetAll(ctx, pagination)
}

// Delete removes a contract from the registry
func (u *ContractUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	return u.contractRepo.SoftDelete(ctx, id)
}

// Deploy submits a deploy transaction for a registered contract and waits
// until it settles. The on-chain address is bound to the registry record
// only when the deployment is accepted.
func (u *ContractUsecase) Deploy(ctx context.Context, id uuid.UUID, input *entities.DeployContractInput) (*entities.Contract, *entities.ContractTransaction, error) {
	contract, err := u.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if contract.Deployed() {
		return nil, nil, fmt.Errorf("contract %s already has address %s: %w",
			contract.Name, contract.Address.String, domainerrors.ErrAlreadyExists)
	}

	factory, err := u.factoryFor(ctx, contract)
	if err != nil {
		return nil, nil, err
	}
	args, err := decodeArgs(input.ConstructorArgs)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	handle, txHash, deployErr := factory.Deploy(ctx, args, input.Signature)

	var tx *entities.ContractTransaction
	if txHash != "" {
		tx = u.recordTransaction(ctx, contract.ID, txHash, entities.TransactionTypeDeploy, "")
	}

	if deployErr != nil {
		metrics.RecordSubmission("deploy", submissionOutcome(deployErr))
		return nil, tx, deployErr
	}
	metrics.RecordSubmission("deploy", metrics.OutcomeAccepted)
	metrics.RecordSettlement(time.Since(start))

	if err := u.contractRepo.SetAddress(ctx, contract.ID, handle.Address()); err != nil {
		return nil, tx, err
	}
	contract.Address = null.StringFrom(handle.Address())
	logger.Info(ctx, "contract deployed",
		zap.String("name", contract.Name),
		zap.String("address", handle.Address()),
		zap.String("tx_hash", txHash),
	)
	return contract, tx, nil
}

// Invoke submits a state-changing function call on a deployed contract
func (u *ContractUsecase) Invoke(ctx context.Context, id uuid.UUID, input *entities.InvokeContractInput) (*entities.ContractTransaction, error) {
	handle, contract, err := u.handleFor(ctx, id)
	if err != nil {
		return nil, err
	}
	args, err := decodeArgs(input.Args)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	txHash, _, invokeErr := handle.Invoke(ctx, input.Function, args, input.Signature)

	var tx *entities.ContractTransaction
	if txHash != "" {
		tx = u.recordTransaction(ctx, contract.ID, txHash, entities.TransactionTypeInvoke, input.Function)
	}

	if invokeErr != nil {
		metrics.RecordSubmission("invoke", submissionOutcome(invokeErr))
		return tx, invokeErr
	}
	metrics.RecordSubmission("invoke", metrics.OutcomeAccepted)
	metrics.RecordSettlement(time.Since(start))
	return tx, nil
}

// Call executes a read-only function and returns its decoded result
func (u *ContractUsecase) Call(ctx context.Context, id uuid.UUID, input *entities.InvokeContractInput) (starknet.Value, error) {
	handle, _, err := u.handleFor(ctx, id)
	if err != nil {
		return starknet.Value{}, err
	}
	args, err := decodeArgs(input.Args)
	if err != nil {
		return starknet.Value{}, err
	}

	result, err := handle.Call(ctx, input.Function, args, input.Signature)
	if err != nil {
		metrics.RecordSubmission("call", metrics.OutcomeError)
		return starknet.Value{}, err
	}
	metrics.RecordSubmission("call", metrics.OutcomeAccepted)
	return result, nil
}

// RefreshTransaction re-queries a stored transaction's network status and
// persists the observation. A failed query leaves the stored record as is.
func (u *ContractUsecase) RefreshTransaction(ctx context.Context, hash string) (*entities.ContractTransaction, error) {
	tx, err := u.txRepo.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	metrics.RecordPollCycle()
	status, err := u.poller.QueryStatus(ctx, hash)
	if err != nil {
		logger.Warn(ctx, "status refresh failed",
			zap.String("tx_hash", hash),
			zap.Error(err),
		)
		return tx, nil
	}

	blockHash := status.BlockHash
	if !status.Settled() {
		blockHash = ""
	}
	if err := u.txRepo.UpdateStatus(ctx, hash, string(status.TxStatus), blockHash); err != nil {
		return nil, err
	}
	return u.txRepo.GetByHash(ctx, hash)
}

// ListTransactions returns a contract's submitted transactions
func (u *ContractUsecase) ListTransactions(ctx context.Context, contractID uuid.UUID, pagination utils.PaginationParams) ([]*entities.ContractTransaction, int64, error) {
	if _, err := u.contractRepo.GetByID(ctx, contractID); err != nil {
		return nil, 0, err
	}
	return u.txRepo.GetByContract(ctx, contractID, pagination)
}

// factoryFor builds a ContractFactory over the registered contract's ABI.
func (u *ContractUsecase) factoryFor(ctx context.Context, contract *entities.Contract) (*starknet.Factory, error) {
	index, err := u.loadIndex(ctx, contract.AbiPath)
	if err != nil {
		return nil, err
	}
	return starknet.NewFactory(u.runner, u.poller, index, contract.AbiPath, contract.ArtifactPath), nil
}

// handleFor binds a handle to a deployed registered contract.
func (u *ContractUsecase) handleFor(ctx context.Context, id uuid.UUID) (*starknet.Contract, *entities.Contract, error) {
	contract, err := u.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !contract.Deployed() {
		return nil, nil, fmt.Errorf("contract %s: %w", contract.Name, domainerrors.ErrContractNotDeployed)
	}
	factory, err := u.factoryFor(ctx, contract)
	if err != nil {
		return nil, nil, err
	}
	handle, err := factory.ContractAt(contract.Address.String)
	if err != nil {
		return nil, nil, err
	}
	return handle, contract, nil
}

// loadIndex resolves an ABI index, consulting the cache first. A corrupt
// cache entry falls back to the file.
func (u *ContractUsecase) loadIndex(ctx context.Context, path string) (*starknet.Index, error) {
	if u.abiCache != nil {
		if raw, hit, err := u.abiCache.Get(ctx, path); err == nil && hit {
			if index, perr := starknet.ParseIndex(raw); perr == nil {
				return index, nil
			}
		}
	}

	raw, err := readAbiFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, domainerrors.ErrAbiNotFound)
	}
	index, err := starknet.ParseIndex(raw)
	if err != nil {
		return nil, err
	}
	if u.abiCache != nil {
		if cerr := u.abiCache.Put(ctx, path, raw); cerr != nil {
			logger.Warn(ctx, "abi cache write failed", zap.String("path", path), zap.Error(cerr))
		}
	}
	return index, nil
}

// recordTransaction persists a submission; persistence failures are logged
// rather than masking the submission result.
func (u *ContractUsecase) recordTransaction(ctx context.Context, contractID uuid.UUID, hash string, txType entities.TransactionType, function string) *entities.ContractTransaction {
	tx := &entities.ContractTransaction{
		ContractID: contractID,
		Hash:       hash,
		Type:       txType,
		Status:     string(starknet.StatusReceived),
	}
	if function != "" {
		tx.Function = null.StringFrom(function)
	}
	if err := u.txRepo.Create(ctx, tx); err != nil {
		logger.Error(ctx, "transaction record failed",
			zap.String("tx_hash", hash),
			zap.Error(err),
		)
		return nil
	}
	return tx
}

// decodeArgs parses a raw JSON argument document. Absent input is a valid
// "no arguments" value.
func decodeArgs(raw json.RawMessage) (starknet.Value, error) {
	if len(raw) == 0 {
		return starknet.Value{}, nil
	}
	var v starknet.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return starknet.Value{}, fmt.Errorf("%v: %w", err, domainerrors.ErrArgumentShape)
	}
	return v, nil
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAccepted
	case isRejection(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

func isRejection(err error) bool {
	for _, sentinel := range []error{
		domainerrors.ErrTransactionRejected,
		domainerrors.ErrDeploymentRejected,
		domainerrors.ErrInvocationFailed,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
