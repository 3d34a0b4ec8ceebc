package handlers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"stark-ops.backend/internal/domain/entities"
	domainerrors "stark-ops.backend/internal/domain/errors"
	"stark-ops.backend/internal/starknet"
	"stark-ops.backend/internal/usecases"
	"stark-ops.backend/pkg/utils"
)

const testAbiJSON = `[
	{"type": "constructor", "name": "constructor",
	 "inputs": [{"name": "initial_balance", "type": "felt"}], "outputs": []},
	{"type": "function", "name": "increase_balance",
	 "inputs": [{"name": "amount", "type": "felt"}], "outputs": []},
	{"type": "function", "name": "double_sum",
	 "inputs": [{"name": "x", "type": "felt"}, {"name": "y", "type": "felt"}],
	 "outputs": [{"name": "res", "type": "felt"}]}
]`

const deployStdout = `Deploy transaction was sent.
Contract address: 0x05a4d278dceae5ff055796f1f59a646f72628730b7d72acb5483062cb1ce82dd
Transaction hash: 0x602e4b4e9e046d2692af3702fe013fef996df040af335223e7526c9c4fe6fb
`

type fakeRunner struct {
	results map[string][]*starknet.Result
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: make(map[string][]*starknet.Result)}
}

func (f *fakeRunner) queue(verb string, result *starknet.Result) {
	f.results[verb] = append(f.results[verb], result)
}

func (f *fakeRunner) queueStatus(status, blockHash string) {
	f.queue("tx_status", &starknet.Result{
		Stdout: fmt.Sprintf(`{"block_hash": %q, "tx_status": %q}`, blockHash, status),
	})
}

func (f *fakeRunner) Run(_ context.Context, verb string, _ ...string) (*starknet.Result, error) {
	queued := f.results[verb]
	if len(queued) == 0 {
		return nil, fmt.Errorf("no queued result for verb %q", verb)
	}
	result := queued[0]
	f.results[verb] = queued[1:]
	return result, nil
}

type contractRepoStub struct {
	contracts map[uuid.UUID]*entities.Contract
}

func newContractRepoStub() *contractRepoStub {
	return &contractRepoStub{contracts: make(map[uuid.UUID]*entities.Contract)}
}

func (s *contractRepoStub) Create(_ context.Context, contract *entities.Contract) error {
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	clone := *contract
	s.contracts[contract.ID] = &clone
	return nil
}

func (s *contractRepoStub) GetByID(_ context.Context, id uuid.UUID) (*entities.Contract, error) {
	contract, ok := s.contracts[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *contract
	return &clone, nil
}

func (s *contractRepoStub) GetByName(_ context.Context, name string) (*entities.Contract, error) {
	for _, contract := range s.contracts {
		if contract.Name == name {
			clone := *contract
			return &clone, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (s *contractRepoStub) GetByAddress(_ context.Context, address string) (*entities.Contract, error) {
	for _, contract := range s.contracts {
		if contract.Address.Valid && contract.Address.String == address {
			clone := *contract
			return &clone, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (s *contractRepoStub) GetAll(_ context.Context, _ utils.PaginationParams) ([]*entities.Contract, int64, error) {
	var out []*entities.Contract
	for _, contract := range s.contracts {
		clone := *contract
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (s *contractRepoStub) SetAddress(_ context.Context, id uuid.UUID, address string) error {
	contract, ok := s.contracts[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	contract.Address = null.StringFrom(address)
	return nil
}

func (s *contractRepoStub) Update(_ context.Context, contract *entities.Contract) error {
	if _, ok := s.contracts[contract.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	clone := *contract
	s.contracts[contract.ID] = &clone
	return nil
}

func (s *contractRepoStub) SoftDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.contracts[id]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(s.contracts, id)
	return nil
}

type transactionRepoStub struct {
	txs map[string]*entities.ContractTransaction
}

func newTransactionRepoStub() *transactionRepoStub {
	return &transactionRepoStub{txs: make(map[string]*entities.ContractTransaction)}
}

func (s *transactionRepoStub) Create(_ context.Context, tx *entities.ContractTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	clone := *tx
	s.txs[tx.Hash] = &clone
	return nil
}

func (s *transactionRepoStub) GetByHash(_ context.Context, hash string) (*entities.ContractTransaction, error) {
	tx, ok := s.txs[hash]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *tx
	return &clone, nil
}

func (s *transactionRepoStub) GetByContract(_ context.Context, contractID uuid.UUID, _ utils.PaginationParams) ([]*entities.ContractTransaction, int64, error) {
	var out []*entities.ContractTransaction
	for _, tx := range s.txs {
		if tx.ContractID == contractID {
			clone := *tx
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (s *transactionRepoStub) GetUnsettled(_ context.Context, limit int) ([]*entities.ContractTransaction, error) {
	var out []*entities.ContractTransaction
	for _, tx := range s.txs {
		if tx.Status == "ACCEPTED_ONCHAIN" || tx.Status == "REJECTED" {
			continue
		}
		clone := *tx
		out = append(out, &clone)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *transactionRepoStub) UpdateStatus(_ context.Context, hash, status, blockHash string) error {
	tx, ok := s.txs[hash]
	if !ok {
		return domainerrors.ErrNotFound
	}
	tx.Status = status
	if blockHash != "" {
		tx.BlockHash = null.StringFrom(blockHash)
	}
	return nil
}

type handlerFixture struct {
	router       *gin.Engine
	runner       *fakeRunner
	contractRepo *contractRepoStub
	txRepo       *transactionRepoStub
	abiPath      string
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	abiPath := filepath.Join(t.TempDir(), "contract_abi.json")
	require.NoError(t, os.WriteFile(abiPath, []byte(testAbiJSON), 0o644))

	runner := newFakeRunner()
	contractRepo := newContractRepoStub()
	txRepo := newTransactionRepoStub()
	usecase := usecases.NewContractUsecase(contractRepo, txRepo, runner,
		starknet.NewPoller(runner, time.Millisecond, 0), nil)
	handler := NewContractHandler(usecase)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/contracts", handler.RegisterContract)
	api.GET("/contracts", handler.ListContracts)
	api.GET("/contracts/:id", handler.GetContract)
	api.DELETE("/contracts/:id", handler.DeleteContract)
	api.POST("/contracts/:id/deploy", handler.DeployContract)
	api.POST("/contracts/:id/invoke", handler.InvokeContract)
	api.POST("/contracts/:id/call", handler.CallContract)
	api.GET("/contracts/:id/transactions", handler.ListTransactions)
	api.GET("/transactions/:hash", handler.GetTransaction)

	return &handlerFixture{
		router:       router,
		runner:       runner,
		contractRepo: contractRepo,
		txRepo:       txRepo,
		abiPath:      abiPath,
	}
}

func (f *handlerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) seedContract(t *testing.T, address string) *entities.Contract {
	t.Helper()
	contract := &entities.Contract{
		Name:         "balance",
		AbiPath:      f.abiPath,
		ArtifactPath: filepath.Join(filepath.Dir(f.abiPath), "contract.json"),
	}
	if address != "" {
		contract.Address = null.StringFrom(address)
	}
	require.NoError(t, f.contractRepo.Create(context.Background(), contract))
	return contract
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "unexpected status, body: %s", rec.Body.String())
}
