package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"stark-ops.backend/internal/domain/entities"
	domainerrors "stark-ops.backend/internal/domain/errors"
	"stark-ops.backend/internal/interfaces/http/response"
	"stark-ops.backend/internal/usecases"
	"stark-ops.backend/pkg/utils"
)

// ContractHandler handles contract registry and operation endpoints
type ContractHandler struct {
	usecase *usecases.ContractUsecase
}

// NewContractHandler creates a new contract handler
func NewContractHandler(usecase *usecases.ContractUsecase) *ContractHandler {
	return &ContractHandler{usecase: usecase}
}

// RegisterContract registers a compiled contract
// POST /api/v1/contracts
func (h *ContractHandler) RegisterContract(c *gin.Context) {
	var input entities.RegisterContractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	contract, err := h.usecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"contract": contract})
}

// GetContract gets a registered contract by ID
// GET /api/v1/contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	contract, err := h.usecase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contract": contract})
}

// ListContracts lists registered contracts
// GET /api/v1/contracts
func (h *ContractHandler) ListContracts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	pagination := utils.GetPaginationParams(page, limit)

	contracts, totalCount, err := h.usecase.List(c.Request.Context(), pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"contracts":  contracts,
		"pagination": utils.CalculateMeta(totalCount, pagination.Page, pagination.Limit),
	})
}

// DeleteContract removes a contract from the registry
// DELETE /api/v1/contracts/:id
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	if err := h.usecase.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// DeployContract deploys a registered contract and waits for settlement
// POST /api/v1/contracts/:id/deploy
func (h *ContractHandler) DeployContract(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	var input entities.DeployContractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	contract, tx, err := h.usecase.Deploy(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"contract":    contract,
		"transaction": tx,
	})
}

// InvokeContract submits a state-changing function call
// POST /api/v1/contracts/:id/invoke
func (h *ContractHandler) InvokeContract(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	var input entities.InvokeContractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	tx, err := h.usecase.Invoke(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// CallContract executes a read-only function call
// POST /api/v1/contracts/:id/call
func (h *ContractHandler) CallContract(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	var input entities.InvokeContractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.usecase.Call(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ListTransactions lists a contract's submitted transactions
// GET /api/v1/contracts/:id/transactions
func (h *ContractHandler) ListTransactions(c *gin.Context) {
	id, ok := h.contractID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	pagination := utils.GetPaginationParams(page, limit)

	txs, totalCount, err := h.usecase.ListTransactions(c.Request.Context(), id, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"transactions": txs,
		"pagination":   utils.CalculateMeta(totalCount, pagination.Page, pagination.Limit),
	})
}

// GetTransaction returns a transaction with a freshly polled status
// GET /api/v1/transactions/:hash
func (h *ContractHandler) GetTransaction(c *gin.Context) {
	hash := c.Param("hash")

	tx, err := h.usecase.RefreshTransaction(c.Request.Context(), hash)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

func (h *ContractHandler) contractID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid contract ID"))
		return uuid.Nil, false
	}
	return id, true
}
