package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TransactionType distinguishes deploy submissions from function invocations.
type TransactionType string

const (
	TransactionTypeDeploy TransactionType = "DEPLOY"
	TransactionTypeInvoke TransactionType = "INVOKE"
)

// ContractTransaction is one submitted transaction and its last observed
// network status. BlockHash stays null until the transaction settles into a
// real block.
type ContractTransaction struct {
	ID         uuid.UUID       `json:"id"`
	ContractID uuid.UUID       `json:"contractId"`
	Hash       string          `json:"hash"`
	Type       TransactionType `json:"type"`
	Function   null.String     `json:"function,omitempty"`
	Status     string          `json:"status"`
	BlockHash  null.String     `json:"blockHash,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}
