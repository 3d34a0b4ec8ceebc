package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Contract is a registered StarkNet contract. Address stays null until a
// deployment settles; a registered-but-undeployed contract can only be
// deployed, not invoked.
type Contract struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Address      null.String `json:"address"`
	AbiPath      string      `json:"abiPath"`
	ArtifactPath string      `json:"artifactPath"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	DeletedAt    null.Time   `json:"-"`
}

// Deployed reports whether the contract has a bound on-chain address.
func (c *Contract) Deployed() bool {
	return c.Address.Valid && c.Address.String != ""
}

// RegisterContractInput registers a compiled contract with the service.
type RegisterContractInput struct {
	Name         string `json:"name" binding:"required,min=1,max=100"`
	AbiPath      string `json:"abiPath" binding:"required"`
	ArtifactPath string `json:"artifactPath" binding:"required"`
	// Address may be set for contracts deployed outside this service.
	Address string `json:"address,omitempty"`
}

// DeployContractInput carries the constructor arguments for a deployment.
type DeployContractInput struct {
	ConstructorArgs json.RawMessage `json:"constructorArgs,omitempty"`
	Signature       []string        `json:"signature,omitempty"`
}

// InvokeContractInput carries a function invocation or read-only call.
type InvokeContractInput struct {
	Function  string          `json:"function" binding:"required"`
	Args      json.RawMessage `json:"args,omitempty"`
	Signature []string        `json:"signature,omitempty"`
}
