package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"stark-ops.backend/internal/starknet"
)

func TestRegisterContract(t *testing.T) {
	f := newHandlerFixture(t)

	body := fmt.Sprintf(`{"name": "balance", "abiPath": %q, "artifactPath": "contract.json"}`, f.abiPath)
	rec := f.do("POST", "/api/v1/contracts", body)
	requireStatus(t, rec, http.StatusCreated)

	var resp struct {
		Contract struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"contract"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "balance", resp.Contract.Name)
	require.NotEmpty(t, resp.Contract.ID)

	rec = f.do("POST", "/api/v1/contracts", body)
	requireStatus(t, rec, http.StatusConflict)
}

func TestRegisterContract_InvalidBody(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do("POST", "/api/v1/contracts", `{"name": "balance"}`)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestRegisterContract_MissingAbi(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do("POST", "/api/v1/contracts",
		`{"name": "balance", "abiPath": "/nope/abi.json", "artifactPath": "contract.json"}`)
	requireStatus(t, rec, http.StatusUnprocessableEntity)
}

func TestGetContract(t *testing.T) {
	f := newHandlerFixture(t)
	contract := f.seedContract(t, "")

	rec := f.do("GET", "/api/v1/contracts/"+contract.ID.String(), "")
	requireStatus(t, rec, http.StatusOK)

	rec = f.do("GET", "/api/v1/contracts/not-a-uuid", "")
	requireStatus(t, rec, http.StatusBadRequest)

	rec = f.do("GET", "/api/v1/contracts/00000000-0000-0000-0000-000000000001", "")
	requireStatus(t, rec, http.StatusNotFound)
}

func TestListContracts(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedContract(t, "")

	rec := f.do("GET", "/api/v1/contracts?page=1&limit=10", "")
	requireStatus(t, rec, http.StatusOK)
	require.Contains(t, rec.Body.String(), `"totalCount":1`)
}

func TestDeployContract(t *testing.T) {
	f := newHandlerFixture(t)
	contract := f.seedContract(t, "")

	f.runner.queue("deploy", &starknet.Result{Stdout: deployStdout})
	f.runner.queueStatus("ACCEPTED_ONCHAIN", "0x1")

	rec := f.do("POST", "/api/v1/contracts/"+contract.ID.String()+"/deploy",
		`{"constructorArgs": {"initial_balance": 100}}`)
	requireStatus(t, rec, http.StatusCreated)
	require.Contains(t, rec.Body.String(), "0x05a4d278dceae5ff055796f1f59a646f72628730b7d72acb5483062cb1ce82dd")
}

func TestDeployContract_Rejected(t *testing.T) {
	f := newHandlerFixture(t)
	contract := f.seedContract(t, "")

	f.runner.queue("deploy", &starknet.Result{StatusCode: 1, Stderr: "Error: BadRequest: Unknown starknet error."})

	rec := f.do("POST", "/api/v1/contracts/"+contract.ID.String()+"/deploy",
		`{"constructorArgs": {"initial_balance": 100}}`)
	requireStatus(t, rec, http.StatusBadGateway)
	require.Contains(t, rec.Body.String(), "SUBMISSION_ERROR")
}

func TestInvokeContract(t *testing.T) {
	f := newHandlerFixture(t)
	contract := f.seedContract(t, "0x1234")

	f.runner.queue("invoke", &starknet.Result{Stdout: deployStdout})
	f.runner.queueStatus("PENDING", "0x7")

	rec := f.do("POST", "/api/v1/contracts/"+contract.ID.String()+"/invoke",
		`{"function": "increase_balance", "args": {"amount": 5}}`)
	requireStatus(t, rec, http.StatusOK)
}

func TestInvokeContract_UnknownFunction(t *testing.T) {
	f := newHandlerFixture(t)
	contract := f.seedContract(t, "0x1234")

	rec := f.do("POST", "/api/v1/contracts/"+contract.ID.String()+"/invoke",
		`{"function": "no_such_function"}`)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestInvokeContract_PositionalArgs(t *testing.T) {
	f := newHandlerFixture(t)
	contract := f.seedContract(t, "0x1234")

	rec := f.do("POST", "/api/v1/contracts/"+contract.ID.String()+"/invoke",
		`{"function": "increase_balance", "args": [5]}`)
	requireStatus(t, rec, http.StatusBadRequest)
	require.Contains(t, rec.Body.String(), "ARGUMENT_ERROR")
}

func TestInvokeContract_NotDeployed(t *testing.T) {
	f := newHandlerFixture(t)
	contract := f.seedContract(t, "")

	rec := f.do("POST", "/api/v1/contracts/"+contract.ID.String()+"/invoke",
		`{"function": "increase_balance", "args": {"amount": 5}}`)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestCallContract(t *testing.T) {
	f := newHandlerFixture(t)
	contract := f.seedContract(t, "0x1234")

	f.runner.queue("call", &starknet.Result{Stdout: "10\n"})

	rec := f.do("POST", "/api/v1/contracts/"+contract.ID.String()+"/call",
		`{"function": "double_sum", "args": {"x": 2, "y": 3}}`)
	requireStatus(t, rec, http.StatusOK)
	require.Contains(t, rec.Body.String(), `"res":10`)
}

func TestListTransactionsEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	contract := f.seedContract(t, "0x1234")

	f.runner.queue("invoke", &starknet.Result{Stdout: deployStdout})
	f.runner.queueStatus("ACCEPTED_ONCHAIN", "0x1")
	rec := f.do("POST", "/api/v1/contracts/"+contract.ID.String()+"/invoke",
		`{"function": "increase_balance", "args": {"amount": 5}}`)
	requireStatus(t, rec, http.StatusOK)

	rec = f.do("GET", "/api/v1/contracts/"+contract.ID.String()+"/transactions", "")
	requireStatus(t, rec, http.StatusOK)
	require.Contains(t, rec.Body.String(), `"totalCount":1`)
}

func TestGetTransaction(t *testing.T) {
	f := newHandlerFixture(t)
	contract := f.seedContract(t, "0x1234")

	f.runner.queue("invoke", &starknet.Result{Stdout: deployStdout})
	f.runner.queueStatus("ACCEPTED_ONCHAIN", "0x1")
	rec := f.do("POST", "/api/v1/contracts/"+contract.ID.String()+"/invoke",
		`{"function": "increase_balance", "args": {"amount": 5}}`)
	requireStatus(t, rec, http.StatusOK)

	hash := "0x602e4b4e9e046d2692af3702fe013fef996df040af335223e7526c9c4fe6fb"
	f.runner.queueStatus("ACCEPTED_ONCHAIN", "0x1")
	rec = f.do("GET", "/api/v1/transactions/"+hash, "")
	requireStatus(t, rec, http.StatusOK)
	require.Contains(t, rec.Body.String(), "ACCEPTED_ONCHAIN")

	rec = f.do("GET", "/api/v1/transactions/0xmissing", "")
	requireStatus(t, rec, http.StatusNotFound)
}

func TestDeleteContract(t *testing.T) {
	f := newHandlerFixture(t)
	contract := f.seedContract(t, "")

	rec := f.do("DELETE", "/api/v1/contracts/"+contract.ID.String(), "")
	requireStatus(t, rec, http.StatusOK)

	rec = f.do("GET", "/api/v1/contracts/"+contract.ID.String(), "")
	requireStatus(t, rec, http.StatusNotFound)
}
