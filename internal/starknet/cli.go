package starknet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result is the outcome of one external command invocation. Stdout and
// stderr are opaque text as far as the runner is concerned; callers parse
// what they need.
type Result struct {
	StatusCode int
	Stdout     string
	Stderr     string
}

// Runner executes a network verb (deploy, invoke, call, tx_status) with
// string-valued flags against the configured endpoints.
type Runner interface {
	Run(ctx context.Context, verb string, args ...string) (*Result, error)
}

var runCommand = func(ctx context.Context, binary string, args []string) (*Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run %s: %w", binary, err)
		}
		result.StatusCode = exitErr.ExitCode()
	}
	return result, nil
}

// CLI runs the external starknet client binary. Both gateway URLs are
// appended to every command.
type CLI struct {
	binary    string
	endpoints Endpoints
}

// NewCLI creates a runner for the given client binary and endpoints.
func NewCLI(binary string, endpoints Endpoints) *CLI {
	if binary == "" {
		binary = "starknet"
	}
	return &CLI{binary: binary, endpoints: endpoints}
}

// Run executes one verb with the given flags.
func (c *CLI) Run(ctx context.Context, verb string, args ...string) (*Result, error) {
	full := append([]string{verb}, args...)
	full = append(full,
		"--gateway_url", c.endpoints.Gateway,
		"--feeder_gateway_url", c.endpoints.FeederGateway,
	)
	return runCommand(ctx, c.binary, full)
}

// StatusObject is the parsed result of a tx_status query. BlockHash may be
// the sentinel "pending" while the transaction awaits a settled block.
type StatusObject struct {
	BlockHash string   `json:"block_hash"`
	TxStatus  TxStatus `json:"tx_status"`
}

// ParseStatus parses the JSON document printed by a tx_status query.
func ParseStatus(stdout string) (*StatusObject, error) {
	var status StatusObject
	decoder := json.NewDecoder(strings.NewReader(stdout))
	if err := decoder.Decode(&status); err != nil {
		return nil, err
	}
	if status.TxStatus == "" {
		return nil, fmt.Errorf("status document has no tx_status field")
	}
	return &status, nil
}
