package starknet

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	domainerrors "stark-ops.backend/internal/domain/errors"
	"stark-ops.backend/pkg/logger"
)

var (
	contractAddressRe = regexp.MustCompile(`(?m)^Contract address: (.*)$`)
	transactionHashRe = regexp.MustCompile(`(?m)^Transaction hash: (.*)$`)
)

// Factory deploys contracts and binds handles to already-deployed ones.
type Factory struct {
	runner       Runner
	poller       *Poller
	index        *Index
	abiPath      string
	artifactPath string
}

// NewFactory creates a contract factory for one compiled contract.
func NewFactory(runner Runner, poller *Poller, index *Index, abiPath, artifactPath string) *Factory {
	return &Factory{
		runner:       runner,
		poller:       poller,
		index:        index,
		abiPath:      abiPath,
		artifactPath: artifactPath,
	}
}

// Deploy submits a deploy transaction and waits until it settles. The
// returned handle is only produced on success; a rejected deployment yields
// no handle and the transiently assigned address is discarded.
func (f *Factory) Deploy(ctx context.Context, constructorArgs Value, signature []string) (*Contract, string, error) {
	var params []Param
	if ctor, ok := f.index.Constructor(); ok {
		params = ctor.Inputs
	}
	inputs, err := EncodeArgs(f.index, params, constructorArgs)
	if err != nil {
		return nil, "", err
	}

	args := []string{"--contract", f.artifactPath}
	args = appendInputFlags(args, "--inputs", inputs)
	args = appendInputFlags(args, "--signature", signature)

	result, err := f.runner.Run(ctx, "deploy", args...)
	if err != nil {
		return nil, "", fmt.Errorf("%v: %w", err, domainerrors.ErrDeploymentRejected)
	}
	if result.StatusCode != 0 {
		return nil, "", fmt.Errorf("%s: %w", AdaptLog(result.Stderr), domainerrors.ErrDeploymentRejected)
	}

	address, txHash, err := parseDeploySubmission(result.Stdout)
	if err != nil {
		return nil, "", err
	}
	logger.Info(ctx, "deploy submitted",
		zap.String("address", address),
		zap.String("tx_hash", txHash),
	)

	if _, err := f.poller.Wait(ctx, txHash); err != nil {
		return nil, txHash, fmt.Errorf("deploy %s: %w", txHash, err)
	}
	return f.bind(address), txHash, nil
}

// ContractAt binds a handle to a caller-supplied address. No network
// validity check is performed; an address that does not exist on-chain is
// the caller's responsibility.
func (f *Factory) ContractAt(address string) (*Contract, error) {
	if strings.TrimSpace(address) == "" {
		return nil, domainerrors.ErrEmptyAddress
	}
	return f.bind(address), nil
}

func (f *Factory) bind(address string) *Contract {
	return &Contract{
		address: address,
		runner:  f.runner,
		poller:  f.poller,
		index:   f.index,
		abiPath: f.abiPath,
	}
}

// Contract is a handle on a deployed contract. The address is set exactly
// once, by Deploy or ContractAt.
type Contract struct {
	address string
	runner  Runner
	poller  *Poller
	index   *Index
	abiPath string
}

// Address returns the bound contract address, empty if not deployed.
func (c *Contract) Address() string { return c.address }

// Invoke submits a state-changing function call and waits until the
// transaction is at least PENDING in a settled block.
func (c *Contract) Invoke(ctx context.Context, function string, args Value, signature []string) (string, *StatusObject, error) {
	entry, inputs, err := c.prepare(function, args)
	if err != nil {
		return "", nil, err
	}

	result, err := c.submit(ctx, "invoke", entry.Name, inputs, signature)
	if err != nil {
		return "", nil, err
	}

	_, txHash, err := parseSubmission(result.Stdout)
	if err != nil {
		return "", nil, err
	}
	logger.Info(ctx, "invoke submitted",
		zap.String("address", c.address),
		zap.String("function", function),
		zap.String("tx_hash", txHash),
	)

	status, err := c.poller.Wait(ctx, txHash)
	if err != nil {
		return txHash, status, fmt.Errorf("invoke %s: %w", function, err)
	}
	return txHash, status, nil
}

// Call executes a read-only query and decodes the returned flat felts
// against the function's declared outputs.
func (c *Contract) Call(ctx context.Context, function string, args Value, signature []string) (Value, error) {
	entry, inputs, err := c.prepare(function, args)
	if err != nil {
		return Value{}, err
	}

	result, err := c.submit(ctx, "call", entry.Name, inputs, signature)
	if err != nil {
		return Value{}, err
	}

	return DecodeResult(c.index, entry.Outputs, strings.Fields(result.Stdout))
}

func (c *Contract) prepare(function string, args Value) (Entry, []string, error) {
	if c.address == "" {
		return Entry{}, nil, domainerrors.ErrContractNotDeployed
	}
	entry, ok := c.index.Function(function)
	if !ok {
		return Entry{}, nil, fmt.Errorf("%q: %w", function, domainerrors.ErrUnknownFunction)
	}
	if args.Kind() == KindList {
		return Entry{}, nil, domainerrors.ErrPositionalArguments
	}
	inputs, err := EncodeArgs(c.index, entry.Inputs, args)
	if err != nil {
		return Entry{}, nil, err
	}
	return entry, inputs, nil
}

func (c *Contract) submit(ctx context.Context, verb, function string, inputs, signature []string) (*Result, error) {
	args := []string{
		"--address", c.address,
		"--abi", c.abiPath,
		"--function", function,
	}
	args = appendInputFlags(args, "--inputs", inputs)
	args = appendInputFlags(args, "--signature", signature)

	result, err := c.runner.Run(ctx, verb, args...)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %v: %w", verb, function, err, domainerrors.ErrInvocationFailed)
	}
	if result.StatusCode != 0 {
		return nil, fmt.Errorf("%s %s: %s: %w", verb, function, AdaptLog(result.Stderr), domainerrors.ErrInvocationFailed)
	}
	return result, nil
}

// parseSubmission extracts the two line-anchored fields of a submission's
// textual result.
func parseSubmission(stdout string) (address, txHash string, err error) {
	addressMatch := contractAddressRe.FindStringSubmatch(stdout)
	hashMatch := transactionHashRe.FindStringSubmatch(stdout)
	if hashMatch == nil {
		return "", "", fmt.Errorf("no transaction hash line in submission result: %w", domainerrors.ErrUnparsableSubmission)
	}
	if addressMatch != nil {
		address = strings.TrimSpace(addressMatch[1])
	}
	return address, strings.TrimSpace(hashMatch[1]), nil
}

// parseDeploySubmission requires both the address and the hash line.
func parseDeploySubmission(stdout string) (string, string, error) {
	address, txHash, err := parseSubmission(stdout)
	if err != nil {
		return "", "", err
	}
	if address == "" {
		return "", "", fmt.Errorf("no contract address line in submission result: %w", domainerrors.ErrUnparsableSubmission)
	}
	return address, txHash, nil
}

func appendInputFlags(args []string, flag string, values []string) []string {
	if len(values) == 0 {
		return args
	}
	args = append(args, flag)
	return append(args, values...)
}
