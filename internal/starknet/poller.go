package starknet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	domainerrors "stark-ops.backend/internal/domain/errors"
	"stark-ops.backend/pkg/logger"
)

// TxStatus is the closed set of network transaction statuses.
type TxStatus string

const (
	StatusNotReceived     TxStatus = "NOT_RECEIVED"
	StatusReceived        TxStatus = "RECEIVED"
	StatusPending         TxStatus = "PENDING"
	StatusRejected        TxStatus = "REJECTED"
	StatusAcceptedOnChain TxStatus = "ACCEPTED_ONCHAIN"
)

// pendingBlockSentinel is the block_hash value of a not-yet-settled block.
const pendingBlockSentinel = "pending"

// Settled reports whether the status is terminal-accepted: at least PENDING
// with a real block reference.
func (s *StatusObject) Settled() bool {
	if s.TxStatus != StatusPending && s.TxStatus != StatusAcceptedOnChain {
		return false
	}
	return s.BlockHash != "" && s.BlockHash != pendingBlockSentinel
}

// ErrAttemptsExhausted is returned when an opt-in attempt bound is reached
// before the transaction settles.
var ErrAttemptsExhausted = errors.New("status polling attempts exhausted")

// DefaultPollInterval is the fixed delay between status poll cycles.
const DefaultPollInterval = 5 * time.Second

// Poller repeatedly queries a transaction's status until it is accepted or
// rejected. Poll cycles are strictly sequential; cancellation is driven by
// the caller's context, and MaxAttempts (0 = unbounded) gives an opt-in
// bound on the wait.
type Poller struct {
	runner      Runner
	interval    time.Duration
	maxAttempts int
}

// NewPoller creates a poller over the given runner.
func NewPoller(runner Runner, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{runner: runner, interval: interval, maxAttempts: maxAttempts}
}

// QueryStatus issues a single tx_status query and parses its result.
func (p *Poller) QueryStatus(ctx context.Context, txHash string) (*StatusObject, error) {
	result, err := p.runner.Run(ctx, "tx_status", "--hash", txHash)
	if err != nil {
		return nil, fmt.Errorf("status query for %s: %v: %w", txHash, err, domainerrors.ErrUnparsableStatus)
	}
	if result.StatusCode != 0 {
		return nil, fmt.Errorf("status query for %s failed: %s: %w",
			txHash, AdaptLog(result.Stderr), domainerrors.ErrUnparsableStatus)
	}
	status, err := ParseStatus(result.Stdout)
	if err != nil {
		return nil, fmt.Errorf("status query for %s: %v: %w", txHash, err, domainerrors.ErrUnparsableStatus)
	}
	return status, nil
}

// Wait polls until the transaction is accepted or rejected. Every status is
// fetched fresh; a still-pending classification is the only case that is
// retried. It returns the final observed status alongside any error.
func (p *Poller) Wait(ctx context.Context, txHash string) (*StatusObject, error) {
	for attempt := 1; ; attempt++ {
		status, err := p.QueryStatus(ctx, txHash)
		if err != nil {
			return nil, err
		}

		if status.Settled() {
			logger.Debug(ctx, "transaction settled",
				zap.String("tx_hash", txHash),
				zap.String("status", string(status.TxStatus)),
				zap.String("block_hash", status.BlockHash),
				zap.Int("attempts", attempt),
			)
			return status, nil
		}
		if status.TxStatus == StatusRejected {
			return status, fmt.Errorf("transaction %s: %w", txHash, domainerrors.ErrTransactionRejected)
		}

		// NOT_RECEIVED, RECEIVED, or PENDING without a settled block.
		if p.maxAttempts > 0 && attempt >= p.maxAttempts {
			return status, fmt.Errorf("transaction %s after %d attempt(s): %w", txHash, attempt, ErrAttemptsExhausted)
		}
		logger.Debug(ctx, "transaction still pending",
			zap.String("tx_hash", txHash),
			zap.String("status", string(status.TxStatus)),
			zap.Int("attempt", attempt),
		)

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-time.After(p.interval):
		}
	}
}
