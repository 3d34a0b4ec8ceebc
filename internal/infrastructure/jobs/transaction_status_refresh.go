package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"stark-ops.backend/internal/domain/repositories"
	"stark-ops.backend/internal/infrastructure/metrics"
	"stark-ops.backend/internal/starknet"
	"stark-ops.backend/pkg/logger"
)

// TransactionStatusRefreshJob periodically re-queries the network status of
// transactions that have not reached a terminal state yet.
type TransactionStatusRefreshJob struct {
	txRepo    repositories.TransactionRepository
	poller    *starknet.Poller
	interval  time.Duration
	batchSize int
	stop      chan struct{}
}

func NewTransactionStatusRefreshJob(txRepo repositories.TransactionRepository, poller *starknet.Poller, interval time.Duration) *TransactionStatusRefreshJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &TransactionStatusRefreshJob{
		txRepo:    txRepo,
		poller:    poller,
		interval:  interval,
		batchSize: 100,
		stop:      make(chan struct{}),
	}
}

func (j *TransactionStatusRefreshJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting transaction status refresh job",
		zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "transaction status refresh job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "transaction status refresh job stopped")
			return
		case <-ticker.C:
			j.refreshPending(ctx)
		}
	}
}

func (j *TransactionStatusRefreshJob) Stop() {
	close(j.stop)
}

func (j *TransactionStatusRefreshJob) refreshPending(ctx context.Context) {
	pending, err := j.txRepo.GetUnsettled(ctx, j.batchSize)
	if err != nil {
		logger.Error(ctx, "fetching unsettled transactions failed", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	for _, tx := range pending {
		metrics.RecordPollCycle()
		status, err := j.poller.QueryStatus(ctx, tx.Hash)
		if err != nil {
			logger.Warn(ctx, "status refresh failed",
				zap.String("tx_hash", tx.Hash),
				zap.Error(err),
			)
			continue
		}
		// A transaction can keep its status while gaining a settled block
		// hash (PENDING in block "pending", then PENDING in a real block),
		// so an unchanged status alone is not enough to skip the write.
		unchanged := string(status.TxStatus) == tx.Status
		if unchanged && (!status.Settled() || tx.BlockHash.String == status.BlockHash) {
			continue
		}

		blockHash := status.BlockHash
		if !status.Settled() {
			blockHash = ""
		}
		if err := j.txRepo.UpdateStatus(ctx, tx.Hash, string(status.TxStatus), blockHash); err != nil {
			logger.Error(ctx, "status update failed",
				zap.String("tx_hash", tx.Hash),
				zap.Error(err),
			)
			continue
		}
		if status.Settled() {
			metrics.RecordSettlement(time.Since(tx.CreatedAt))
		}
		logger.Info(ctx, "transaction status refreshed",
			zap.String("tx_hash", tx.Hash),
			zap.String("status", string(status.TxStatus)),
		)
	}
}
