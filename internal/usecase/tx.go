package usecase

import "context"

// inTx runs fn inside a database transaction, committing on success and
// rolling back on any error.
func inTx(ctx context.Context, txManager TxManager, fn func(tx Tx) error) error {
	tx, err := txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func retrierOrDefault(r Retrier) Retrier {
	if r == nil {
		return NoRetry{}
	}
	return r
}

func metricsOrDefault(m Metrics) Metrics {
	if m == nil {
		return NopMetrics{}
	}
	return m
}
