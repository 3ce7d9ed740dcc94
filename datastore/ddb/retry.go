/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	pserrors "github.com/suparena/partitionstore/errors"
	"github.com/suparena/partitionstore/storagemodels"
)

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var pte *types.ProvisionedThroughputExceededException
	var rle *types.RequestLimitExceeded
	var ise *types.InternalServerError
	if errors.As(err, &pte) || errors.As(err, &rle) || errors.As(err, &ise) {
		return true
	}

	// Check for AWS SDK retryable errors
	var retryable interface{ RetryableError() bool }
	if errors.As(err, &retryable) {
		return retryable.RetryableError()
	}
	return false
}

// mapError reports a missing table as StorageUnavailable and a failed
// condition as ConditionFailed; other errors are wrapped with the operation.
func mapError(table, op string, err error) error {
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return pserrors.NewStorageUnavailableError(table, err)
	}
	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		return fmt.Errorf("%s: %w: %w", op, pserrors.ErrConditionFailed, err)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

// withRetry runs call until it succeeds, fails with a non-retryable error or
// runs out of attempts
func withRetry[O any](ctx context.Context, opts storagemodels.ScanOptions, onRetry func(), call func() (O, error)) (O, error) {
	var zero O
	var lastErr error

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		// Check context before retry
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		out, err := call()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return zero, err
		}

		// Don't sleep after last attempt
		if attempt < opts.MaxRetries {
			if onRetry != nil {
				onRetry()
			}
			backoff := time.Duration(attempt+1) * opts.RetryBackoff
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return zero, fmt.Errorf("failed after %d retries: %w", opts.MaxRetries, lastErr)
}
