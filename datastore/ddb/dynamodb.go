/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/partitionstore/datastore"
	"github.com/suparena/partitionstore/errors"
	"github.com/suparena/partitionstore/schema"
	"github.com/suparena/partitionstore/storagemodels"
)

// maxBatchWrite is the BatchWriteItem request limit
const maxBatchWrite = 25

// Opener hands out DynamoDB handles sharing one client
type Opener[T any] struct {
	client API
	opts   storagemodels.ScanOptions
}

// NewOpener constructs an opener for T on client
func NewOpener[T any](client API, opts ...storagemodels.ScanOption) *Opener[T] {
	options := storagemodels.DefaultScanOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Opener[T]{client: client, opts: options}
}

// Open binds a handle to the artifact's table. The table is not checked;
// a missing table surfaces as StorageUnavailable on first use.
func (o *Opener[T]) Open(ctx context.Context, artifact *schema.Artifact) (datastore.DataStore[T], error) {
	if err := checkIndexMap(artifact); err != nil {
		return nil, err
	}
	return &DynamodbDataStore[T]{
		client:    o.client,
		artifact:  artifact,
		tableName: artifact.TableName(),
		opts:      o.opts,
	}, nil
}

// DynamodbDataStore implements datastore.DataStore[T] on one DynamoDB table.
type DynamodbDataStore[T any] struct {
	client    API
	artifact  *schema.Artifact
	tableName string
	opts      storagemodels.ScanOptions
}

var (
	_ datastore.DataStore[struct{}]   = (*DynamodbDataStore[struct{}])(nil)
	_ datastore.BatchWriter[struct{}] = (*DynamodbDataStore[struct{}])(nil)
)

func (d *DynamodbDataStore[T]) key(key []any) (map[string]types.AttributeValue, error) {
	k, err := d.artifact.NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	return keyAttributes(d.artifact, k)
}

// Get retrieves a single item by primary key values
func (d *DynamodbDataStore[T]) Get(ctx context.Context, key ...any) (*T, error) {
	keyMap, err := d.key(key)
	if err != nil {
		return nil, err
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.tableName,
		Key:       keyMap,
	})
	if err != nil {
		return nil, mapError(d.tableName, "GetItem", err)
	}
	if out.Item == nil {
		return nil, errors.NewNotFoundError(d.artifact.Entity(), schema.KeyString(key))
	}

	result := new(T)
	if err := decodeItem(d.artifact, out.Item, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Put stores entity, expanding index map macros into PK, SK and GSI attributes
func (d *DynamodbDataStore[T]) Put(ctx context.Context, entity T) error {
	item, err := encodeItem(d.artifact, entity)
	if err != nil {
		return err
	}
	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      item,
	})
	if err != nil {
		return mapError(d.tableName, "PutItem", err)
	}
	return nil
}

// Delete removes an item by primary key values. Deleting an absent item
// reports NotFound.
func (d *DynamodbDataStore[T]) Delete(ctx context.Context, key ...any) error {
	keyMap, err := d.key(key)
	if err != nil {
		return err
	}
	out, err := d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:    &d.tableName,
		Key:          keyMap,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return mapError(d.tableName, "DeleteItem", err)
	}
	if len(out.Attributes) == 0 {
		return errors.NewNotFoundError(d.artifact.Entity(), schema.KeyString(key))
	}
	return nil
}

// Query scans the table page by page. Filters are pushed down as a filter
// expression and re-checked in process; ordering and limits are applied in
// process since Scan has no order.
func (d *DynamodbDataStore[T]) Query(ctx context.Context, q *storagemodels.Query) ([]T, error) {
	plan, err := datastore.PlanQuery(d.artifact, q)
	if err != nil {
		return nil, err
	}
	fe, err := buildFilterExpression(d.artifact.Entity(), plan)
	if err != nil {
		return nil, err
	}

	input := &sdk.ScanInput{
		TableName:                 &d.tableName,
		FilterExpression:          aws.String(fe.Expression),
		ExpressionAttributeNames:  fe.Names,
		ExpressionAttributeValues: fe.Values,
		Limit:                     aws.Int32(d.opts.PageSize),
	}

	progress := storagemodels.ScanProgress{Table: d.tableName, StartTime: time.Now()}
	reportProgress := func() {
		if d.opts.ProgressHandler == nil {
			return
		}
		if elapsed := time.Since(progress.StartTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
		}
		d.opts.ProgressHandler(progress)
	}

	var rows []map[string]any
	for {
		out, err := withRetry(ctx, d.opts, func() { progress.Retries++ }, func() (*sdk.ScanOutput, error) {
			return d.client.Scan(ctx, input)
		})
		if err != nil {
			return nil, mapError(d.tableName, "Scan", err)
		}
		progress.PagesProcessed++

		for _, item := range out.Items {
			var entity T
			if err := decodeItem(d.artifact, item, &entity); err != nil {
				return nil, err
			}
			row, err := d.artifact.Row(entity)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
			progress.ItemsProcessed++
		}
		reportProgress()

		// Check for more pages
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	rows, err = plan.Apply(rows)
	if err != nil {
		return nil, err
	}
	results := make([]T, len(rows))
	for i, row := range rows {
		if err := d.artifact.Scan(row, &results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// WriteBatch writes puts and deletes with BatchWriteItem, 25 requests at a
// time, resubmitting unprocessed items. DynamoDB batches are not atomic
// across chunks.
func (d *DynamodbDataStore[T]) WriteBatch(ctx context.Context, puts []T, deletes [][]any) error {
	requests := make([]types.WriteRequest, 0, len(puts)+len(deletes))
	for _, entity := range puts {
		item, err := encodeItem(d.artifact, entity)
		if err != nil {
			return err
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	for _, key := range deletes {
		keyMap, err := d.key(key)
		if err != nil {
			return err
		}
		requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: keyMap}})
	}

	for start := 0; start < len(requests); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(requests))
		if err := d.writeChunk(ctx, requests[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (d *DynamodbDataStore[T]) writeChunk(ctx context.Context, chunk []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{d.tableName: chunk}
	for attempt := 0; ; attempt++ {
		out, err := withRetry(ctx, d.opts, nil, func() (*sdk.BatchWriteItemOutput, error) {
			return d.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{RequestItems: pending})
		})
		if err != nil {
			return mapError(d.tableName, "BatchWriteItem", err)
		}
		if len(out.UnprocessedItems[d.tableName]) == 0 {
			return nil
		}
		if attempt >= d.opts.MaxRetries {
			return mapError(d.tableName, "BatchWriteItem", &types.ProvisionedThroughputExceededException{
				Message: aws.String("unprocessed items remain after retries"),
			})
		}
		pending = out.UnprocessedItems
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * d.opts.RetryBackoff):
		}
	}
}

// Close is a no-op: the client is shared by every handle of the opener.
func (d *DynamodbDataStore[T]) Close() error {
	return nil
}
