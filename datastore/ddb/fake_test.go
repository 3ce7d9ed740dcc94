/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI is an in-memory stand-in for the DynamoDB client. It ignores
// filter expressions, which the store re-checks in process.
type fakeAPI struct {
	mu              sync.Mutex
	keyAttrs        []string
	tables          map[string]map[string]map[string]types.AttributeValue
	scanErrs        []error
	unprocessedOnce bool
	scans           int
	batches         int
	lastFilter      string
}

func newFakeAPI(keyAttrs ...string) *fakeAPI {
	return &fakeAPI{
		keyAttrs: keyAttrs,
		tables:   make(map[string]map[string]map[string]types.AttributeValue),
	}
}

func (f *fakeAPI) createTable(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[name] = make(map[string]map[string]types.AttributeValue)
}

func (f *fakeAPI) item(table, key string) map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tables[table][key]
}

func notFound() error {
	return &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")}
}

func (f *fakeAPI) itemKey(item map[string]types.AttributeValue) string {
	parts := make([]string, len(f.keyAttrs))
	for i, attr := range f.keyAttrs {
		switch v := item[attr].(type) {
		case *types.AttributeValueMemberS:
			parts[i] = v.Value
		case *types.AttributeValueMemberN:
			parts[i] = v.Value
		}
	}
	return strings.Join(parts, "|")
}

func (f *fakeAPI) GetItem(ctx context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[*in.TableName]
	if !ok {
		return nil, notFound()
	}
	return &sdk.GetItemOutput{Item: t[f.itemKey(in.Key)]}, nil
}

func (f *fakeAPI) PutItem(ctx context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[*in.TableName]
	if !ok {
		return nil, notFound()
	}
	t[f.itemKey(in.Item)] = in.Item
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeAPI) DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[*in.TableName]
	if !ok {
		return nil, notFound()
	}
	k := f.itemKey(in.Key)
	old := t[k]
	delete(t, k)
	return &sdk.DeleteItemOutput{Attributes: old}, nil
}

func (f *fakeAPI) Scan(ctx context.Context, in *sdk.ScanInput, _ ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if len(f.scanErrs) > 0 {
		err := f.scanErrs[0]
		f.scanErrs = f.scanErrs[1:]
		return nil, err
	}
	t, ok := f.tables[*in.TableName]
	if !ok {
		return nil, notFound()
	}
	if in.FilterExpression != nil {
		f.lastFilter = *in.FilterExpression
	}

	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	start := 0
	if in.ExclusiveStartKey != nil {
		after := f.itemKey(in.ExclusiveStartKey)
		start = sort.SearchStrings(keys, after) + 1
	}
	end := len(keys)
	if in.Limit != nil && start+int(*in.Limit) < end {
		end = start + int(*in.Limit)
	}

	out := &sdk.ScanOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, t[k])
	}
	if end < len(keys) {
		last := t[keys[end-1]]
		out.LastEvaluatedKey = make(map[string]types.AttributeValue, len(f.keyAttrs))
		for _, attr := range f.keyAttrs {
			out.LastEvaluatedKey[attr] = last[attr]
		}
	}
	return out, nil
}

func (f *fakeAPI) BatchWriteItem(ctx context.Context, in *sdk.BatchWriteItemInput, _ ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	out := &sdk.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{}}
	for table, requests := range in.RequestItems {
		t, ok := f.tables[table]
		if !ok {
			return nil, notFound()
		}
		if f.unprocessedOnce && len(requests) > 1 {
			f.unprocessedOnce = false
			out.UnprocessedItems[table] = requests[len(requests)-1:]
			requests = requests[:len(requests)-1]
		}
		for _, r := range requests {
			switch {
			case r.PutRequest != nil:
				t[f.itemKey(r.PutRequest.Item)] = r.PutRequest.Item
			case r.DeleteRequest != nil:
				delete(t, f.itemKey(r.DeleteRequest.Key))
			}
		}
	}
	return out, nil
}
