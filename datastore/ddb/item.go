/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/partitionstore/schema"
)

// encodeItem turns entity into a DynamoDB item: one attribute per column,
// the expanded index map attributes (PK, SK, GSI keys) and EntityType.
func encodeItem(a *schema.Artifact, entity any) (map[string]types.AttributeValue, error) {
	row, err := a.Row(entity)
	if err != nil {
		return nil, err
	}
	item, err := attributevalue.MarshalMap(row)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}

	if indexMap := a.IndexMap(); len(indexMap) > 0 {
		expanded, err := expandMacros(indexMap, fieldValues(a, row))
		if err != nil {
			return nil, err
		}
		// Insert the expanded fields as PK, SK, etc.
		for k, v := range expanded {
			item[k] = &types.AttributeValueMemberS{Value: v}
		}
	}

	item[EntityTypeAttribute] = &types.AttributeValueMemberS{Value: a.Entity()}
	return item, nil
}

// decodeItem fills dst from an item. Attributes that are not columns of the
// artifact (index keys, EntityType) are ignored.
func decodeItem(a *schema.Artifact, item map[string]types.AttributeValue, dst any) error {
	var raw map[string]any
	err := attributevalue.UnmarshalMapWithOptions(item, &raw, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return fmt.Errorf("failed to unmarshal item: %w", err)
	}
	for k, v := range raw {
		if n, ok := v.(attributevalue.Number); ok {
			raw[k] = string(n)
		}
	}
	return a.Scan(raw, dst)
}
