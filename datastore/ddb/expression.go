/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/partitionstore/datastore"
	"github.com/suparena/partitionstore/storagemodels"
)

// filterExpression is a Scan filter with its placeholder maps
type filterExpression struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

// buildFilterExpression renders the plan's conditions plus an EntityType
// match as a DynamoDB filter expression. Conditions on time and binary
// columns are left to in-process filtering, as their string encodings do not
// order like the values.
func buildFilterExpression(entity string, plan *datastore.Plan) (*filterExpression, error) {
	fe := &filterExpression{
		Names:  map[string]string{"#et": EntityTypeAttribute},
		Values: map[string]types.AttributeValue{":et": &types.AttributeValueMemberS{Value: entity}},
	}
	clauses := []string{"#et = :et"}

	for i, c := range plan.Conditions {
		switch c.Value.(type) {
		case time.Time, []byte, nil:
			continue
		}
		name := fmt.Sprintf("#c%d", i)
		value := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(c.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filter value for %s: %w", c.Column, err)
		}
		fe.Names[name] = c.Column
		fe.Values[value] = av

		switch c.Op {
		case storagemodels.OpBeginsWith:
			clauses = append(clauses, fmt.Sprintf("begins_with(%s, %s)", name, value))
		case storagemodels.OpEq, storagemodels.OpNe, storagemodels.OpLt, storagemodels.OpLe, storagemodels.OpGt, storagemodels.OpGe:
			clauses = append(clauses, fmt.Sprintf("%s %s %s", name, c.Op, value))
		default:
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
	}

	fe.Expression = strings.Join(clauses, " AND ")
	return fe, nil
}
