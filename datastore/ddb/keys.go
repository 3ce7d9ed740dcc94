/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/partitionstore/errors"
	"github.com/suparena/partitionstore/schema"
)

// EntityTypeAttribute is written on every item so tables shared by several
// entity types can be read back per type.
const EntityTypeAttribute = "EntityType"

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandMacros replaces {Field} macros in every template with the field's
// value. Unresolved macros are an error.
func expandMacros(indexMap map[string]string, values map[string]string) (map[string]string, error) {
	res := make(map[string]string, len(indexMap))
	for attr, template := range indexMap {
		var missing []string
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			// macro is something like "{ID}"
			field := strings.Trim(macro, "{}")
			val, ok := values[field]
			if !ok {
				missing = append(missing, field)
				return ""
			}
			return val
		})
		if len(missing) > 0 {
			return nil, errors.NewValidationError(attr, fmt.Sprintf("unresolved macros %v in %q", missing, template))
		}
		res[attr] = expanded
	}
	return res, nil
}

// macroValue renders a normalized column value for use inside a key template.
func macroValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case int64:
		return strconv.FormatInt(tv, 10)
	case uint64:
		return strconv.FormatUint(tv, 10)
	case float64:
		return strconv.FormatFloat(tv, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(tv)
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano)
	case []byte:
		return base64.StdEncoding.EncodeToString(tv)
	default:
		return fmt.Sprint(tv)
	}
}

// fieldValues maps logical field names to macro strings for a normalized row
func fieldValues(a *schema.Artifact, row map[string]any) map[string]string {
	values := make(map[string]string, len(row))
	for _, c := range a.Columns() {
		if v, ok := row[c.Name]; ok {
			values[c.Field] = macroValue(v)
		}
	}
	return values
}

// usesIndexMap reports whether items are addressed through expanded PK/SK
// attributes rather than the primary key columns
func usesIndexMap(a *schema.Artifact) bool {
	_, ok := a.IndexMap()["PK"]
	return ok
}

// checkIndexMap rejects an index map declaring a sort key template without
// the partition key template it belongs to
func checkIndexMap(a *schema.Artifact) error {
	indexMap := a.IndexMap()
	if _, ok := indexMap["SK"]; ok && !usesIndexMap(a) {
		return fmt.Errorf("%w: %s declares SK without PK", errors.ErrNoIndexMap, a.Entity())
	}
	return nil
}

// keyAttributes builds the DynamoDB key for normalized primary key values
func keyAttributes(a *schema.Artifact, key []any) (map[string]types.AttributeValue, error) {
	pk := a.PrimaryKey()
	if !usesIndexMap(a) {
		out := make(map[string]types.AttributeValue, len(pk))
		for i, c := range pk {
			av, err := attributevalue.Marshal(key[i])
			if err != nil {
				return nil, fmt.Errorf("failed to marshal key %s: %w", c.Name, err)
			}
			out[c.Name] = av
		}
		return out, nil
	}

	values := make(map[string]string, len(pk))
	for i, c := range pk {
		values[c.Field] = macroValue(key[i])
	}
	indexMap := a.IndexMap()
	keyTemplates := map[string]string{"PK": indexMap["PK"]}
	if sk, ok := indexMap["SK"]; ok {
		keyTemplates["SK"] = sk
	}
	expanded, err := expandMacros(keyTemplates, values)
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.AttributeValue, len(expanded))
	for attr, v := range expanded {
		if v == "" {
			return nil, errors.NewValidationError(attr, "key attribute expanded to an empty string")
		}
		out[attr] = &types.AttributeValueMemberS{Value: v}
	}
	return out, nil
}
