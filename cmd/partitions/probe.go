/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"gorm.io/gorm"

	"github.com/suparena/partitionstore/config"
	"github.com/suparena/partitionstore/datastore/ddb"
	"github.com/suparena/partitionstore/datastore/sqlstore"
)

// prober reports whether a physical object exists
type prober interface {
	Exists(ctx context.Context, table string) (bool, error)
	Close() error
}

func newProber(ctx context.Context, cfg config.Config) (prober, error) {
	switch cfg.Backend {
	case config.BackendSQL:
		db, err := sqlstore.Open(cfg.SQL.Dialect, cfg.SQL.DSN)
		if err != nil {
			return nil, err
		}
		return &sqlProber{db: db}, nil
	case config.BackendDynamoDB:
		client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretKey,
			Region:    cfg.AWS.Region,
			Endpoint:  cfg.AWS.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return &dynamoProber{client: client}, nil
	default:
		return nil, fmt.Errorf("-probe needs the %s or %s backend, not %q", config.BackendSQL, config.BackendDynamoDB, cfg.Backend)
	}
}

type sqlProber struct {
	db *gorm.DB
}

func (p *sqlProber) Exists(ctx context.Context, table string) (bool, error) {
	return p.db.WithContext(ctx).Migrator().HasTable(table), nil
}

func (p *sqlProber) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type dynamoProber struct {
	client *sdk.Client
}

func (p *dynamoProber) Exists(ctx context.Context, table string) (bool, error) {
	_, err := p.client.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: aws.String(table)})
	if err == nil {
		return true, nil
	}
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return false, nil
	}
	return false, fmt.Errorf("describe %s: %w", table, err)
}

func (p *dynamoProber) Close() error { return nil }
