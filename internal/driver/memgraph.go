package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
	log    *zap.Logger
}

func NewMemgraphDriver(ctx context.Context, uri, username, password string, log *zap.Logger) (*MemgraphDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}

	log.Info("Connected to Memgraph", zap.String("uri", uri))
	return &MemgraphDriver{Driver: driver, log: log}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Automation(id);",
		"CREATE INDEX ON :Automation(category);",
		"CREATE INDEX ON :Automation(created_at);",
		"CREATE INDEX ON :User(id);",
		"CREATE INDEX ON :Profile(id);",
		"CREATE CONSTRAINT ON (a:Automation) ASSERT a.id IS UNIQUE;",
		"CREATE CONSTRAINT ON (p:Profile) ASSERT p.id IS UNIQUE;",
	}

	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			// Memgraph rejects re-creating an existing index.
			d.log.Warn("failed to create index", zap.String("query", q), zap.Error(err))
		}
	}

	return nil
}
