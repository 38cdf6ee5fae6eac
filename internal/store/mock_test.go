package store

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type MockDriver struct {
	QueryExecuted string
	QueryParams   map[string]interface{}
	MockResult    neo4j.EagerResult
	Err           error
	IndicesBuilt  bool
	Closed        bool
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.QueryExecuted = query
	m.QueryParams = params
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	m.IndicesBuilt = true
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	m.Closed = true
	return nil
}
