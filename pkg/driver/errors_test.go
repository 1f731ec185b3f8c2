package driver

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
)

func TestStoreError(t *testing.T) {
	cause := &neo4j.Neo4jError{
		Code: "Neo.ClientError.Schema.ConstraintValidationFailed",
		Msg:  "Node(1) already exists with label `Movie`",
	}
	err := wrapError("write", cause)

	var se *StoreError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, "write", se.Op)
	assert.Equal(t, cause.Code, se.Code)
	assert.Equal(t, cause.Code, ErrorCode(err))
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)

	assert.Same(t, err, wrapError("read", err))
	assert.NoError(t, wrapError("write", nil))
}

func TestStoreErrorUnavailable(t *testing.T) {
	err := fmt.Errorf("batch 3: %w", &StoreError{Op: "write", Unavailable: true, Err: errors.New("dial tcp: refused")})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, "", ErrorCode(err))
}

func TestSchemaErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		exists      bool
		unsupported bool
	}{
		{
			name:   "equivalent rule",
			err:    &neo4j.Neo4jError{Code: "Neo.ClientError.Schema.EquivalentSchemaRuleAlreadyExists", Msg: "An equivalent constraint already exists"},
			exists: true,
		},
		{
			name:   "index exists",
			err:    &neo4j.Neo4jError{Code: "Neo.ClientError.Schema.IndexAlreadyExists", Msg: "index exists"},
			exists: true,
		},
		{
			name:   "memgraph message",
			err:    errors.New("Constraint on :Movie(id) already exists"),
			exists: true,
		},
		{
			name:        "syntax",
			err:         &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "Invalid input 'REQUIRE'"},
			unsupported: true,
		},
		{
			name:        "edition",
			err:         errors.New("property existence constraints are not supported in community edition"),
			unsupported: true,
		},
		{
			name: "other",
			err:  &neo4j.Neo4jError{Code: "Neo.TransientError.General.DatabaseUnavailable", Msg: "down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapError("schema", tt.err)
			assert.Equal(t, tt.exists, IsAlreadyExists(err))
			assert.Equal(t, tt.unsupported, IsUnsupported(err))
		})
	}

	assert.False(t, IsAlreadyExists(nil))
	assert.False(t, IsUnsupported(nil))
}

func TestConfigureDisablesTransactionRetries(t *testing.T) {
	cfg := &neo4j.Config{
		MaxTransactionRetryTime: 30 * time.Second,
		MaxConnectionPoolSize:   100,
	}
	opts := DefaultOptions()
	opts.MaxConnectionPoolSize = 0
	opts.SocketConnectTimeout = 3 * time.Second

	configure(opts)(cfg)

	assert.Zero(t, cfg.MaxTransactionRetryTime)
	assert.Equal(t, 100, cfg.MaxConnectionPoolSize)
	assert.Equal(t, 3*time.Second, cfg.SocketConnectTimeout)
	assert.Equal(t, opts.ConnectionAcquisitionTimeout, cfg.ConnectionAcquisitionTimeout)
}
