// internal/cli/cli_test.go
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderline/larder-backend/internal/config"
	"github.com/larderline/larder-backend/internal/models"
	"github.com/larderline/larder-backend/internal/repository"
	"github.com/larderline/larder-backend/internal/utils"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func memoryEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "error")
}

func TestSummary(t *testing.T) {
	memoryEnv(t)

	out, err := run(t, "summary")
	require.NoError(t, err)

	var summary struct {
		TotalProducts   int `json:"total_products"`
		OutOfStockCount int `json:"out_of_stock_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 8, summary.TotalProducts)
	assert.Positive(t, summary.OutOfStockCount)
}

func TestAnalysisWithRecommendations(t *testing.T) {
	memoryEnv(t)

	out, err := run(t, "analysis", "--recommendations")
	require.NoError(t, err)

	var body struct {
		Analysis struct {
			TotalSelections int `json:"total_selections"`
		} `json:"analysis"`
		Recommendations map[string]json.RawMessage `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 3, body.Analysis.TotalSelections)
	assert.Contains(t, body.Recommendations, "low_confidence_selections")
}

func TestReorder(t *testing.T) {
	memoryEnv(t)

	out, err := run(t, "reorder")
	require.NoError(t, err)

	var list struct {
		Lines []json.RawMessage `json:"lines"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list.Lines, 4)
}

func TestToken(t *testing.T) {
	memoryEnv(t)
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "larder-cli")

	_, err := run(t, "token")
	assert.Error(t, err)

	out, err := run(t, "token", "--subject", "42", "--name", "Chef Ana", "--ttl", "10m")
	require.NoError(t, err)

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, int64(600), body.ExpiresIn)

	claims, err := utils.ValidateJWT(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "Chef Ana", claims.Name)
}

func TestMigrateRequiresSQLDriver(t *testing.T) {
	memoryEnv(t)

	_, err := run(t, "migrate")
	assert.Error(t, err)
}

func TestSeedSQLite(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("DB_SQLITE_PATH", filepath.Join(t.TempDir(), "larder.db"))

	_, err := run(t, "--driver", "sqlite", "migrate")
	require.NoError(t, err)

	out, err := run(t, "--driver", "sqlite", "seed")
	require.NoError(t, err)

	var counts map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	assert.Equal(t, 8, counts["house_items"])
	assert.Equal(t, 3, counts["vendor_selections"])

	// seeding is skipped for populated tables
	out, err = run(t, "--driver", "sqlite", "seed")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	assert.Equal(t, 8, counts["house_items"])
}

func TestAudit(t *testing.T) {
	memoryEnv(t)
	_, err := run(t, "audit")
	assert.Error(t, err, "the memory driver keeps no audit log")

	path := filepath.Join(t.TempDir(), "larder.db")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("DB_SQLITE_PATH", path)

	store, err := repository.Open(context.Background(), config.DatabaseConfig{
		Driver:      "sqlite",
		SQLitePath:  path,
		LogLevel:    "silent",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	for _, requestID := range []string{"req-1", "req-2", "req-3"} {
		require.NoError(t, store.Audit.Record(context.Background(), &models.AuditLog{
			RequestID:    requestID,
			Action:       "POST /v1/house-items/4/adjust-stock",
			ResourceType: "house-items",
			StatusCode:   200,
		}))
	}
	store.Close()

	_, err = run(t, "--driver", "sqlite", "audit", "--limit", "0")
	assert.Error(t, err)

	out, err := run(t, "--driver", "sqlite", "audit", "--limit", "2")
	require.NoError(t, err)

	var entries []models.AuditLog
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "req-3", entries[0].RequestID)
	assert.Equal(t, "req-2", entries[1].RequestID)
}
