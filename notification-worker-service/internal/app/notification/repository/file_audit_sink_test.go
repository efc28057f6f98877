package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texnomart/notification-worker-service/internal/app/notification/config"
	"texnomart/notification-worker-service/internal/app/notification/entity"
)

func TestFileAuditSink_OverwriteKeepsLastRecord(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "deleted_instances.json")
	sink := NewFileAuditSink(path, config.AuditModeOverwrite)
	ctx := context.Background()

	// Act
	require.NoError(t, sink.Write(ctx, &entity.AuditRecord{Model: "Product", ID: 7}))
	require.NoError(t, sink.Write(ctx, &entity.AuditRecord{Model: "Category", ID: 3}))

	// Assert
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"model\": \"Category\",\n    \"id\": 3\n}", string(data))
}

func TestFileAuditSink_AppendWritesJSONLines(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "audit", "deleted_instances.json")
	sink := NewFileAuditSink(path, config.AuditModeAppend)
	ctx := context.Background()

	// Act
	require.NoError(t, sink.Write(ctx, &entity.AuditRecord{Model: "Product", ID: 7, EventID: "e1"}))
	require.NoError(t, sink.Write(ctx, &entity.AuditRecord{Model: "Product", ID: 8, EventID: "e2"}))

	// Assert
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, map[string]interface{}{"model": "Product", "id": float64(7)}, first)
	assert.JSONEq(t, `{"model":"Product","id":8}`, lines[1])
}

func TestFileAuditSink_CancelledContext(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "deleted_instances.json")
	sink := NewFileAuditSink(path, config.AuditModeAppend)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	err := sink.Write(ctx, &entity.AuditRecord{Model: "Product", ID: 1})

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
