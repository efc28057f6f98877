package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"texnomart/notification-worker-service/internal/app/notification/config"
	"texnomart/notification-worker-service/internal/app/notification/entity"
)

// FileAuditSink пишет записи об удалениях в JSON файл.
// append: одна запись на строку (JSON Lines), overwrite: файл целиком заменяется последней записью.
type FileAuditSink struct {
	path string
	mode string
	mu   sync.Mutex
}

func NewFileAuditSink(path, mode string) *FileAuditSink {
	return &FileAuditSink{path: path, mode: mode}
}

func (s *FileAuditSink) Name() string {
	return "file"
}

func (s *FileAuditSink) Write(ctx context.Context, record *entity.AuditRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create audit dir: %w", err)
		}
	}

	if s.mode == config.AuditModeOverwrite {
		data, err := json.MarshalIndent(record, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to marshal audit record: %w", err)
		}
		if err := os.WriteFile(s.path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write audit file: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}
