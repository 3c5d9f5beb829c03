package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Backup serializes the full catalog to a pretty-printed JSON snapshot
// at dir/fileName, overwriting any existing file. A destination
// directory that does not exist is logged and skipped without error;
// an unwritable destination that does exist is an error.
func (s *CatalogService) Backup(ctx context.Context, dir, fileName string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.logger.Error("backup directory does not exist, skipping backup",
			zap.String("dir", dir))
		return nil
	}

	funkos, err := s.FindAll(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(funkos, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}

	dest := filepath.Join(dir, fileName)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing backup to %s: %w", dest, err)
	}

	s.logger.Info("backup written",
		zap.String("dest", dest),
		zap.Int("funkos", len(funkos)))
	return nil
}
