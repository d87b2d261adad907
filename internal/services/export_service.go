package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"eventops/internal/repositories"
)

const exportBucket = "eventops-exports"

// ExportService writes periodic on-hand snapshots to object storage so
// downstream reporting never queries the live projection.
type ExportService interface {
	ExportOnHandSnapshot(ctx context.Context) (string, error)
}

type exportService struct {
	onHandRepo repositories.OnHandRepository
	storage    StorageService
}

func NewExportService(onHandRepo repositories.OnHandRepository, storage StorageService) ExportService {
	return &exportService{
		onHandRepo: onHandRepo,
		storage:    storage,
	}
}

// ExportOnHandSnapshot writes every projection row as CSV and returns the
// object name.
func (s *exportService) ExportOnHandSnapshot(ctx context.Context) (string, error) {
	rows, err := s.onHandRepo.ListAll(ctx)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"item_id", "location_id", "qty_base", "refreshed_at"}); err != nil {
		return "", err
	}
	for _, row := range rows {
		record := []string{
			row.ItemID.String(),
			row.LocationID.String(),
			strconv.FormatFloat(row.QtyBase, 'f', -1, 64),
			row.RefreshedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	if err := s.storage.EnsureBucketExists(ctx, exportBucket); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("onhand-%s.csv", time.Now().UTC().Format("20060102-150405"))
	if err := s.storage.Upload(ctx, exportBucket, objectName, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
		return "", err
	}
	return objectName, nil
}
