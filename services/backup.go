package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"miniapp-rewards-system/models"
	"miniapp-rewards-system/storage"
	"miniapp-rewards-system/utils"
)

// SnapshotExporter dumps the ledger namespaces to S3-compatible object
// storage (R2) as one JSON document per run. Operational backup only;
// it never writes back into the store.
type SnapshotExporter struct {
	Store storage.Store
}

func NewSnapshotExporter(store storage.Store) *SnapshotExporter {
	return &SnapshotExporter{Store: store}
}

type ledgerSnapshot struct {
	TakenAt     time.Time         `json:"taken_at"`
	Users       []json.RawMessage `json:"users"`
	Tasks       []json.RawMessage `json:"tasks"`
	Completions []json.RawMessage `json:"completions"`
	Referrals   []json.RawMessage `json:"referrals"`
}

// Export scans every ledger namespace and uploads the snapshot.
// Returns the public URL of the uploaded object.
func (e *SnapshotExporter) Export(ctx context.Context) (string, error) {
	now := time.Now().UTC()
	snap := ledgerSnapshot{TakenAt: now}

	var err error
	if snap.Users, err = e.scan(ctx, models.UserKeyPrefix); err != nil {
		return "", err
	}
	if snap.Tasks, err = e.scan(ctx, models.TaskKeyPrefix); err != nil {
		return "", err
	}
	if snap.Completions, err = e.scan(ctx, "usertask:"); err != nil {
		return "", err
	}
	if snap.Referrals, err = e.scan(ctx, models.ReferralKeyPrefix); err != nil {
		return "", err
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/ledger-%s.json", now.Format("20060102T150405Z"))
	return utils.UploadBytesToR2(ctx, key, raw, "application/json")
}

func (e *SnapshotExporter) scan(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	values, err := e.Store.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, storageErr("snapshot scan", err)
	}
	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		out[i] = json.RawMessage(v)
	}
	return out, nil
}
