package ingredient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"formulary-manager/core/storage"
	"formulary-manager/feature/ingredient/models"

	"github.com/minio/minio-go/v7"
)

// Archive preserves baseline snapshots outside the database. Writes happen
// once per canonical id, when the baseline is seeded.
type Archive interface {
	PutBaseline(ctx context.Context, snap *models.BaselineSnapshot) error
	GetBaseline(ctx context.Context, id string) (*models.BaselineSnapshot, error)
}

// objectArchive stores baseline snapshots as JSON objects in a bucket.
type objectArchive struct {
	client storage.Client
	bucket string
}

// NewObjectArchive creates an archive backed by the given object storage
// client and bucket.
func NewObjectArchive(client storage.Client, bucket string) Archive {
	return &objectArchive{client: client, bucket: bucket}
}

func baselineObjectName(id string) string {
	return fmt.Sprintf("baselines/%s.json", id)
}

func (a *objectArchive) PutBaseline(ctx context.Context, snap *models.BaselineSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode baseline %s: %w", snap.ID, err)
	}

	_, err = a.client.PutObject(
		ctx,
		a.bucket,
		baselineObjectName(snap.ID),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to archive baseline %s: %w", snap.ID, err)
	}

	return nil
}

func (a *objectArchive) GetBaseline(ctx context.Context, id string) (*models.BaselineSnapshot, error) {
	reader, err := a.client.GetObject(ctx, a.bucket, baselineObjectName(id), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get archived baseline %s: %w", id, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read archived baseline %s: %w", id, err)
	}

	var snap models.BaselineSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse archived baseline %s: %w", id, err)
	}

	return &snap, nil
}
