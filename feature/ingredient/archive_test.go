package ingredient

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"formulary-manager/feature/ingredient/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"formulary-manager/core/storage/mocks"
)

// TestObjectArchive_PutBaseline tests that the snapshot is uploaded as JSON
// under the expected object name.
func TestObjectArchive_PutBaseline(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject",
		mock.Anything, "formulary", "baselines/heparin-drip.json",
		mock.Anything, mock.AnythingOfType("int64"), mock.Anything,
	).Return(minio.UploadInfo{}, nil)

	archive := NewObjectArchive(client, "formulary")
	snap := &models.BaselineSnapshot{
		ID: "heparin-drip",
		Sections: []models.Section{
			{Type: models.SectionStaticText, Content: "Administer slowly", Order: 0},
		},
		ImportedAt: time.Now(),
	}

	err := archive.PutBaseline(context.Background(), snap)
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

// TestObjectArchive_GetBaseline tests round-tripping a snapshot through the
// mock client.
func TestObjectArchive_GetBaseline(t *testing.T) {
	body := `{"id":"heparin-drip","sections":[{"type":"static text","content":"Administer slowly","order":0}],"tests":[],"imported_at":"2026-01-02T00:00:00Z"}`

	client := new(mocks.Client)
	client.On("GetObject",
		mock.Anything, "formulary", "baselines/heparin-drip.json", mock.Anything,
	).Return(io.NopCloser(strings.NewReader(body)), nil)

	archive := NewObjectArchive(client, "formulary")
	snap, err := archive.GetBaseline(context.Background(), "heparin-drip")
	assert.NoError(t, err)
	assert.Equal(t, "heparin-drip", snap.ID)
	assert.Len(t, snap.Sections, 1)
	assert.Equal(t, "Administer slowly", snap.Sections[0].Content)
}
