package pg

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homedger-dev/homedger/shared/domain"
	internal_errors "github.com/homedger-dev/homedger/shared/errors"
)

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

// newTestAttachment builds a fully populated record with a fresh id.
func newTestAttachment() *domain.Attachment {
	id := uuid.New().String()
	return &domain.Attachment{
		Id:            id,
		Association:   domain.Association{PurchaseId: int64Ptr(1)},
		FileUrl:       "https://blobs.test/attachments/" + id + ".jpg",
		ThumbnailUrl:  strPtr("https://blobs.test/attachments/" + id + "_thumb.jpg"),
		StorageKey:    "attachments/" + id + ".jpg",
		ThumbnailKey:  strPtr("attachments/" + id + "_thumb.jpg"),
		FileName:      "photo.jpg",
		FileType:      domain.FileTypePhoto,
		FileSizeBytes: 12345,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func mustCreate(t *testing.T, a *domain.Attachment) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, storage.CreateAttachment(ctx, a))
	t.Cleanup(func() {
		_ = storage.DeleteAttachment(ctx, a.Id)
	})
}

func TestCreateAndGetAttachment(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip of a plain attachment", func(t *testing.T) {
		a := newTestAttachment()
		mustCreate(t, a)

		got, err := storage.GetAttachment(ctx, a.Id)
		require.NoError(t, err)
		assert.Equal(t, a.Id, got.Id)
		assert.Equal(t, a.Association.PurchaseId, got.Association.PurchaseId)
		assert.Nil(t, got.Association.LineItemId)
		assert.Equal(t, a.FileUrl, got.FileUrl)
		assert.Equal(t, a.ThumbnailUrl, got.ThumbnailUrl)
		assert.Equal(t, a.StorageKey, got.StorageKey)
		assert.Equal(t, a.FileType, got.FileType)
		assert.Equal(t, a.FileSizeBytes, got.FileSizeBytes)
		assert.Nil(t, got.Document)
		assert.WithinDuration(t, a.CreatedAt, got.CreatedAt, time.Second)
	})

	t.Run("round trip of house document fields", func(t *testing.T) {
		expires := time.Date(2030, 6, 30, 0, 0, 0, 0, time.UTC)
		a := newTestAttachment()
		a.FileType = domain.FileTypeDocument
		a.Document = &domain.DocumentMetadata{
			Category:    domain.DocWarranty,
			Title:       "Boiler warranty",
			Description: "5 year coverage",
			ExpiresAt:   &expires,
		}
		mustCreate(t, a)

		got, err := storage.GetAttachment(ctx, a.Id)
		require.NoError(t, err)
		require.NotNil(t, got.Document)
		assert.Equal(t, domain.DocWarranty, got.Document.Category)
		assert.Equal(t, "Boiler warranty", got.Document.Title)
		assert.Equal(t, "5 year coverage", got.Document.Description)
		require.NotNil(t, got.Document.ExpiresAt)
		assert.True(t, expires.Equal(got.Document.ExpiresAt.UTC()))
	})

	t.Run("attachment without thumbnail", func(t *testing.T) {
		a := newTestAttachment()
		a.ThumbnailUrl = nil
		a.ThumbnailKey = nil
		mustCreate(t, a)

		got, err := storage.GetAttachment(ctx, a.Id)
		require.NoError(t, err)
		assert.Nil(t, got.ThumbnailUrl)
		assert.Nil(t, got.ThumbnailKey)
	})

	t.Run("missing attachment yields 404", func(t *testing.T) {
		_, err := storage.GetAttachment(ctx, uuid.New().String())
		require.Error(t, err)

		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, 404, statusErr.StatusCode)
	})
}

func TestListAttachments(t *testing.T) {
	ctx := context.Background()
	purchaseId := int64(987654)
	roomId := int64(555111)

	first := newTestAttachment()
	first.Association = domain.Association{PurchaseId: &purchaseId}
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	mustCreate(t, first)

	second := newTestAttachment()
	second.Association = domain.Association{PurchaseId: &purchaseId, RoomId: &roomId}
	mustCreate(t, second)

	t.Run("by purchase id, ordered by creation time", func(t *testing.T) {
		got, err := storage.ListAttachments(ctx, domain.Association{PurchaseId: &purchaseId})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first.Id, got[0].Id)
		assert.Equal(t, second.Id, got[1].Id)
	})

	t.Run("by room id matches only the tagged attachment", func(t *testing.T) {
		got, err := storage.ListAttachments(ctx, domain.Association{RoomId: &roomId})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, second.Id, got[0].Id)
	})

	t.Run("unknown association id matches nothing", func(t *testing.T) {
		got, err := storage.ListAttachments(ctx, domain.Association{LineItemId: int64Ptr(42424242)})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestDeleteAttachment(t *testing.T) {
	ctx := context.Background()

	t.Run("delete removes the record", func(t *testing.T) {
		a := newTestAttachment()
		require.NoError(t, storage.CreateAttachment(ctx, a))

		require.NoError(t, storage.DeleteAttachment(ctx, a.Id))

		_, err := storage.GetAttachment(ctx, a.Id)
		require.Error(t, err)
	})

	t.Run("deleting a missing record yields 404", func(t *testing.T) {
		err := storage.DeleteAttachment(ctx, uuid.New().String())
		require.Error(t, err)

		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, 404, statusErr.StatusCode)
	})
}

func TestAllStorageKeys(t *testing.T) {
	ctx := context.Background()

	withThumb := newTestAttachment()
	mustCreate(t, withThumb)

	noThumb := newTestAttachment()
	noThumb.ThumbnailUrl = nil
	noThumb.ThumbnailKey = nil
	mustCreate(t, noThumb)

	keys, err := storage.AllStorageKeys(ctx)
	require.NoError(t, err)

	assert.Contains(t, keys, withThumb.StorageKey)
	assert.Contains(t, keys, *withThumb.ThumbnailKey)
	assert.Contains(t, keys, noThumb.StorageKey)
}

func TestPing(t *testing.T) {
	assert.NoError(t, storage.Ping(context.Background()))
}
