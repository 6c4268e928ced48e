package avatars

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/netx"
	"github.com/google/uuid"
)

// MaxAvatarBytes caps the size of a downloaded avatar.
const MaxAvatarBytes = 5 << 20

// Copier downloads an image and stores it under the owner's prefix.
type Copier struct {
	store  Store
	client *http.Client
}

func NewCopier(store Store, client *http.Client) *Copier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Copier{store: store, client: client}
}

// CopyFromURL returns the public URL of the stored copy.
func (c *Copier) CopyFromURL(ctx context.Context, uid, url string) (string, error) {
	body, contentType, err := netx.Download(ctx, c.client, url, MaxAvatarBytes)
	if err != nil {
		return "", fmt.Errorf("download avatar: %w", err)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("download avatar: unexpected content type %q", contentType)
	}

	return c.store.Put(ctx, StorageKey(uid, mediaType), mediaType, body)
}

// StorageKey builds a fresh object key for uid.
func StorageKey(uid, mediaType string) string {
	ext := ""
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		ext = exts[0]
	}
	return fmt.Sprintf("avatars/%s/%s%s", uid, uuid.New(), ext)
}
