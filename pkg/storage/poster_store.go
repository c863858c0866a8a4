// Package storage archives poster images in object storage so the catalog
// does not depend on provider URLs staying alive.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PosterStore archives a movie's poster image. Archival is a best-effort
// side effect of a new catalog persist; callers swallow failures.
type PosterStore interface {
	Archive(ctx context.Context, movieID, posterURL string) error
}

// MinioPosterStore downloads posters and stores them in a MinIO/S3 bucket
// under posters/<movieID>.
type MinioPosterStore struct {
	client     *minio.Client
	bucket     string
	httpClient *http.Client
}

// NewMinioPosterStore connects to MinIO and ensures the bucket exists.
func NewMinioPosterStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioPosterStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioPosterStore{
		client:     client,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Archive fetches the poster and writes it to the bucket. "N/A" and empty
// URLs are skipped: OMDb uses "N/A" for titles without artwork.
func (p *MinioPosterStore) Archive(ctx context.Context, movieID, posterURL string) error {
	posterURL = strings.TrimSpace(posterURL)
	if posterURL == "" || posterURL == "N/A" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, posterURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch poster: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("fetch poster: %s", resp.Status)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := path.Join("posters", movieID+extensionFor(posterURL))
	_, err = p.client.PutObject(ctx, p.bucket, key, resp.Body, resp.ContentLength,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put poster: %w", err)
	}
	return nil
}

func extensionFor(posterURL string) string {
	ext := strings.ToLower(path.Ext(posterURL))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	default:
		return ".jpg"
	}
}
