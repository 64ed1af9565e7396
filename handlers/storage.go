package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"odeplac.in/pro/config"
)

// DocumentStore holds uploaded tariff PDFs. GCS in production, local
// filesystem in development, selected by USE_GCS.
type DocumentStore interface {
	Write(ctx context.Context, name string, data []byte) (path string, err error)
	Read(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, paths []string) error
}

// NewDocumentStore picks the store for the current environment.
func NewDocumentStore(ctx context.Context) (DocumentStore, error) {
	if config.App.UseGCS {
		return newGCSStore(ctx, config.App.GCSBucket)
	}
	return &localStore{dir: filepath.Join(config.App.UploadDir, "tariffs")}, nil
}

// objectName builds a collision-free storage name for an upload.
func objectName(originalFilename string) string {
	timestamp := time.Now().Format("20060102-150405")
	ext := filepath.Ext(originalFilename)
	return fmt.Sprintf("%s-%s%s", timestamp, uuid.New().String()[:8], ext)
}

// ---- GCS ----

type gcsStore struct {
	client *storage.Client
	bucket string
}

func newGCSStore(ctx context.Context, bucket string) (*gcsStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &gcsStore{client: client, bucket: bucket}, nil
}

func (s *gcsStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	obj := s.client.Bucket(s.bucket).Object("tariffs/" + name)
	w := obj.NewWriter(ctx)
	w.ContentType = "application/pdf"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object: %w", err)
	}
	return "gs://" + s.bucket + "/tariffs/" + name, nil
}

func (s *gcsStore) Read(ctx context.Context, path string) ([]byte, error) {
	object := objectFromPath(path, s.bucket)
	r, err := s.client.Bucket(s.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", object, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *gcsStore) Delete(ctx context.Context, paths []string) error {
	for _, p := range paths {
		object := objectFromPath(p, s.bucket)
		if err := s.client.Bucket(s.bucket).Object(object).Delete(ctx); err != nil {
			log.WithError(err).Warnf("failed to delete object %s", object)
		}
	}
	return nil
}

func objectFromPath(path, bucket string) string {
	prefix := "gs://" + bucket + "/"
	if len(path) > len(prefix) && path[:len(prefix)] == prefix {
		return path[len(prefix):]
	}
	return path
}

// ---- Local filesystem ----

type localStore struct {
	dir string
}

func (s *localStore) Write(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path, nil
}

func (s *localStore) Read(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (s *localStore) Delete(_ context.Context, paths []string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.WithError(err).Warnf("failed to delete file %s", p)
		}
	}
	return nil
}
