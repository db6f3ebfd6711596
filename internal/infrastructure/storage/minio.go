package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/slidevoxdev/slidevox/pkg/config"
)

// AudioStore wraps MinIO operations for synthesized audio objects
type AudioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string // Public URL base when MinIO sits behind a reverse proxy
}

// NewAudioStore creates a new audio object store
func NewAudioStore(cfg *config.StorageConfig) (*AudioStore, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &AudioStore{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: cfg.PublicURL,
	}

	if err := store.ensureBucketWithPolicy(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return store, nil
}

// ensureBucketWithPolicy ensures the bucket exists with a public read policy
// so render workers and the preview player can fetch audio directly.
func (s *AudioStore) ensureBucketWithPolicy(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/*"]
			}
		]
	}`, s.bucket)

	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	return nil
}

// AudioObjectName returns the canonical object key for a (slide, lang) pair.
// Re-synthesis overwrites the previous audio in place.
func AudioObjectName(slideID uuid.UUID, lang string) string {
	return fmt.Sprintf("audio/%s/%s.mp3", slideID, lang)
}

// UploadAudio uploads audio bytes and returns a directly accessible URL
func (s *AudioStore) UploadAudio(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}

	return s.ObjectURL(objectName), nil
}

// ObjectURL builds the public URL for an object
func (s *AudioStore) ObjectURL(objectName string) string {
	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName)
	}
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectName)
}
