package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ArtifactStore archives raw spec text in an S3 bucket, one object per
// (spec, version).
type S3ArtifactStore struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3ArtifactStore creates an artifact store backed by S3 using the
// default AWS credential chain.
func NewS3ArtifactStore(ctx context.Context, bucket, prefix, region string) (*S3ArtifactStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	var awsConfig aws.Config
	var err error
	if region != "" {
		awsConfig, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	} else {
		awsConfig, err = awsconfig.LoadDefaultConfig(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3ArtifactStore{
		client: s3.NewFromConfig(awsConfig),
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// PutRawSpec uploads the raw spec bytes for one version.
func (s *S3ArtifactStore) PutRawSpec(ctx context.Context, specID string, version int, raw []byte) error {
	key := s.key(specID, version)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(raw),
	})
	if err != nil {
		return fmt.Errorf("failed to upload spec to s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// GetRawSpec downloads the raw spec bytes for one version.
func (s *S3ArtifactStore) GetRawSpec(ctx context.Context, specID string, version int) ([]byte, error) {
	key := s.key(specID, version)
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download spec from s3://%s/%s: %w", s.bucket, key, err)
	}
	defer result.Body.Close()

	raw, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec body: %w", err)
	}
	return raw, nil
}

func (s *S3ArtifactStore) key(specID string, version int) string {
	key := fmt.Sprintf("%s/%s", sanitizeFilename(specID), rawFilename(version))
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	return key
}

// FileArtifactStore is the local-disk ArtifactStore, used when no S3
// bucket is configured.
type FileArtifactStore struct {
	baseDir string
}

// NewFileArtifactStore creates an artifact store under baseDir/raw.
func NewFileArtifactStore(baseDir string) (*FileArtifactStore, error) {
	dir := filepath.Join(baseDir, "raw")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FileArtifactStore{baseDir: dir}, nil
}

// PutRawSpec writes the raw spec bytes for one version.
func (s *FileArtifactStore) PutRawSpec(_ context.Context, specID string, version int, raw []byte) error {
	dir := filepath.Join(s.baseDir, sanitizeFilename(specID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	path := filepath.Join(dir, rawFilename(version))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write raw spec: %w", err)
	}
	return nil
}

// GetRawSpec reads the raw spec bytes for one version.
func (s *FileArtifactStore) GetRawSpec(_ context.Context, specID string, version int) ([]byte, error) {
	path := filepath.Join(s.baseDir, sanitizeFilename(specID), rawFilename(version))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw spec: %w", err)
	}
	return raw, nil
}

// rawFilename names a raw spec artifact; the fetched bytes may be JSON or
// YAML so the extension stays neutral.
func rawFilename(version int) string {
	return fmt.Sprintf("v%06d.spec", version)
}
