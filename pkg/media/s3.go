package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store keeps media in an S3 bucket under a key prefix, content-addressed
// like DiskStore.
type S3Store struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
	config    Config
}

// NewS3Store returns a store writing to bucket under prefix. publicURL is
// the base the bucket is served from (CDN or website endpoint).
func NewS3Store(client *s3.Client, bucket, prefix, publicURL string, config Config) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		prefix:    strings.Trim(prefix, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
		config:    config,
	}
}

// Save uploads the content and returns the hosted URL. The body is buffered
// to compute the content hash before the put.
func (s *S3Store) Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	if !s.config.allows(contentType) {
		return "", ErrUnsupportedType
	}
	if s.config.MaxFileSize > 0 && size > s.config.MaxFileSize {
		return "", ErrTooLarge
	}

	var buf bytes.Buffer
	var reader io.Reader = r
	if s.config.MaxFileSize > 0 {
		reader = io.LimitReader(r, s.config.MaxFileSize+1)
	}
	written, err := io.Copy(&buf, reader)
	if err != nil {
		return "", err
	}
	if s.config.MaxFileSize > 0 && written > s.config.MaxFileSize {
		return "", ErrTooLarge
	}

	sum := sha256.Sum256(buf.Bytes())
	name := hex.EncodeToString(sum[:]) + strings.ToLower(filepath.Ext(filename))
	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return "", fmt.Errorf("media: s3 upload: %w", err)
	}
	return s.publicURL + "/" + key, nil
}
