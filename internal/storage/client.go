package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/encrypt"

	"upload-service/internal/config"
	"upload-service/internal/models"
	"upload-service/pkg/utils"
)

// ErrObjectNotFound distinguishes an absent key from other storage failures
// so callers can branch on existence.
var ErrObjectNotFound = errors.New("object not found")

// Client wraps the MinIO SDK with the single-bucket, encrypted-at-rest
// conventions of the upload pipeline.
type Client struct {
	mc            *minio.Client
	bucket        string
	publicBaseURL string
	sse           encrypt.ServerSide
}

// New initializes the MinIO client and ensures the upload bucket exists.
func New(ctx context.Context, cfg *config.MinIOConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing MinIO client: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("error checking if bucket %s exists: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("error creating bucket %s: %w", cfg.Bucket, err)
		}
		log.Printf("Created bucket: %s", cfg.Bucket)
	}

	return &Client{
		mc:            mc,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		sse:           encrypt.NewSSE(),
	}, nil
}

// PresignUpload issues a time-limited PUT URL bound to the given content type.
func (c *Client) PresignUpload(ctx context.Context, objectKey, contentType string, ttl time.Duration) (string, error) {
	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}
	u, err := c.mc.PresignHeader(ctx, http.MethodPut, c.bucket, objectKey, ttl, url.Values{}, headers)
	if err != nil {
		return "", models.NewStorageError("error generating presigned upload URL", err)
	}
	return u.String(), nil
}

// PresignDownload issues a time-limited GET URL for an object.
func (c *Client) PresignDownload(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	if strings.Contains(objectKey, "..") {
		return "", models.NewValidationError("invalid object key")
	}
	u, err := c.mc.PresignedGetObject(ctx, c.bucket, objectKey, ttl, nil)
	if err != nil {
		return "", models.NewStorageError("error generating presigned download URL", err)
	}
	return u.String(), nil
}

// Put uploads a byte slice under the given key.
func (c *Client) Put(ctx context.Context, objectKey string, data []byte, contentType string, metadata map[string]string) error {
	_, err := c.mc.PutObject(ctx, c.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:          contentType,
		UserMetadata:         metadata,
		ServerSideEncryption: c.sse,
	})
	if err != nil {
		return models.NewStorageError(fmt.Sprintf("error uploading object %s", objectKey), err)
	}
	return nil
}

// PutFile uploads a local file under the given key.
func (c *Client) PutFile(ctx context.Context, objectKey, path, contentType string) error {
	_, err := c.mc.FPutObject(ctx, c.bucket, objectKey, path, minio.PutObjectOptions{
		ContentType:          contentType,
		ServerSideEncryption: c.sse,
	})
	if err != nil {
		return models.NewStorageError(fmt.Sprintf("error uploading file to %s", objectKey), err)
	}
	return nil
}

// Get downloads an object fully into memory.
func (c *Client) Get(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, models.NewStorageError(fmt.Sprintf("error getting object %s", objectKey), err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, models.NewStorageError(fmt.Sprintf("error reading object %s", objectKey), err)
	}
	return data, nil
}

// Download streams an object to a local path, computing its MD5 checksum on
// the way through.
func (c *Client) Download(ctx context.Context, objectKey, path string) (string, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return "", models.NewStorageError(fmt.Sprintf("error getting object %s", objectKey), err)
	}
	defer obj.Close()

	f, err := os.Create(path)
	if err != nil {
		return "", models.NewStorageError("error creating download target", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(f, utils.NewHashingReader(obj, h)); err != nil {
		if isNotFound(err) {
			return "", ErrObjectNotFound
		}
		return "", models.NewStorageError(fmt.Sprintf("error downloading object %s", objectKey), err)
	}
	return utils.HexSum(h), nil
}

// Delete removes an object. Deleting an absent key is a success.
func (c *Client) Delete(ctx context.Context, objectKey string) error {
	err := c.mc.RemoveObject(ctx, c.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return models.NewStorageError(fmt.Sprintf("error deleting object %s", objectKey), err)
	}
	return nil
}

// Exists reports whether an object is present.
func (c *Client) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, err := c.mc.StatObject(ctx, c.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, models.NewStorageError(fmt.Sprintf("error checking object %s", objectKey), err)
	}
	return true, nil
}

// Stat returns the store-side metadata of an object.
func (c *Client) Stat(ctx context.Context, objectKey string) (minio.ObjectInfo, error) {
	info, err := c.mc.StatObject(ctx, c.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return minio.ObjectInfo{}, ErrObjectNotFound
		}
		return minio.ObjectInfo{}, models.NewStorageError(fmt.Sprintf("error stating object %s", objectKey), err)
	}
	return info, nil
}

// Copy duplicates an object under a new key.
func (c *Client) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := c.mc.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: c.bucket, Object: dstKey, Encryption: c.sse},
		minio.CopySrcOptions{Bucket: c.bucket, Object: srcKey},
	)
	if err != nil {
		if isNotFound(err) {
			return ErrObjectNotFound
		}
		return models.NewStorageError(fmt.Sprintf("error copying %s to %s", srcKey, dstKey), err)
	}
	return nil
}

// HealthCheck probes the store by checking the upload bucket.
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		log.Printf("Storage health check failed: %v", err)
		return false
	}
	return true
}

// PublicURL builds the public link clients use to reference an object.
func (c *Client) PublicURL(objectKey string) string {
	return c.publicBaseURL + "/" + c.bucket + "/" + objectKey
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
