package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"

	"github.com/mamadbah2/telelbirds/internal/config"
)

// ObjectStore keeps uploaded media and collected static files in one bucket.
type ObjectStore interface {
	PutMedia(ctx context.Context, dir, ext, contentType string, body io.Reader) (string, error)
	PutStatic(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// Bucket is the Cloud Storage implementation of ObjectStore.
type Bucket struct {
	service    *gcs.Service
	bucket     string
	publicBase string
	mediaRoot  string
	staticRoot string
	logger     *zap.Logger
}

// NewBucket builds the client; extra options are appended after the
// credentials option so tests can point it at a fake endpoint.
func NewBucket(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger, opts ...option.ClientOption) (*Bucket, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOpts := []option.ClientOption{option.WithScopes(gcs.DevstorageReadWriteScope)}
	if cfg.CredentialsPath != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := gcs.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	return &Bucket{
		service:    service,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		mediaRoot:  strings.Trim(cfg.MediaRoot, "/"),
		staticRoot: strings.Trim(cfg.StaticRoot, "/"),
		logger:     logger,
	}, nil
}

// PutMedia stores an upload under a fresh name in <media root>/<dir>/. Media
// objects are never overwritten.
func (b *Bucket) PutMedia(ctx context.Context, dir, ext, contentType string, body io.Reader) (string, error) {
	name := path.Join(b.mediaRoot, dir, uuid.NewString()+ext)
	if err := b.put(ctx, name, contentType, body, true); err != nil {
		return "", err
	}
	return b.URL(name), nil
}

// PutStatic stores a static asset under <static root>/, replacing any
// previous version.
func (b *Bucket) PutStatic(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	object := path.Join(b.staticRoot, strings.TrimPrefix(name, "/"))
	if err := b.put(ctx, object, contentType, body, false); err != nil {
		return "", err
	}
	return b.URL(object), nil
}

// URL is the public address of an object.
func (b *Bucket) URL(name string) string {
	return fmt.Sprintf("%s/%s/%s", b.publicBase, b.bucket, name)
}

func (b *Bucket) put(ctx context.Context, name, contentType string, body io.Reader, createOnly bool) error {
	call := b.service.Objects.Insert(b.bucket, &gcs.Object{Name: name, ContentType: contentType}).
		Media(body).
		Context(ctx)
	if createOnly {
		call = call.IfGenerationMatch(0)
	}

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}

	b.logger.Debug("object stored", zap.String("bucket", b.bucket), zap.String("name", name))
	return nil
}
