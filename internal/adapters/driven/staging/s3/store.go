// Package s3 stages raw documents in an S3 bucket or S3-compatible store.
//
// Objects live under <prefix>/raw/<uuid>.xml once committed and under
// <prefix>/incoming/<run>/<uuid>.xml while a run is open. Commit copies each
// run object over the committed key and deletes the run copy.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/custodia-labs/geocat/internal/adapters/driven/staging"
	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.StagingStore = (*Store)(nil)
	_ driven.StagingRun   = (*Run)(nil)
)

// ErrRunClosed indicates a run was used after Commit or Discard.
var ErrRunClosed = errors.New("staging: run already committed or discarded")

// ErrNoBucket indicates the S3 backend was selected without a bucket.
var ErrNoBucket = errors.New("staging: s3 bucket not configured")

// API is the subset of the S3 client the store uses.
type API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store stages documents in one bucket under a key prefix.
type Store struct {
	client API
	bucket string
	prefix string
}

// New creates a store on an existing client.
func New(client API, bucket, prefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// NewFromSettings builds an S3 client from staging settings. Static
// credentials are used when configured, otherwise the default AWS chain.
func NewFromSettings(ctx context.Context, cfg domain.StagingSettings) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return New(client, cfg.Bucket, cfg.Prefix), nil
}

// Location describes where committed documents live.
func (s *Store) Location() string {
	return "s3://" + s.bucket + "/" + s.key("raw") + "/"
}

func (s *Store) key(parts ...string) string {
	if s.prefix == "" {
		return path.Join(parts...)
	}
	return path.Join(append([]string{s.prefix}, parts...)...)
}

// Begin opens a new run.
func (s *Store) Begin(_ context.Context) (driven.StagingRun, error) {
	id := uuid.New().String()
	return &Run{
		id:        id,
		keySet:    keySet{store: s, dir: s.key("incoming", id)},
		committed: s.key("raw"),
	}, nil
}

// Committed returns the committed documents.
func (s *Store) Committed(_ context.Context) (driven.StagedSet, error) {
	return &keySet{store: s, dir: s.key("raw")}, nil
}

// Run is one harvest's staging scope.
type Run struct {
	keySet

	id        string
	committed string

	mu     sync.Mutex
	closed bool
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Put uploads a document, replacing any earlier one with the same UUID.
func (r *Run) Put(ctx context.Context, doc domain.RawDocument) error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrRunClosed
	}
	if doc.UUID == "" {
		return fmt.Errorf("%w: document without uuid", domain.ErrInvalidInput)
	}

	_, err := r.store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.store.bucket),
		Key:         aws.String(r.dir + "/" + staging.ObjectName(doc.UUID)),
		Body:        bytes.NewReader(doc.Content),
		ContentType: aws.String("application/xml"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// Commit copies the run's objects over the committed keys.
func (r *Run) Commit(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRunClosed
	}

	names, err := r.names(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		src := r.dir + "/" + name
		_, err := r.store.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(r.store.bucket),
			CopySource: aws.String(copySource(r.store.bucket, src)),
			Key:        aws.String(r.committed + "/" + name),
		})
		if err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
	}

	r.closed = true
	return r.deleteAll(ctx, names)
}

// Discard deletes the run's objects.
func (r *Run) Discard(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true

	names, err := r.names(ctx)
	if err != nil {
		return err
	}
	return r.deleteAll(ctx, names)
}

func (r *Run) deleteAll(ctx context.Context, names []string) error {
	var errs []error
	for _, name := range names {
		_, err := r.store.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(r.store.bucket),
			Key:    aws.String(r.dir + "/" + name),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// keySet reads staged documents under one key prefix.
type keySet struct {
	store *Store
	dir   string
}

// names returns the object names directly under the prefix.
func (k *keySet) names(ctx context.Context) ([]string, error) {
	var names []string
	paginator := s3.NewListObjectsV2Paginator(k.store.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(k.store.bucket),
		Prefix: aws.String(k.dir + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list staged objects: %w", err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), k.dir+"/")
			if strings.Contains(name, "/") {
				continue
			}
			if _, ok := staging.UUIDFromName(name); ok {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// List returns the staged UUIDs in ascending order.
func (k *keySet) List(ctx context.Context) ([]string, error) {
	names, err := k.names(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, _ := staging.UUIDFromName(name)
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Get downloads one staged document.
func (k *keySet) Get(ctx context.Context, id string) (*domain.RawDocument, error) {
	out, err := k.store.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(k.store.bucket),
		Key:    aws.String(k.dir + "/" + staging.ObjectName(id)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read staged object: %w", err)
	}

	doc := &domain.RawDocument{UUID: id, Content: content}
	if out.LastModified != nil {
		doc.FetchedAt = out.LastModified.UTC()
	}
	return doc, nil
}

// copySource URL-encodes bucket/key as CopyObject requires.
func copySource(bucket, key string) string {
	segments := strings.Split(bucket+"/"+key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
