package audit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectPutter is the part of the MinIO client the archive uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader *strings.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type minioPutter struct {
	client *minio.Client
}

func (p minioPutter) PutObject(ctx context.Context, bucket, object string, reader *strings.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return p.client.PutObject(ctx, bucket, object, reader, size, opts)
}

var _ Sink = (*ArchiveSink)(nil)

// ArchiveSink uploads the rendered report of rejected runs.
type ArchiveSink struct {
	putter ObjectPutter
	bucket string
}

// ArchiveOptions configures the MinIO connection.
type ArchiveOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	UseSSL    bool
}

// OpenArchive connects to an S3-compatible endpoint. The bucket must exist.
func OpenArchive(ctx context.Context, opts ArchiveOptions) (*ArchiveSink, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:    opts.UseSSL,
		Region:    opts.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("archive bucket missing: %s", opts.Bucket)
	}
	return NewArchiveSink(minioPutter{client: client}, opts.Bucket), nil
}

func NewArchiveSink(putter ObjectPutter, bucket string) *ArchiveSink {
	return &ArchiveSink{putter: putter, bucket: bucket}
}

func (s *ArchiveSink) Record(ctx context.Context, rec Record) error {
	if rec.Report == "" {
		return nil
	}
	key := ObjectKey(rec)
	body := strings.NewReader(rec.Report)
	_, err := s.putter.PutObject(ctx, s.bucket, key, body, body.Size(), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
		UserMetadata: map[string]string{
			"branch":       rec.Branch,
			"new-revision": rec.NewRevision,
		},
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *ArchiveSink) Close() error { return nil }

// ObjectKey returns reports/<branch>/<run id>.txt with the "refs/heads/"
// prefix removed and unsafe characters replaced.
func ObjectKey(rec Record) string {
	branch := strings.TrimPrefix(rec.Branch, "refs/heads/")
	branch = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.', r == '/':
			return r
		default:
			return '_'
		}
	}, branch)
	branch = strings.Trim(strings.ReplaceAll(branch, "..", "_"), "/")
	if branch == "" {
		branch = "_"
	}
	return fmt.Sprintf("reports/%s/%s.txt", branch, rec.RunID)
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
