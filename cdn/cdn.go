package cdn

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/shresthjindal28/gradient-library/config"
)

var log = logging.Logger("cdn")

// Object describes one stored binary as the gallery sees it: the storage key
// doubles as the public identifier.
type Object struct {
	Key       string    `json:"public_id"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a thin client for the S3-compatible object store backing the
// image CDN. It is not a storage engine in its own right: failures are
// surfaced verbatim to the caller.
type Store struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

func NewStore(ctx context.Context, cfg config.CDN) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, errors.Wrap(err, "loading object store credentials")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Put streams one object to the store and returns its public URL.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "uploading %s", key)
	}
	return s.PublicURL(key), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrapf(err, "deleting %s", key)
}

// List returns every object under prefix, following continuation tokens.
func (s *Store) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object

	pager := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "listing %s", prefix)
		}
		for _, obj := range page.Contents {
			o := Object{
				Key: aws.ToString(obj.Key),
				URL: s.PublicURL(aws.ToString(obj.Key)),
			}
			if obj.Size != nil {
				o.Size = *obj.Size
			}
			if obj.LastModified != nil {
				o.CreatedAt = *obj.LastModified
			}
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

// KeyFromURL is the inverse of PublicURL. It reports false for URLs served
// from any other origin.
func (s *Store) KeyFromURL(url string) (string, bool) {
	if s.publicBase == "" || !strings.HasPrefix(url, s.publicBase+"/") {
		return "", false
	}
	return strings.TrimPrefix(url, s.publicBase+"/"), true
}
