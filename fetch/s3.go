package fetch

import (
	"context"
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
	"github.com/openworld/assetcache/cache"
)

// S3 fetches assets from an S3 bucket. Objects are keyed the same way
// the disk tier names its files, <id>.<ext>, under an optional prefix.
// Do not change Bucket or Prefix concurrently with calls using the
// structure. The credentials in the session are used for all accesses.
type S3 struct {
	svc    *s3.S3
	Bucket string
	Prefix string
}

var _ cache.Fetcher = &S3{}

// NewS3 creates a fetcher reading the given bucket, prepending prefix
// to every key. A prefix lets one bucket hold more than one asset set.
func NewS3(bucket, prefix string, awsSession *session.Session) *S3 {
	return &S3{
		Bucket: bucket,
		Prefix: prefix,
		svc:    s3.New(awsSession),
	}
}

// FetchRemote downloads the object for the asset. A missing key comes
// back as ErrNotFound.
func (s *S3) FetchRemote(ctx context.Context, id uuid.UUID, kind asset.Kind, priority cache.Priority) ([]byte, error) {
	key := s.Prefix + id.String() + "." + kind.Ext()
	out, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			if aerr.Code() == s3.ErrCodeNoSuchKey {
				return nil, ErrNotFound
			}
		}
		return nil, err
	}
	defer out.Body.Close()
	return ioutil.ReadAll(out.Body)
}
