package fetch

import (
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/pkg/errors"

	"github.com/openworld/assetcache/cache"
)

// splitBucketPrefix takes a path and separates the bucket name from a
// prefix, if any. The prefix returned is either empty or ends with a
// slash "/".
//
// examples:
//
//	"" -> ("", "")
//	"bucket" -> ("bucket", "")
//	"bucket/and/a/prefix" -> ("bucket", "and/a/prefix/")
func splitBucketPrefix(location string) (bucket, prefix string) {
	if location == "" {
		return
	}
	location = strings.TrimPrefix(location, "/")
	v := strings.SplitN(location, "/", 2)
	bucket = v[0]
	if len(v) > 1 {
		prefix = path.Clean(v[1])
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}
	return
}

// ParseOrigin creates the appropriate fetcher for an origin location.
// It understands "http:", "https:", and "s3:" schemes; an S3 origin
// looks like "s3://bucket/prefix" and uses the usual AWS credential
// chain.
func ParseOrigin(origin string) (cache.Fetcher, error) {
	if origin == "" {
		return nil, errors.New("no origin configured")
	}
	u, err := url.Parse(origin)
	if err != nil {
		return nil, errors.Wrap(err, "parsing origin")
	}
	switch u.Scheme {
	case "http", "https":
		return NewHTTP(strings.TrimSuffix(origin, "/")), nil
	case "s3":
		bucket, prefix := splitBucketPrefix(u.Host + u.Path)
		s, err := session.NewSession()
		if err != nil {
			return nil, errors.Wrap(err, "creating AWS session")
		}
		return NewS3(bucket, prefix, s), nil
	}
	return nil, errors.Errorf("unknown origin scheme %q", u.Scheme)
}
