package sync

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const scheme = "s3"

// Location is an object address in a bucket.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return scheme + "://" + l.Bucket + "/" + l.Key
}

// IsRemote reports whether dest names an S3 object rather than a local path.
func IsRemote(dest string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(dest)), scheme+"://")
}

// ParseLocation parses an s3://bucket/key URL. A key ending in "/" is treated
// as a prefix and the base name of fallbackName is appended.
func ParseLocation(dest, fallbackName string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(dest))
	if err != nil {
		return Location{}, fmt.Errorf("invalid s3 location %q: %w", dest, err)
	}
	if !strings.EqualFold(u.Scheme, scheme) {
		return Location{}, fmt.Errorf("invalid s3 location %q: scheme must be s3", dest)
	}
	if u.Host == "" {
		return Location{}, fmt.Errorf("invalid s3 location %q: missing bucket", dest)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		if fallbackName == "" {
			return Location{}, fmt.Errorf("invalid s3 location %q: missing key", dest)
		}
		key += path.Base(fallbackName)
	}

	return Location{Bucket: u.Host, Key: key}, nil
}
