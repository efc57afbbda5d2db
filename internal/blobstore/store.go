// Package blobstore uploads episode audio to object storage and derives the
// object keys and metadata the episode flow needs.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	storage "github.com/supabase-community/storage-go"
)

// ErrUpload wraps every failure coming back from the storage backend.
var ErrUpload = errors.New("audio storage failure")

const (
	AudioContentType = "audio/mpeg"
	audioPrefix      = "podcasts/episodes"
	keyTimeLayout    = "20060102150405"
	publicPathPrefix = "/storage/v1/object/public/"
)

// AudioStore is what the episode service needs from object storage.
type AudioStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (publicURL string, err error)
	Delete(ctx context.Context, publicURL string) error
}

// AudioKey builds podcasts/episodes/<slug>_<yyyymmddHHMMSS><ext> from the
// uploaded filename.
func AudioKey(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".mp3"
	}
	name := slug.Make(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if name == "" {
		name = "episode"
	}
	return fmt.Sprintf("%s/%s_%s%s", audioPrefix, name, now.UTC().Format(keyTimeLayout), ext)
}

// bucketClient is the slice of the storage SDK the store calls.
type bucketClient interface {
	upload(bucket, path string, body io.Reader, contentType string) error
	remove(bucket string, paths []string) error
}

type supabaseBucket struct {
	client *storage.Client
}

func (b supabaseBucket) upload(bucket, path string, body io.Reader, contentType string) error {
	_, err := b.client.UploadFile(bucket, path, body, storage.FileOptions{ContentType: &contentType})
	return err
}

func (b supabaseBucket) remove(bucket string, paths []string) error {
	_, err := b.client.RemoveFile(bucket, paths)
	return err
}

// SupabaseAudioStore stores objects in one Supabase Storage bucket and hands
// out public URLs.
type SupabaseAudioStore struct {
	baseURL string
	bucket  string
	client  bucketClient
}

func NewSupabaseAudioStore(baseURL, apiKey, bucket string) *SupabaseAudioStore {
	baseURL = strings.TrimRight(baseURL, "/")
	return &SupabaseAudioStore{
		baseURL: baseURL,
		bucket:  bucket,
		client:  supabaseBucket{client: storage.NewClient(baseURL+"/storage/v1", apiKey, nil)},
	}
}

// PublicURL is the anonymous download URL for key.
func (s *SupabaseAudioStore) PublicURL(key string) string {
	return s.baseURL + publicPathPrefix + s.bucket + "/" + key
}

func (s *SupabaseAudioStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = AudioContentType
	}
	if err := s.client.upload(s.bucket, key, body, contentType); err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", ErrUpload, key, err)
	}
	return s.PublicURL(key), nil
}

// Delete removes the object behind a URL this store produced. URLs pointing
// elsewhere (seeded data, other buckets) are ignored.
func (s *SupabaseAudioStore) Delete(ctx context.Context, publicURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bucket, key, ok := ParsePublicURL(publicURL)
	if !ok || bucket != s.bucket {
		return nil
	}
	if err := s.client.remove(bucket, []string{key}); err != nil {
		return fmt.Errorf("%w: remove %s: %v", ErrUpload, key, err)
	}
	return nil
}

// ParsePublicURL extracts bucket and object key from a
// .../storage/v1/object/public/<bucket>/<key> URL.
func ParsePublicURL(publicURL string) (bucket, key string, ok bool) {
	idx := strings.Index(publicURL, publicPathPrefix)
	if idx == -1 {
		return "", "", false
	}
	rest := publicURL[idx+len(publicPathPrefix):]
	if q := strings.IndexAny(rest, "?#"); q != -1 {
		rest = rest[:q]
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	key = parts[1]
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	return parts[0], key, true
}
