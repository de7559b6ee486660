package objectstore

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/daily-report/pkg/models/domain"
)

// fakeS3 serves the path style subset of the S3 API used by S3Store.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

type listContents struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	Size         int64  `xml:"Size"`
}

type listResult struct {
	XMLName     xml.Name       `xml:"ListBucketResult"`
	Name        string         `xml:"Name"`
	Prefix      string         `xml:"Prefix"`
	KeyCount    int            `xml:"KeyCount"`
	IsTruncated bool           `xml:"IsTruncated"`
	Contents    []listContents `xml:"Contents"`
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/"+f.bucket)
	key := strings.TrimPrefix(path, "/")

	switch {
	case r.Method == http.MethodGet && key == "" && r.URL.Query().Get("list-type") == "2":
		prefix := r.URL.Query().Get("prefix")
		res := listResult{Name: f.bucket, Prefix: prefix}
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			res.Contents = append(res.Contents, listContents{
				Key:          k,
				LastModified: "2026-10-18T09:00:00.000Z",
				Size:         int64(len(f.objects[k])),
			})
		}
		res.KeyCount = len(res.Contents)
		w.Header().Set("Content-Type", "application/xml")
		_ = xml.NewEncoder(w).Encode(res)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		_, _ = w.Write(body)
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3(t *testing.T) (*S3Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{bucket: "reports", objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3(context.Background(), domain.StorageProfile{
		Name:      "test",
		Backend:   domain.BackendS3,
		Bucket:    "reports",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	return s, fake
}

func TestS3Store_RoundTrip(t *testing.T) {
	s, fake := newTestS3(t)
	ctx := context.Background()
	key := "reports/sales/u-1/2026-10-18.pdf"

	require.NoError(t, s.Put(ctx, key, []byte("first"), "application/pdf"))
	require.NoError(t, s.Put(ctx, key, []byte("second"), "application/pdf"))
	assert.Len(t, fake.objects, 1, "put overwrites")

	data, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	objects, err := s.List(ctx, "reports/sales/u-1/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, key, objects[0].Key)
	assert.Equal(t, int64(6), objects[0].Size)
	assert.Equal(t, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), objects[0].LastModified.UTC())

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestS3Store_PresignGet(t *testing.T) {
	s, _ := newTestS3(t)

	url, err := s.PresignGet(context.Background(), "reports/sales/u-1/2026-10-18.pdf", 15*time.Minute)

	require.NoError(t, err)
	assert.Contains(t, url, "/reports/reports/sales/u-1/2026-10-18.pdf")
	assert.Contains(t, url, "X-Amz-Expires=900")
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, domain.StorageProfile{Name: "nobucket", Backend: domain.BackendS3})
	assert.ErrorContains(t, err, "no bucket")

	_, err = New(ctx, domain.StorageProfile{Name: "ftp", Backend: "ftp", Bucket: "b"})
	assert.ErrorContains(t, err, "unsupported storage backend")

	_, err = New(ctx, domain.StorageProfile{Name: "local-minio", Backend: domain.BackendMinio, Bucket: "b"})
	assert.ErrorContains(t, err, "no endpoint")
}
