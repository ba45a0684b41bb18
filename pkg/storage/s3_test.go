package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ---------------------------------------------------------------------------
// mock S3 client
// ---------------------------------------------------------------------------

// apiError implements smithy.APIError for test assertions.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var errNoSuchKey = &apiError{code: "NoSuchKey", msg: "no such key"}

// mockS3 is a thread-safe in-memory S3 backend for testing.
// ListObjectsV2 returns pageSize keys per page.
type mockS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int
	listed   int // ListObjectsV2 calls

	// Optional hooks to inject errors.
	getErr  error
	putErr  error
	listErr error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte), pageSize: 2}
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, errNoSuchKey
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listed++

	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	start := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		start, _ = strconv.Atoi(tok)
	}
	end := min(start+m.pageSize, len(keys))
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// S3Store tests
// ---------------------------------------------------------------------------

func newTestS3(t *testing.T, prefix string) (*S3Store, *mockS3) {
	t.Helper()
	mock := newMockS3()
	return NewS3(mock, "test-bucket", prefix), mock
}

func TestS3PutAndOpen(t *testing.T) {
	store, _ := newTestS3(t, "")
	ctx := context.Background()

	if err := store.Put(ctx, "clips/yes.pcm", strings.NewReader("pcm data")); err != nil {
		t.Fatal(err)
	}
	r, err := store.Open(ctx, "clips/yes.pcm")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, _ := io.ReadAll(r)
	if string(got) != "pcm data" {
		t.Fatalf("got %q, want %q", got, "pcm data")
	}
}

func TestS3OpenNotExist(t *testing.T) {
	store, _ := newTestS3(t, "")
	_, err := store.Open(context.Background(), "missing.wav")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestS3OpenOtherError(t *testing.T) {
	store, mock := newTestS3(t, "")
	mock.getErr = &apiError{code: "AccessDenied", msg: "denied"}
	_, err := store.Open(context.Background(), "x")
	if err == nil || errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected access error, got %v", err)
	}
}

func TestS3ListPaginates(t *testing.T) {
	store, mock := newTestS3(t, "kws/test")
	ctx := context.Background()
	for _, name := range []string{"c.wav", "a.pcm", "b.pcm", "sub/d.raw", "e.wav"} {
		store.Put(ctx, name, strings.NewReader("x"))
	}
	mock.objects["other/z.pcm"] = []byte("x")
	mock.objects["kws/test/dir/"] = nil

	got, err := store.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.pcm", "b.pcm", "c.wav", "e.wav", "sub/d.raw"}
	if !slices.Equal(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	if mock.listed < 3 {
		t.Errorf("ListObjectsV2 called %d times, expected pagination", mock.listed)
	}

	got, _ = store.List(ctx, "sub/")
	if !slices.Equal(got, []string{"sub/d.raw"}) {
		t.Errorf("List(sub/) = %v", got)
	}
}

func TestS3ListError(t *testing.T) {
	store, mock := newTestS3(t, "")
	mock.listErr = errors.New("network down")
	if _, err := store.List(context.Background(), ""); err == nil {
		t.Fatal("expected list error")
	}
}

func TestS3PutError(t *testing.T) {
	store, mock := newTestS3(t, "")
	mock.putErr = errors.New("quota")
	if err := store.Put(context.Background(), "a", strings.NewReader("x")); err == nil {
		t.Fatal("expected put error")
	}
}

func TestS3KeyPrefix(t *testing.T) {
	store, mock := newTestS3(t, "/clips/")
	store.Put(context.Background(), "yes.pcm", strings.NewReader("x"))
	if _, ok := mock.objects["clips/yes.pcm"]; !ok {
		t.Fatalf("objects = %v, want key clips/yes.pcm", mock.objects)
	}
}

func TestIsS3NotFound(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errNoSuchKey, true},
		{&apiError{code: "NotFound"}, true},
		{&apiError{code: "AccessDenied"}, false},
		{errors.New("plain"), false},
	}
	for _, tc := range cases {
		if got := isS3NotFound(tc.err); got != tc.want {
			t.Errorf("isS3NotFound(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestNewS3Client(t *testing.T) {
	c := NewS3Client(S3Options{Endpoint: "http://localhost:9000", PathStyle: true})
	o := c.Options()
	if o.Region != "us-east-1" || !o.UsePathStyle || aws.ToString(o.BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("options = region %q path-style %v endpoint %q", o.Region, o.UsePathStyle, aws.ToString(o.BaseEndpoint))
	}
}
