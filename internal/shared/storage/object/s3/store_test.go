package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resolution-backend/internal/shared/storage/object"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "documents/res.md", want: "documents/res.md"},
		{name: "simple prefix", prefix: "root", key: "documents/res.md", want: "root/documents/res.md"},
		{name: "prefix trailing slash", prefix: "root/", key: "documents/res.md", want: "root/documents/res.md"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/documents/res.md", want: "root/documents/res.md"},
		{name: "nested prefix", prefix: "root/sub", key: "register/counters.json", want: "root/sub/register/counters.json"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestPutInputEncryption(t *testing.T) {
	t.Parallel()

	plain := &Store{bucket: "b"}
	in := plain.putInput("k", "text/markdown", strings.NewReader(""))
	if in.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256, got %q", in.ServerSideEncryption)
	}
	if in.SSEKMSKeyId != nil {
		t.Fatalf("expected no kms key")
	}

	kms := &Store{bucket: "b", kmsKeyID: "key-1"}
	in = kms.putInput("k", "application/json", strings.NewReader(""))
	if in.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms {
		t.Fatalf("expected aws:kms, got %q", in.ServerSideEncryption)
	}
	if aws.ToString(in.SSEKMSKeyId) != "key-1" {
		t.Fatalf("kms key = %q", aws.ToString(in.SSEKMSKeyId))
	}
	if aws.ToString(in.ContentType) != "application/json" {
		t.Fatalf("content type = %q", aws.ToString(in.ContentType))
	}
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestSaveAndOpenThroughPrefix(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	store := &Store{client: fake, bucket: "docs", prefix: "prod"}
	ctx := context.Background()

	key, size, mimeType, err := store.Save(ctx, "shareholder_distribution", "SHOLD-2025-01-RES-DIST Distribution.md", strings.NewReader("# T\n\nbody"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(key, "shareholder_distribution-") || !strings.HasSuffix(key, "_SHOLD-2025-01-RES-DIST Distribution.md") {
		t.Fatalf("unexpected key %q", key)
	}
	if size != 9 || mimeType != "text/markdown; charset=utf-8" {
		t.Fatalf("size=%d mime=%q", size, mimeType)
	}
	if fake.types["prod/"+key] != mimeType {
		t.Fatalf("object not stored under prefix: %v", fake.types)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "# T\n\nbody" {
		t.Fatalf("body = %q", got)
	}
}

func TestOpenMissingIsNotFound(t *testing.T) {
	t.Parallel()

	store := &Store{client: newFakeS3(), bucket: "docs"}
	_, err := store.Open(context.Background(), "register/resolution_register.json")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveWithKeyCountsBytes(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	store := &Store{client: fake, bucket: "docs"}
	n, err := store.SaveWithKey(context.Background(), "register/resolution_register.json", "application/json", strings.NewReader(`{"entries":[]}`))
	if err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}
	if n != 14 || string(fake.objects["register/resolution_register.json"]) != `{"entries":[]}` {
		t.Fatalf("unexpected write n=%d objects=%v", n, fake.objects)
	}
}
