package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"order-metrics/internal/config"
	"order-metrics/internal/render"
)

type fakePutter struct {
	keys   []string
	bodies []string
	types  []string
	err    error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.keys = append(f.keys, aws.ToString(params.Key))
	f.bodies = append(f.bodies, string(body))
	f.types = append(f.types, aws.ToString(params.ContentType))
	return &s3.PutObjectOutput{}, nil
}

func writeArtifacts(t *testing.T) []render.Artifact {
	t.Helper()
	dir := t.TempDir()
	var out []render.Artifact
	for _, view := range []string{"distribution", "histogram"} {
		path := filepath.Join(dir, view+".svg")
		if err := os.WriteFile(path, []byte("<svg>"+view+"</svg>"), 0o644); err != nil {
			t.Fatalf("write artifact: %v", err)
		}
		out = append(out, render.Artifact{View: view, Path: path})
	}
	return out
}

func TestPublisher_UploadsUnderRunPrefix(t *testing.T) {
	putter := &fakePutter{}
	pub, err := NewPublisher(putter, config.PublishConfig{Bucket: "charts", Prefix: "/order-metrics/"}, nil)
	if err != nil {
		t.Fatalf("NewPublisher returned error: %v", err)
	}

	uploaded, err := pub.Publish(context.Background(), "run-1", writeArtifacts(t))
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if len(uploaded) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(uploaded))
	}

	wantKeys := []string{"order-metrics/run-1/distribution.svg", "order-metrics/run-1/histogram.svg"}
	for i, key := range wantKeys {
		if putter.keys[i] != key || uploaded[i].Key != key {
			t.Errorf("upload %d: got key %s want %s", i, putter.keys[i], key)
		}
		if putter.types[i] != "image/svg+xml" {
			t.Errorf("upload %d: unexpected content type %s", i, putter.types[i])
		}
	}
	if putter.bodies[1] != "<svg>histogram</svg>" {
		t.Errorf("unexpected body: %s", putter.bodies[1])
	}
}

func TestPublisher_StopsOnError(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	pub, err := NewPublisher(putter, config.PublishConfig{Bucket: "charts"}, nil)
	if err != nil {
		t.Fatalf("NewPublisher returned error: %v", err)
	}

	uploaded, err := pub.Publish(context.Background(), "run-2", writeArtifacts(t))
	if err == nil || len(uploaded) != 0 {
		t.Fatalf("expected failure before any upload, got %v %v", uploaded, err)
	}
}

func TestNewPublisher_Validation(t *testing.T) {
	if _, err := NewPublisher(nil, config.PublishConfig{Bucket: "charts"}, nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := NewPublisher(&fakePutter{}, config.PublishConfig{}, nil); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}
