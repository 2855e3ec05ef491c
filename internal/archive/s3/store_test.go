package s3

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"sheetcurator/pkg/domain"
)

type mockPutter struct {
	inputs []*awss3.PutObjectInput
	fail   error
}

func (m *mockPutter) PutObject(_ context.Context, params *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	m.inputs = append(m.inputs, params)
	return &awss3.PutObjectOutput{}, nil
}

func TestPutUploadsJSONReport(t *testing.T) {
	mock := &mockPutter{}
	store := &Store{client: mock, bucket: "reports"}
	result := domain.ValidationResult{
		Successful: false,
		ErrorCode:  domain.CodeValidationError,
		Errors: []domain.SheetError{{
			EntityType: domain.EntityDonor,
			Message:    "Duplicate identifier d-1",
		}},
	}
	location, err := store.Put(context.Background(), "runs/abc.json", result)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if location != "s3://reports/runs/abc.json" {
		t.Fatalf("location = %q", location)
	}
	if len(mock.inputs) != 1 {
		t.Fatalf("inputs = %d, want 1", len(mock.inputs))
	}
	input := mock.inputs[0]
	if *input.Bucket != "reports" || *input.Key != "runs/abc.json" {
		t.Fatalf("bucket/key = %s/%s", *input.Bucket, *input.Key)
	}
	if *input.ContentType != "application/json" {
		t.Fatalf("content type = %s", *input.ContentType)
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded domain.ValidationResult
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.ErrorCode != domain.CodeValidationError || len(decoded.Errors) != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestPutFailure(t *testing.T) {
	boom := errors.New("access denied")
	store := &Store{client: &mockPutter{fail: boom}, bucket: "reports"}
	if _, err := store.Put(context.Background(), "k", domain.ValidationResult{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped upload failure", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected missing-bucket error")
	}
}
