package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/aws/smithy-go"
)

func TestDescribeErrorKeepsS3Code(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}
	err := describeError("list objects in pests", apiErr)

	if !strings.Contains(err.Error(), "NoSuchBucket") {
		t.Fatalf("expected code in message, got %q", err.Error())
	}
	if ErrorCode(err) != "NoSuchBucket" {
		t.Fatalf("expected code to survive wrapping, got %q", ErrorCode(err))
	}
	if !errors.Is(err, apiErr) {
		t.Fatal("expected original error to be wrapped")
	}
}

func TestDescribeErrorPlain(t *testing.T) {
	err := describeError("list", errors.New("dial tcp: refused"))
	if ErrorCode(err) != "" || err.Error() != "list: dial tcp: refused" {
		t.Fatalf("unexpected error %q", err.Error())
	}
}

func TestNewR2StorageRequiresBucket(t *testing.T) {
	if _, err := NewR2Storage(R2Config{AccountID: "acc"}); err == nil {
		t.Fatal("expected error without bucket")
	}
	if _, err := NewR2Storage(R2Config{BucketName: "pests"}); err == nil {
		t.Fatal("expected error without account or endpoint")
	}
}
