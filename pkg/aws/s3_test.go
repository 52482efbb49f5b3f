package aws

import (
	"context"
	"strings"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

func TestPresignPutURL(t *testing.T) {
	cfg := sdkaws.Config{
		Region:      "eu-west-2",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	}
	client := NewS3Client(cfg)

	url, headers, err := PresignPutURL(context.Background(), client,
		"aurelia-product-images", "products/AUR-001/ring.jpg", "image/jpeg", 15*time.Minute)
	if err != nil {
		t.Fatalf("PresignPutURL: %v", err)
	}

	if !strings.Contains(url, "aurelia-product-images") {
		t.Errorf("url missing bucket: %s", url)
	}
	if !strings.Contains(url, "products/AUR-001/ring.jpg") {
		t.Errorf("url missing key: %s", url)
	}
	if !strings.Contains(url, "X-Amz-Signature") {
		t.Errorf("url is not signed: %s", url)
	}
	if len(headers) == 0 {
		t.Error("expected signed headers for the upload request")
	}
}

func TestPresignPutURL_OmitsEmptyContentType(t *testing.T) {
	cfg := sdkaws.Config{
		Region:      "eu-west-2",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	}
	client := NewS3Client(cfg)

	url, _, err := PresignPutURL(context.Background(), client,
		"aurelia-product-images", "products/AUR-002/band.png", "", time.Minute)
	if err != nil {
		t.Fatalf("PresignPutURL: %v", err)
	}
	if url == "" {
		t.Fatal("expected a url")
	}
}
