package services

import (
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanistore/storefront/internal/config"
)

func TestImageService_ResolveURL(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      config.AWSConfig
		ref      string
		expected string
	}{
		{
			name:     "absolute url passes through",
			cfg:      config.AWSConfig{CloudFrontURL: "https://cdn.example.com"},
			ref:      "https://res.cloudinary.com/x/oil.png",
			expected: "https://res.cloudinary.com/x/oil.png",
		},
		{
			name:     "leading slash resolves through cloudfront",
			cfg:      config.AWSConfig{CloudFrontURL: "https://cdn.example.com"},
			ref:      "/products/x.png",
			expected: "https://cdn.example.com/products/x.png",
		},
		{
			name:     "leading slash resolves through public bucket",
			cfg:      config.AWSConfig{Region: "ap-south-1", S3Bucket: "kani-images"},
			ref:      "/products/x.png",
			expected: "https://kani-images.s3.ap-south-1.amazonaws.com/products/x.png",
		},
		{
			name:     "cloudfront",
			cfg:      config.AWSConfig{CloudFrontURL: "https://cdn.example.com/"},
			ref:      "products/oil.png",
			expected: "https://cdn.example.com/products/oil.png",
		},
		{
			name:     "public bucket",
			cfg:      config.AWSConfig{Region: "ap-south-1", S3Bucket: "kani-images"},
			ref:      "products/oil.png",
			expected: "https://kani-images.s3.ap-south-1.amazonaws.com/products/oil.png",
		},
		{
			name:     "nothing configured",
			cfg:      config.AWSConfig{},
			ref:      "products/oil.png",
			expected: "products/oil.png",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, err := NewImageService(tc.cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, svc.ResolveURL(tc.ref))
		})
	}
}

func TestImageService_Presign(t *testing.T) {
	svc, err := NewImageService(config.AWSConfig{
		Region:          "ap-south-1",
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		S3Bucket:        "kani-images",
		PresignTTL:      15,
	})
	require.NoError(t, err)

	url := svc.ResolveURL("products/oil.png")
	assert.True(t, strings.HasPrefix(url, "https://kani-images.s3.ap-south-1.amazonaws.com/products/oil.png?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=900")
}

func TestImageService_ResolveAll(t *testing.T) {
	svc, err := NewImageService(config.AWSConfig{CloudFrontURL: "https://cdn.example.com"})
	require.NoError(t, err)

	assert.Equal(t, pq.StringArray{}, svc.ResolveAll(nil))
	assert.Equal(t, pq.StringArray{"https://cdn.example.com/a.png"}, svc.ResolveAll(pq.StringArray{"", " a.png "}))
}
