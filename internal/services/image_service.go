// internal/services/image_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/kanistore/storefront/internal/config"
)

// ImageService turns stored image references into URLs a browser can load.
// References that already are URLs pass through untouched.
type ImageService struct {
	s3Client *s3.S3
	config   config.AWSConfig
}

func NewImageService(cfg config.AWSConfig) (*ImageService, error) {
	if cfg.AccessKeyID == "" || cfg.S3Bucket == "" {
		// Public bucket, CloudFront or plain URLs only
		return &ImageService{config: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &ImageService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

func (s *ImageService) ResolveURL(ref string) string {
	if ref == "" || isAbsoluteRef(ref) {
		return ref
	}

	key := strings.TrimLeft(ref, "/")

	if s.config.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.CloudFrontURL, "/"), key)
	}

	if s.s3Client != nil {
		url, err := s.presign(key)
		if err == nil {
			return url
		}
		logrus.WithError(err).WithField("key", key).Warn("Failed to presign image URL")
	}

	if s.config.S3Bucket != "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.S3Bucket, s.config.Region, key)
	}

	return ref
}

// ResolveAll never returns nil so JSON payloads carry [] instead of null.
func (s *ImageService) ResolveAll(refs pq.StringArray) pq.StringArray {
	out := make(pq.StringArray, 0, len(refs))
	for _, ref := range refs {
		if ref = strings.TrimSpace(ref); ref != "" {
			out = append(out, s.ResolveURL(ref))
		}
	}
	return out
}

func (s *ImageService) presign(key string) (string, error) {
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	})

	ttl := time.Duration(s.config.PresignTTL) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}

	url, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url, nil
}

func isAbsoluteRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "data:")
}
