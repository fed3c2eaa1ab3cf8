// Package storage uploads proof-of-delivery photos to S3 and hands back the
// public URL persisted on the request.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type S3Storage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	breaker       *gobreaker.CircuitBreaker
}

func NewS3Storage(client *s3.Client, bucket, publicBaseURL string, logger *logrus.Logger) *S3Storage {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "S3-Proofs",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("storage circuit breaker state change")
		},
	})

	return &S3Storage{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		breaker:       breaker,
	}
}

// Upload stores the object under path and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, path, contentType string, body io.Reader) (string, error) {

	_, err := s.breaker.Execute(func() (any, error) {
		return s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(path),
			Body:        body,
			ContentType: aws.String(contentType),
		})
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}

	return s.PublicURL(path), nil
}

func (s *S3Storage) PublicURL(path string) string {
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.publicBaseURL, path)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, path)
}
