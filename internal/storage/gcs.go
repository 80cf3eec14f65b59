// Package storage resolves stored object names into URLs clients can fetch.
package storage

import (
	"fmt"
	"time"

	gcs "cloud.google.com/go/storage"
)

// URLSigner turns an object name into a fetchable URL.
type URLSigner interface {
	SignedURL(object string) (string, error)
}

// GCSSigner issues V4 signed read URLs for a Google Cloud Storage bucket.
// Signing is purely local; no network round trip.
type GCSSigner struct {
	bucket     string
	accessID   string
	privateKey []byte
	ttl        time.Duration
}

// NewGCSSigner creates a signer for the bucket using a service account's
// access id and PEM private key.
func NewGCSSigner(bucket, accessID string, privateKey []byte, ttl time.Duration) *GCSSigner {
	return &GCSSigner{bucket: bucket, accessID: accessID, privateKey: privateKey, ttl: ttl}
}

func (s *GCSSigner) SignedURL(object string) (string, error) {
	url, err := gcs.SignedURL(s.bucket, object, &gcs.SignedURLOptions{
		GoogleAccessID: s.accessID,
		PrivateKey:     s.privateKey,
		Method:         "GET",
		Expires:        time.Now().Add(s.ttl),
		Scheme:         gcs.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("sign url for %q: %w", object, err)
	}
	return url, nil
}

// PassthroughSigner returns object names unchanged. Used in development and
// tests where no bucket is configured.
type PassthroughSigner struct{}

func (PassthroughSigner) SignedURL(object string) (string, error) {
	return object, nil
}
