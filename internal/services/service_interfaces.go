package services

import (
	"context"
)

// ImageStyler is the external generator collaborator. One call, no retries.
type ImageStyler interface {
	StyleImage(ctx context.Context, imageData []byte, mimeType, styleTag string) ([]byte, string, error)
}

type QuotaManager interface {
	CheckLimit(identityKey string, limit int) (*QuotaStatus, error)
	RecordUsage(identityKey string) error
}
