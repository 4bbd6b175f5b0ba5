package upload

import (
	"context"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"ecommerce-backend/internal/apperrors"
)

// Uploader pushes a binary stream to the asset host and returns its
// public URL.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, publicID string) (url string, err error)
}

// CloudinaryUploader stores product images on Cloudinary, keyed by
// product id so re-uploads overwrite the previous asset.
type CloudinaryUploader struct {
	client  *cloudinary.Cloudinary
	timeout time.Duration
}

func NewCloudinaryUploader(cloudinaryURL string, timeout time.Duration) (*CloudinaryUploader, error) {
	client, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CloudinaryUploader{client: client, timeout: timeout}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader, publicID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	overwrite := true
	result, err := u.client.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:  publicID,
		Overwrite: &overwrite,
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindIntegration, "image upload failed", err)
	}
	return result.SecureURL, nil
}
