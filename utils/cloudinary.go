package utils

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/raghav0014/AI-Feedback/errs"
)

// CloudinaryUploader stores review media on Cloudinary.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
}

// NewCloudinaryUploader returns nil when credentials are not configured.
func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, nil
	}
	client, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, errs.Internal("failed to initialize media storage", err)
	}
	return &CloudinaryUploader{client: client}, nil
}

// Upload pushes file contents and returns the public URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, publicID, folder string) (string, error) {
	result, err := u.client.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID: publicID,
		Folder:   folder,
	})
	if err != nil {
		return "", errs.Upstream("media upload failed", err)
	}
	return result.SecureURL, nil
}
