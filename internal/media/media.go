// Package media stores uploaded cover images.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const DefaultFolder = "game_store/covers"

var ErrNotConfigured = errors.New("media storage is not configured")

type Result struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type Uploader interface {
	Upload(ctx context.Context, r io.Reader) (*Result, error)
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	Folder string
}

// NewCloudinary returns (nil, nil) when url is empty.
func NewCloudinary(url string) (*CloudinaryUploader, error) {
	if url == "" {
		return nil, nil
	}
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryUploader{cld: cld, Folder: DefaultFolder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader) (*Result, error) {
	if u == nil || u.cld == nil {
		return nil, ErrNotConfigured
	}
	res, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         u.Folder,
		UniqueFilename: boolPtr(true),
		ResourceType:   "image",
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return &Result{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func boolPtr(b bool) *bool { return &b }
