package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PhotoConfig holds object storage settings for profile photos
type PhotoConfig struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
	PublicURL string
	URLExpiry time.Duration
}

// objectHeader reads object metadata
type objectHeader interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// PhotoService issues pre-signed upload URLs for profile photos and records
// a photo on the profile once its upload has landed
type PhotoService struct {
	users     repository.UserStore
	objects   objectHeader
	presign   *s3.PresignClient
	bucket    string
	publicURL string
	expiry    time.Duration
}

// NewPhotoService creates a new photo service
func NewPhotoService(ctx context.Context, users repository.UserStore, cfg PhotoConfig) (*PhotoService, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &PhotoService{
		users:     users,
		objects:   client,
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		expiry:    cfg.URLExpiry,
	}, nil
}

// UploadResponse represents the response with pre-signed URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	PhotoURL  string `json:"photo_url"`
	ExpiresIn int    `json:"expires_in"`
}

// PhotoKey builds the object key of a user's profile photo
func PhotoKey(userID, contentType string) (string, error) {
	ext, ok := allowedPhotoTypes[contentType]
	if !ok {
		return "", apperr.Validation("Unsupported image type")
	}
	return path.Join("profiles", userID, uuid.New().String()+ext), nil
}

// GetUploadURL signs an upload for a new profile photo. The profile keeps its
// current photo until ConfirmProfilePhoto is called for the new one.
func (s *PhotoService) GetUploadURL(ctx context.Context, userID, contentType string) (*UploadResponse, error) {
	key, err := PhotoKey(userID, contentType)
	if err != nil {
		return nil, err
	}

	request, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.expiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		PhotoURL:  s.publicURL + "/" + key,
		ExpiresIn: int(s.expiry.Seconds()),
	}, nil
}

// ConfirmProfilePhoto points userID's profile at photoURL once the object
// exists in the bucket. Only URLs under the user's own key prefix are accepted.
func (s *PhotoService) ConfirmProfilePhoto(ctx context.Context, userID, photoURL string) error {
	key, ok := strings.CutPrefix(photoURL, s.publicURL+"/")
	if !ok || path.Clean(key) != key || !strings.HasPrefix(key, path.Join("profiles", userID)+"/") {
		return apperr.Validation("Invalid photo URL")
	}

	_, err := s.objects.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var status interface{ HTTPStatusCode() int }
		if errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound {
			return apperr.Validation("Photo has not been uploaded")
		}
		return fmt.Errorf("failed to check uploaded photo: %w", err)
	}

	return s.users.SetProfilePhoto(ctx, userID, photoURL)
}
