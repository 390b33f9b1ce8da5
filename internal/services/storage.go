package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sirupsen/logrus"
)

const maxDocumentSize = 10 << 20

type StorageConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UploadDir       string
	BaseURL         string
}

// Storage keeps uploaded documents in S3 when AWS is configured and on the
// local disk otherwise.
type Storage struct {
	uploader  *s3manager.Uploader
	bucket    string
	region    string
	uploadDir string
	baseURL   string
}

// NewStorage initializes either S3 or local storage based on configuration
func NewStorage(cfg StorageConfig, log *logrus.Logger) (*Storage, error) {
	if cfg.Region != "" && cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" && cfg.Bucket != "" {
		sess, err := session.NewSession(&aws.Config{
			Region:      aws.String(cfg.Region),
			Credentials: credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}

		log.WithField("bucket", cfg.Bucket).Info("S3 document storage initialized")
		return &Storage{
			uploader: s3manager.NewUploader(sess),
			bucket:   cfg.Bucket,
			region:   cfg.Region,
		}, nil
	}

	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		uploadDir = "/app/uploads"
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	log.WithField("dir", uploadDir).Warn("AWS S3 not configured, using local document storage")
	return &Storage{uploadDir: uploadDir, baseURL: baseURL}, nil
}

func (s *Storage) UsingS3() bool {
	return s.uploader != nil
}

// UploadDir is the local directory served under /uploads, empty for S3.
func (s *Storage) UploadDir() string {
	return s.uploadDir
}

// Upload stores the file under folder and returns its public URL.
func (s *Storage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > maxDocumentSize {
		return "", fmt.Errorf("file %s exceeds %d bytes", file.Filename, maxDocumentSize)
	}
	if s.UsingS3() {
		return s.uploadToS3(ctx, file, folder)
	}
	return s.uploadLocally(file, folder)
}

func objectName(file *multipart.FileHeader) string {
	return fmt.Sprintf("%d%s", time.Now().UnixNano(), strings.ToLower(filepath.Ext(file.Filename)))
}

func (s *Storage) uploadToS3(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, src); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := folder + "/" + objectName(file)
	_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buffer.Bytes()),
		ContentType: aws.String(http.DetectContentType(buffer.Bytes())),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *Storage) uploadLocally(file *multipart.FileHeader, folder string) (string, error) {
	folderPath := filepath.Join(s.uploadDir, folder)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	name := objectName(file)
	dst, err := os.Create(filepath.Join(folderPath, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, folder, name), nil
}
