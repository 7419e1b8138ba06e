package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"localMarketplace/internal/config"
)

var (
	ErrUnsupportedType = errors.New("неподдерживаемый тип файла")
	ErrForeignObject   = errors.New("объект не принадлежит хранилищу")
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Object prefixes by owner kind.
const (
	PrefixListings    = "listings"
	PrefixAvatars     = "avatars"
	PrefixAttachments = "attachments"
)

type Storage interface {
	UploadImage(ctx context.Context, prefix string, ownerID int64, fileName string, file io.Reader, size int64) (string, string, error)
	DeleteImage(ctx context.Context, objectName string) error
	ObjectNameFromURL(imageURL string) (string, error)
}

type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOClient connects to MinIO and creates the bucket when it is missing.
func NewMinIOClient(ctx context.Context, cfg config.MinIO) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания bucket %s: %w", cfg.BucketName, err)
		}
		log.Printf("Создан bucket MinIO: %s", cfg.BucketName)
	}

	return &MinIOClient{
		client:    client,
		bucket:    cfg.BucketName,
		publicURL: publicBaseURL(cfg),
	}, nil
}

func publicBaseURL(cfg config.MinIO) string {
	if cfg.PublicURL != "" {
		return strings.TrimSuffix(cfg.PublicURL, "/")
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
}

// ContentType returns the MIME type for an allowed image extension.
func ContentType(fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	return contentType, nil
}

// ObjectName builds <prefix>/<ownerID>/<yyyy>/<mm>/<uuid><ext>.
// OwnerPrefix is the key prefix every object of one owner starts with.
func OwnerPrefix(prefix string, ownerID int64) string {
	return fmt.Sprintf("%s/%d/", prefix, ownerID)
}

func ObjectName(prefix string, ownerID int64, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%d/%d/%02d/%s%s",
		prefix,
		ownerID,
		now.Year(),
		now.Month(),
		uuid.New().String(),
		strings.ToLower(filepath.Ext(fileName)))
}

func (m *MinIOClient) objectURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", m.publicURL, m.bucket, objectName)
}

func (m *MinIOClient) UploadImage(ctx context.Context, prefix string, ownerID int64, fileName string, file io.Reader, size int64) (string, string, error) {
	contentType, err := ContentType(fileName)
	if err != nil {
		return "", "", err
	}

	now := time.Now()
	objectName := ObjectName(prefix, ownerID, fileName, now)

	_, err = m.client.PutObject(ctx, m.bucket, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": fileName,
				"owner-id":          strconv.FormatInt(ownerID, 10),
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", "", fmt.Errorf("ошибка загрузки в MinIO: %w", err)
	}

	return objectName, m.objectURL(objectName), nil
}

func (m *MinIOClient) DeleteImage(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("ошибка удаления из MinIO: %w", err)
	}
	return nil
}

func (m *MinIOClient) ObjectNameFromURL(imageURL string) (string, error) {
	return objectNameFromURL(m.publicURL, m.bucket, imageURL)
}

func objectNameFromURL(publicURL, bucket, imageURL string) (string, error) {
	base, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("некорректный адрес хранилища: %w", err)
	}

	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("некорректный адрес изображения: %w", err)
	}

	if parsed.Host != base.Host {
		return "", fmt.Errorf("%w: %s", ErrForeignObject, imageURL)
	}

	prefix := strings.TrimSuffix(base.Path, "/") + "/" + bucket + "/"
	if !strings.HasPrefix(parsed.Path, prefix) || len(parsed.Path) == len(prefix) {
		return "", fmt.Errorf("%w: %s", ErrForeignObject, imageURL)
	}

	objectName := strings.TrimPrefix(parsed.Path, prefix)
	if path.Clean("/"+objectName) != "/"+objectName {
		return "", fmt.Errorf("%w: %s", ErrForeignObject, imageURL)
	}

	return objectName, nil
}
