package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sdko-org/graph-proxy/internal/config"
	"github.com/sdko-org/graph-proxy/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// S3Storage keeps downloaded file bytes in S3 and indexes them in Postgres.
type S3Storage struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	cfg      *config.Config
	db       *gorm.DB
	log      *logrus.Entry
}

func NewS3Storage(logger *logrus.Logger, cfg *config.Config, db *gorm.DB) *S3Storage {
	awsConfig := &aws.Config{
		Region:           aws.String(cfg.S3Region),
		Credentials:      credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	}

	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
	}

	sess := session.Must(session.NewSession(awsConfig))

	return &S3Storage{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		cfg:      cfg,
		db:       db,
		log:      logger.WithField("component", "s3_storage"),
	}
}

func (s *S3Storage) Get(ctx context.Context, key string) (*Object, error) {
	var entry models.DownloadCache
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error; err != nil {
		return nil, err
	}

	if time.Now().After(entry.ExpiresAt) {
		if err := s.Delete(ctx, key); err != nil {
			s.log.WithError(err).Warn("Failed to delete expired cache entry")
		}
		return nil, fmt.Errorf("cache expired")
	}

	resp, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := s.updateLastAccess(ctx, key); err != nil {
		s.log.WithError(err).Warn("Failed to update last access")
	}

	return &Object{
		Content:     content,
		ContentType: aws.StringValue(resp.ContentType),
		Filename:    aws.StringValue(resp.Metadata["Filename"]),
	}, nil
}

func (s *S3Storage) Put(ctx context.Context, key string, obj *Object, itemID, eTag string, ttl time.Duration) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(obj.Content),
		ContentType: aws.String(obj.ContentType),
		Metadata: map[string]*string{
			"Filename": aws.String(obj.Filename),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}

	entry := models.DownloadCache{
		Key:        key,
		ItemID:     itemID,
		ETag:       eTag,
		SizeBytes:  int64(len(obj.Content)),
		StoredAt:   time.Now(),
		ExpiresAt:  time.Now().Add(ttl),
		LastAccess: time.Now(),
	}

	if err := s.db.WithContext(ctx).Save(&entry).Error; err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}

	return nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.S3Bucket),
		Key:    aws.String(key),
	})

	if dbErr := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.DownloadCache{}).Error; dbErr != nil {
		s.log.WithError(dbErr).Warn("Failed to delete cache entry from DB")
	}

	return err
}

func (s *S3Storage) updateLastAccess(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Model(&models.DownloadCache{}).
		Where("key = ?", key).
		Update("last_access", time.Now()).Error
}
