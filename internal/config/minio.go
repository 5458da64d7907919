package config

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinIOClient connects to object storage and makes sure the image bucket
// exists and is publicly readable, since image URLs are handed to clients.
func NewMinIOClient(cfg *Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, err
		}
		slog.Info("created image bucket", "bucket", cfg.MinIOBucket)
	}

	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    []string{"s3:GetObject"},
				"Resource":  []string{"arn:aws:s3:::" + cfg.MinIOBucket + "/*"},
			},
		},
	}
	policyJSON, _ := json.Marshal(policy)
	err = client.SetBucketPolicy(ctx, cfg.MinIOBucket, string(policyJSON))
	if err != nil {
		slog.Warn("failed to set public read policy on image bucket", "bucket", cfg.MinIOBucket, "error", err)
	}

	return client, nil
}
