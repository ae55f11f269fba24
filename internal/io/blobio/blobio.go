package blobio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/gnames/dwcagent/internal/ent/blob"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type blobio struct {
	cfg    config.Config
	client *minio.Client
}

// New connects to the object storage.
func New(cfg config.Config) (blob.Store, error) {
	client, err := minio.New(cfg.MinioURI, &minio.Options{
		Creds: credentials.NewStaticV4(
			cfg.MinioAccessKey, cfg.MinioSecretKey, "",
		),
		Secure: true,
	})
	if err != nil {
		slog.Error("Cannot connect to object storage",
			"error", err, "host", cfg.MinioURI)
		return nil, err
	}
	return &blobio{cfg: cfg, client: client}, nil
}

func (b *blobio) PutSource(
	ctx context.Context, datasetID uint, name string, r io.Reader,
	size int64,
) error {
	key := b.sourceKey(datasetID, name)
	_, err := b.client.PutObject(
		ctx, b.cfg.MinioBucket, key, r, size,
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)
	if err != nil {
		slog.Error("Cannot upload source file",
			"error", err, "key", key)
		return err
	}
	return nil
}

func (b *blobio) GetSource(
	ctx context.Context, datasetID uint, name string,
) (io.ReadCloser, error) {
	key := b.sourceKey(datasetID, name)
	obj, err := b.client.GetObject(
		ctx, b.cfg.MinioBucket, key, minio.GetObjectOptions{},
	)
	if err != nil {
		slog.Error("Cannot read source file", "error", err, "key", key)
		return nil, err
	}
	return obj, nil
}

func (b *blobio) PutArchive(
	ctx context.Context, datasetID uint, r io.Reader, size int64,
) (string, error) {
	key := path.Join(
		b.cfg.MinioFolder, "archives",
		fmt.Sprintf("dataset-%d.zip", datasetID),
	)
	_, err := b.client.PutObject(
		ctx, b.cfg.MinioBucket, key, r, size,
		minio.PutObjectOptions{ContentType: "application/zip"},
	)
	if err != nil {
		slog.Error("Cannot upload archive", "error", err, "key", key)
		return "", err
	}
	url := fmt.Sprintf("https://%s/%s/%s",
		b.cfg.MinioURI, b.cfg.MinioBucket, key)
	slog.Info("Uploaded archive", "dataset", datasetID, "url", url)
	return url, nil
}

func (b *blobio) sourceKey(datasetID uint, name string) string {
	return path.Join(
		b.cfg.MinioFolder, "sources",
		fmt.Sprintf("%d", datasetID), name,
	)
}
