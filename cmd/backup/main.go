package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"recipe-box/internal/config"
	"recipe-box/internal/repository/sqlite"
	"recipe-box/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	fs := pflag.NewFlagSet("recipe-backup", pflag.ExitOnError)
	config.RegisterFlags(fs)
	list := fs.Bool("list", false, "list existing backups and exit")
	keep := fs.Int("keep", -1, "number of backups to retain (overrides storage.keep, 0 keeps all)")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	if *keep >= 0 {
		cfg.Storage.Keep = *keep
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	if *list {
		backups, err := storage.ListBackups(ctx, storageSvc, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
		if err != nil {
			logger.Fatalf("list backups: %v", err)
		}
		for _, b := range backups {
			modified := ""
			if b.LastModified != nil {
				modified = b.LastModified.UTC().Format(time.RFC3339)
			}
			fmt.Printf("%s\t%d\t%s\n", b.Key, b.Size, modified)
		}
		return
	}

	if err := backup(ctx, cfg, storageSvc, logger); err != nil {
		logger.Fatalf("backup: %v", err)
	}
}

func backup(ctx context.Context, cfg config.Config, svc storage.Service, logger *logrus.Logger) error {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tmp, err := os.MkdirTemp("", "recipe-backup-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	snapshot := filepath.Join(tmp, "recipes.db")
	if err := sqlite.Snapshot(ctx, db, snapshot); err != nil {
		return err
	}

	key, err := svc.UploadFile(ctx, snapshot, storage.UploadOptions{
		Bucket: cfg.Storage.Bucket,
		Key:    storage.BackupKey(cfg.Storage.KeyPrefix, time.Now()),
		ProgressCallback: func(done, total int64) {
			logger.Debugf("uploaded %d/%d bytes", done, total)
		},
	})
	if err != nil {
		return err
	}
	logger.Infof("uploaded s3://%s/%s", cfg.Storage.Bucket, key)

	removed, err := storage.PruneBackups(ctx, svc, cfg.Storage.Bucket, cfg.Storage.KeyPrefix, cfg.Storage.Keep)
	if err != nil {
		return err
	}
	for _, k := range removed {
		logger.Infof("pruned s3://%s/%s", cfg.Storage.Bucket, k)
	}
	return nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Debugf("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
