package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pestguard/pestguard-web/internal/config"
	"github.com/pestguard/pestguard-web/internal/domain/images"
	"github.com/pestguard/pestguard-web/internal/pkg/logger"
	"github.com/pestguard/pestguard-web/internal/pkg/storage"
)

const listTimeout = 2 * time.Minute

func main() {
	out := flag.String("out", "internal/domain/images/manifest.json", "manifest file to write, - for stdout")
	dryRun := flag.Bool("dry-run", false, "print a summary without writing")
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("bucket", cfg.R2BucketName).
		Str("prefix", cfg.ImagesPrefix).
		Msg("Starting imagesync")

	r2, err := storage.NewR2Storage(storage.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		AccessKeySecret: cfg.R2AccessKeySecret,
		BucketName:      cfg.R2BucketName,
		Endpoint:        cfg.R2Endpoint,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create R2 storage client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	manifest, err := buildManifest(ctx, r2, cfg.ImagesPrefix)
	if err != nil {
		log.Fatal().Err(err).Str("s3_code", storage.ErrorCode(err)).Msg("Failed to list pest images")
	}

	total := 0
	for folder, files := range manifest {
		total += len(files)
		log.Debug().Str("folder", folder).Int("images", len(files)).Msg("Folder indexed")
	}
	log.Info().Int("folders", len(manifest)).Int("images", total).Msg("Manifest built")

	if *dryRun {
		return
	}
	if err := writeManifest(*out, manifest); err != nil {
		log.Fatal().Err(err).Str("out", *out).Msg("Failed to write manifest")
	}
	log.Info().Str("out", *out).Msg("Manifest written")
}

func buildManifest(ctx context.Context, lister storage.Lister, prefix string) (images.Manifest, error) {
	objects, err := lister.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		if obj.Size == 0 {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return images.ManifestFromKeys(keys, prefix), nil
}

// writeManifest replaces the target atomically so a failed run leaves the old file intact.
func writeManifest(out string, manifest images.Manifest) error {
	var buf bytes.Buffer
	if err := manifest.Encode(&buf); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if out == "-" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(out), ".manifest-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), out)
}
