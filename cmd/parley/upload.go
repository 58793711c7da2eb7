package main

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/errors"
	"github.com/parley-chat/parley/pkg/media"
)

func uploadCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Store a media file and print its hosted URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			store, err := newMediaStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			url, err := uploadFile(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to parley.json")

	return cmd
}

func uploadFile(ctx context.Context, store media.Store, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.New("E140").
			WithDetail(fmt.Sprintf("cannot read %s", path)).
			Wrap(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	url, err := store.Save(ctx, info.Name(), contentTypeOf(path), info.Size(), f)
	if err != nil {
		switch err {
		case media.ErrTooLarge:
			return "", errors.New("E131").Wrap(err)
		case media.ErrUnsupportedType:
			return "", errors.New("E130").Wrap(err)
		}
		return "", err
	}
	return url, nil
}

func newS3Store(ctx context.Context, cfg *config.Config) (media.Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.New("E102").
			WithDetail("AWS credentials could not be loaded").
			Wrap(err)
	}
	client := s3.NewFromConfig(awsCfg)
	return media.NewS3Store(client, cfg.Media.Bucket, cfg.Media.Prefix, cfg.Media.BaseURL, media.DefaultConfig()), nil
}
