package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/apresai/personaswap/internal/config"
)

// ErrExportDisabled is returned by OpenExporter when no bucket is configured.
var ErrExportDisabled = errors.New("history export disabled: no S3 bucket configured")

// Open builds the configured backend.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	h := cfg.History
	switch h.Backend {
	case config.BackendMemory:
		return NewMemory(h.Capacity), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: h.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", h.RedisAddr, err)
		}
		return NewRedis(client, h.RedisKey, h.Capacity), nil
	case config.BackendDynamoDB:
		awsCfg, err := loadAWS(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		return NewDynamo(dynamodb.NewFromConfig(awsCfg), h.DynamoDBTable, h.Capacity), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", h.Backend)
	}
}

// OpenExporter builds an S3 exporter from cfg.
func OpenExporter(ctx context.Context, cfg config.Config) (*Exporter, error) {
	if cfg.Export.S3Bucket == "" {
		return nil, ErrExportDisabled
	}
	awsCfg, err := loadAWS(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, err
	}
	return NewExporter(s3.NewFromConfig(awsCfg), cfg.Export.S3Bucket, cfg.Export.S3Prefix), nil
}

func loadAWS(ctx context.Context, region string) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)
	return awsCfg, nil
}
