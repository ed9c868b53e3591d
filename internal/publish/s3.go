package publish

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"order-metrics/internal/config"
	"order-metrics/internal/render"
)

// ObjectPutter 是 s3.Client 中上传所需的子集。
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploaded 记录一个已上传的对象。
type Uploaded struct {
	View string `json:"view"`
	Key  string `json:"key"`
}

// Publisher 把渲染产物上传到 S3。
type Publisher struct {
	client  ObjectPutter
	bucket  string
	prefix  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewS3Client 按配置创建 S3 客户端，未配置静态密钥时使用默认凭证链。
func NewS3Client(ctx context.Context, cfg config.PublishConfig) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("publish: 加载 AWS 配置失败: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewPublisher 创建 Publisher。
func NewPublisher(client ObjectPutter, cfg config.PublishConfig, logger *zap.Logger) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("publish: client 不能为空")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("publish: bucket 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Publisher{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Publish 将 artifacts 上传到 <prefix>/<runID>/<文件名>，遇到第一个错误即返回。
func (p *Publisher) Publish(ctx context.Context, runID string, artifacts []render.Artifact) ([]Uploaded, error) {
	uploaded := make([]Uploaded, 0, len(artifacts))
	for _, a := range artifacts {
		key := p.objectKey(runID, filepath.Base(a.Path))
		if err := p.put(ctx, key, a.Path); err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, Uploaded{View: a.View, Key: key})
		p.logger.Debug("图表已上传", zap.String("bucket", p.bucket), zap.String("key", key))
	}
	return uploaded, nil
}

func (p *Publisher) objectKey(runID, name string) string {
	if p.prefix == "" {
		return path.Join(runID, name)
	}
	return path.Join(p.prefix, runID, name)
}

func (p *Publisher) put(ctx context.Context, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("publish: 打开 %q 失败: %w", file, err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(file))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	putCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err = p.client.PutObject(putCtx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("publish: 上传 %s 失败: %w", key, err)
	}
	return nil
}
