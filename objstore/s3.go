package objstore

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putObjectAPI is the part of the S3 client the uploader needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Client uploads analysis artifacts to a bucket under a key prefix.
type S3Client struct {
	client     putObjectAPI
	bucketName string
	prefix     string
}

// NewS3Client builds a client from the default AWS credential chain.
func NewS3Client(ctx context.Context, region, bucketName, prefix string) (*S3Client, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newS3Client(s3.NewFromConfig(cfg), bucketName, prefix), nil
}

func newS3Client(api putObjectAPI, bucketName, prefix string) *S3Client {
	return &S3Client{client: api, bucketName: bucketName, prefix: strings.Trim(prefix, "/")}
}

// ObjectKey joins the prefix and a slash separated relative path.
func (c *S3Client) ObjectKey(rel string) string {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if c.prefix == "" {
		return rel
	}
	return path.Join(c.prefix, rel)
}

// UploadFile puts one local file under key.
func (c *S3Client) UploadFile(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := contentType(localPath); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := c.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

var artifactTypes = map[string]string{
	".csv":     "text/csv",
	".md":      "text/markdown",
	".prom":    "text/plain; version=0.0.4",
	".parquet": "application/vnd.apache.parquet",
}

func contentType(p string) string {
	ext := strings.ToLower(filepath.Ext(p))
	if ct, ok := artifactTypes[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}

// UploadTree uploads every regular file below root, keyed by the path
// relative to root's parent so the run folder name is kept.
func (c *S3Client) UploadTree(ctx context.Context, root string) (int, error) {
	base := filepath.Dir(filepath.Clean(root))
	n := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		if err := c.UploadFile(ctx, p, c.ObjectKey(rel)); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, err
	}
	log.Printf("Uploaded %d files to s3://%s/%s", n, c.bucketName, c.prefix)
	return n, nil
}
