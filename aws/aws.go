package aws

import (
	"context"
	"fmt"
	"io/ioutil"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/herdius/herdius-enr/p2p/log"
	"github.com/herdius/herdius-enr/storage/disk"
)

// DefaultTimeout bounds every S3 request.
const DefaultTimeout = 30 * time.Second

// S3Store keeps entities as objects in an S3 bucket, so a node's record
// outlives the host it runs on.
type S3Store struct {
	svc     s3iface.S3API
	bucket  string
	prefix  string
	Timeout time.Duration
}

var _ disk.Store = (*S3Store)(nil)

// NewS3Store stores objects under prefix in bucket.
func NewS3Store(svc s3iface.S3API, bucket, prefix string) *S3Store {
	return &S3Store{
		svc:     svc,
		bucket:  bucket,
		prefix:  prefix,
		Timeout: DefaultTimeout,
	}
}

// NewS3StoreFromEnv builds the S3 client from the shared AWS config and
// environment.
func NewS3StoreFromEnv(bucket, prefix string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("no S3 bucket configured")
	}
	sess, err := session.NewSession()
	if err != nil {
		return nil, fmt.Errorf("could not create AWS session: %v", err)
	}
	return NewS3Store(s3.New(sess), bucket, prefix), nil
}

func (s *S3Store) key(p string) string {
	return path.Join(s.prefix, p)
}

// Save uploads repr, replacing any previous object.
func (s *S3Store) Save(p, repr string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	timeStamp := time.Now().Unix()
	_, err := s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(s.key(p)),
		Body:                 strings.NewReader(repr),
		ServerSideEncryption: aws.String("AES256"),
		Tagging:              aws.String(fmt.Sprintf("timestamp=%v", timeStamp)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %v to S3: %v", s.key(p), err)
	}
	log.Debug().Str("bucket", s.bucket).Str("key", s.key(p)).Msg("Uploaded to S3")
	return nil
}

// Load downloads the object for p. A missing object is disk.ErrNotFound.
func (s *S3Store) Load(p string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	out, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
		return "", disk.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("could not download %v from S3: %v", s.key(p), err)
	}
	defer out.Body.Close()

	data, err := ioutil.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("cannot read %v from S3: %v", s.key(p), err)
	}
	return string(data), nil
}
