package aws

import (
	"bytes"
	"io/ioutil"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdius/herdius-enr/storage/disk"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	puts    []*s3.PutObjectInput
	err     error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := ioutil.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)] = body
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &s3.GetObjectOutput{Body: ioutil.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3StoreSaveLoad(t *testing.T) {
	svc := &fakeS3{objects: map[string][]byte{}}
	store := NewS3Store(svc, "herdius-backup", "nodes/node1")

	_, err := store.Load("enr")
	assert.Equal(t, disk.ErrNotFound, err)

	require.NoError(t, store.Save("enr", "enr:abc"))
	repr, err := store.Load("enr")
	require.NoError(t, err)
	assert.Equal(t, "enr:abc", repr)

	require.Len(t, svc.puts, 1)
	assert.Equal(t, "nodes/node1/enr", aws.StringValue(svc.puts[0].Key))
	assert.Equal(t, "AES256", aws.StringValue(svc.puts[0].ServerSideEncryption))
}

func TestS3StoreErrors(t *testing.T) {
	svc := &fakeS3{objects: map[string][]byte{}, err: errors.New("access denied")}
	store := NewS3Store(svc, "herdius-backup", "")

	assert.Error(t, store.Save("enr", "enr:abc"))
	_, err := store.Load("enr")
	assert.Error(t, err)
	assert.NotEqual(t, disk.ErrNotFound, err)
}

func TestNewS3StoreFromEnvNeedsBucket(t *testing.T) {
	_, err := NewS3StoreFromEnv("", "")
	assert.Error(t, err)
}
