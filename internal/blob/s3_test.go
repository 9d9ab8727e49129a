package blob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
		wantData string
		wantErr  bool
	}{
		{
			name:     "jpeg data uri",
			input:    "data:image/jpeg;base64,aGVsbG8=",
			wantType: "image/jpeg",
			wantData: "hello",
		},
		{
			name:     "data uri without media type",
			input:    "data:;base64,aGVsbG8=",
			wantType: "application/octet-stream",
			wantData: "hello",
		},
		{
			name:     "bare base64",
			input:    "aGVsbG8=",
			wantType: "application/octet-stream",
			wantData: "hello",
		},
		{
			name:    "data prefix without comma",
			input:   "data:image/jpeg;base64",
			wantErr: true,
		},
		{
			name:    "invalid base64",
			input:   "data:image/jpeg;base64,???",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType, raw, err := decodeDataURI(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, contentType)
			assert.Equal(t, tt.wantData, string(raw))
		})
	}
}

func TestStorageKeyIsDatePartitioned(t *testing.T) {
	key := storageKey("receipts")
	parts := strings.Split(key, "/")
	require.Len(t, parts, 4)
	assert.Equal(t, "receipts", parts[0])
	assert.NotEqual(t, key, storageKey("receipts"))
}

func TestObjectURL(t *testing.T) {
	aws := &S3Store{cfg: S3Config{Region: "us-east-1", Bucket: "receipts"}}
	assert.Equal(t, "https://receipts.s3.us-east-1.amazonaws.com/receipts/2026/03/x",
		aws.objectURL("receipts/2026/03/x"))

	minio := &S3Store{cfg: S3Config{Bucket: "receipts", BaseEndpoint: "http://localhost:9000/"}}
	assert.Equal(t, "http://localhost:9000/receipts/receipts/2026/03/x",
		minio.objectURL("receipts/2026/03/x"))
}
