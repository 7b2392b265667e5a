package loaders

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

type BinaryLoader struct{}

// Load reads the whole file. Data is a []byte.
func (bl *BinaryLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	if p, ok := params.(map[string]string); ok && p["name"] != "" {
		name = p["name"]
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(buf)),
		Data:     buf,
	}, nil
}

func (bl *BinaryLoader) Unload(*metadata.Resource) error {
	return nil
}

// bytesToBytecode packs little-endian bytes into 32-bit words; trailing bytes are dropped.
func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
