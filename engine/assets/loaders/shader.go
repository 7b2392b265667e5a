package loaders

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

var ErrInvalidSPIRV = errors.New("invalid SPIR-V module")

// ShaderLoader reads a stage through the binary loader and validates it.
type ShaderLoader struct {
	binary BinaryLoader
}

// Load reads a compiled SPIR-V stage. Data is a []uint32.
func (sl *ShaderLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	raw, err := sl.binary.Load(path, params)
	if err != nil {
		return nil, err
	}
	code, err := ParseSPIRV(raw.Data.([]byte))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Name, err)
	}
	return &metadata.Resource{
		Name:     raw.Name,
		FullPath: path,
		DataSize: uint64(len(code) * 4),
		Data:     code,
	}, nil
}

func (sl *ShaderLoader) Unload(*metadata.Resource) error {
	return nil
}

// ParseSPIRV validates the size and magic number of a SPIR-V blob.
func ParseSPIRV(data []byte) ([]uint32, error) {
	if len(data) < 20 || len(data)%4 != 0 {
		return nil, fmt.Errorf("size %d: %w", len(data), ErrInvalidSPIRV)
	}
	code := bytesToBytecode(data)
	if code[0] != SPIRVMagic {
		return nil, fmt.Errorf("magic 0x%08x: %w", code[0], ErrInvalidSPIRV)
	}
	return code, nil
}
