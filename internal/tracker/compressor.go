package tracker

import (
	"github.com/klauspost/compress/zstd"

	"drinkaware/internal/tracker/interfaces"
)

// ZstdCompressor wraps a shared encoder/decoder pair for the state
// file. Both are safe for concurrent use via EncodeAll/DecodeAll.
type ZstdCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewCompressor() interfaces.CompressorInterface {
	encoder, _ := zstd.NewWriter(nil)
	decoder, _ := zstd.NewReader(nil)
	return &ZstdCompressor{encoder: encoder, decoder: decoder}
}

func (c *ZstdCompressor) Compress(data []byte) []byte {
	return c.encoder.EncodeAll(data, make([]byte, 0, len(data)))
}

func (c *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	return c.decoder.DecodeAll(data, nil)
}
