// internal/storage/codec.go
package storage

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// CodecOptions configures value compression
type CodecOptions struct {
	// Minimum size in bytes before compressing
	MinSize int
	// Compression level (1=fastest, 4=best)
	Level int
}

func DefaultCodecOptions() CodecOptions {
	return CodecOptions{
		MinSize: 1024,
		Level:   2,
	}
}

// Codec compresses stored values with zstd. Values below MinSize are stored
// as-is and recognised on read by the absence of the zstd frame magic, so
// plain JSON written earlier stays readable.
type Codec struct {
	opts CodecOptions

	encoders sync.Pool
	decoders sync.Pool
}

func NewCodec(opts CodecOptions) (*Codec, error) {
	level := zstd.EncoderLevelFromZstd(opts.Level)

	// Create encoder/decoder for validation
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}
	enc.Close()

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	dec.Close()

	return &Codec{
		opts: opts,
		encoders: sync.Pool{
			New: func() interface{} {
				enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
				return enc
			},
		},
		decoders: sync.Pool{
			New: func() interface{} {
				dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
				return dec
			},
		},
	}, nil
}

func (c *Codec) Encode(data []byte) ([]byte, error) {
	if len(data) < c.opts.MinSize {
		return data, nil
	}

	enc := c.encoders.Get().(*zstd.Encoder)
	defer c.encoders.Put(enc)

	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func (c *Codec) Decode(data []byte) ([]byte, error) {
	if len(data) < len(zstdMagic) || !bytes.Equal(data[:len(zstdMagic)], zstdMagic) {
		return data, nil
	}

	dec := c.decoders.Get().(*zstd.Decoder)
	defer c.decoders.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing value: %w", err)
	}
	return out, nil
}
