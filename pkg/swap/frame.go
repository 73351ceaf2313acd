// pkg/swap/frame.go

package swap

import (
	"RasterSwap/pkg/compress"
	"RasterSwap/pkg/utils"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// frame: magic(4) version(1) compression(1) flags(1) reserved(1) rawLen(4) checksum(8) payload
const (
	frameMagic   = "RSWP"
	frameVersion = 1
	frameHeader  = 4 + 1 + 1 + 1 + 1 + 4 + 8

	flagEncrypted = 1 << 0
)

var (
	ErrChecksum  = errors.New("checksum mismatch")
	ErrFrameSize = errors.New("frame length out of bounds")
)

const (
	compNone uint8 = iota
	compLZ4
	compZstd
)

func compressionTag(c compress.Compressor) uint8 {
	switch c.Name() {
	case "LZ4":
		return compLZ4
	case "Zstd":
		return compZstd
	}
	return compNone
}

func compressorOf(tag uint8) (compress.Compressor, error) {
	switch tag {
	case compNone:
		return compress.NewCompressor("none"), nil
	case compLZ4:
		return compress.NewCompressor("lz4"), nil
	case compZstd:
		return compress.NewCompressor("zstd"), nil
	}
	return nil, errors.Errorf("unknown compression tag %d", tag)
}

// encodeFrame compresses raw with c, then encrypts it when enc is set.
func encodeFrame(raw []byte, c compress.Compressor, enc Encryptor) ([]byte, error) {
	payload := make([]byte, c.CompressBound(len(raw)))
	n, err := c.Compress(payload, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "compress with %s", c.Name())
	}
	payload = payload[:n]
	var flags uint8
	if enc != nil {
		if payload, err = enc.Encrypt(payload); err != nil {
			return nil, errors.Wrap(err, "encrypt")
		}
		flags |= flagEncrypted
	}

	b := utils.NewBuffer(uint32(frameHeader + len(payload)))
	b.Put([]byte(frameMagic))
	b.Put8(frameVersion)
	b.Put8(compressionTag(c))
	b.Put8(flags)
	b.Put8(0)
	b.Put32(uint32(len(raw)))
	b.Put64(xxhash.Sum64(raw))
	b.Put(payload)
	return b.Bytes(), nil
}

// decodeFrame returns the raw bytes stored in a frame. limit bounds the raw
// length a frame may claim before anything is allocated for it.
func decodeFrame(data []byte, enc Encryptor, limit int64) ([]byte, error) {
	if len(data) < frameHeader {
		return nil, errors.Errorf("short frame: %d bytes", len(data))
	}
	b := utils.ReadBuffer(data)
	if string(b.Get(4)) != frameMagic {
		return nil, errors.New("bad magic")
	}
	if v := b.Get8(); v != frameVersion {
		return nil, errors.Errorf("unsupported version %d", v)
	}
	tag := b.Get8()
	c, err := compressorOf(tag)
	if err != nil {
		return nil, err
	}
	flags := b.Get8()
	b.Get8()
	rawLen := int(b.Get32())
	sum := b.Get64()
	payload := b.Buffer()
	if int64(rawLen) > limit {
		return nil, errors.Wrapf(ErrFrameSize, "raw length %d over %d", rawLen, limit)
	}

	if flags&flagEncrypted != 0 {
		if enc == nil {
			return nil, errors.New("frame is encrypted but no passphrase is configured")
		}
		if payload, err = enc.Decrypt(payload); err != nil {
			return nil, errors.Wrap(err, "decrypt")
		}
	}
	if tag == compNone && len(payload) != rawLen {
		return nil, errors.Wrapf(ErrFrameSize, "raw length %d, payload %d", rawLen, len(payload))
	}
	raw := make([]byte, rawLen)
	n, err := c.Decompress(raw, payload)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress with %s", c.Name())
	}
	if n != rawLen {
		return nil, errors.Errorf("decompressed %d bytes, expect %d", n, rawLen)
	}
	if xxhash.Sum64(raw) != sum {
		return nil, ErrChecksum
	}
	return raw, nil
}
