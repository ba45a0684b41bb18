package clips

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/haivivi/kws/pkg/audio/pcm"
	"github.com/haivivi/kws/pkg/audio/resampler"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAVInfo describes the fmt chunk of a RIFF/WAVE file.
type WAVInfo struct {
	Format        uint16
	Channels      int
	SampleRate    int
	BitsPerSample int
}

// DecodeWAV decodes a 16-bit PCM RIFF/WAVE file. Multi-channel audio is
// downmixed to mono. The returned buffer keeps the file's sample rate.
func DecodeWAV(data []byte) (pcm.Buffer, WAVInfo, error) {
	var info WAVInfo
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return pcm.Buffer{}, info, fmt.Errorf("%w: not a RIFF/WAVE file", ErrUnsupportedFormat)
	}

	var (
		body    []byte
		haveFmt bool
	)
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		start := off + 8
		end := start + size
		if end > len(data) {
			// Truncated final chunk; take what is there.
			end = len(data)
		}
		chunk := data[start:end]

		switch id {
		case "fmt ":
			if len(chunk) < 16 {
				return pcm.Buffer{}, info, fmt.Errorf("%w: short fmt chunk", ErrUnsupportedFormat)
			}
			info = WAVInfo{
				Format:        binary.LittleEndian.Uint16(chunk[0:2]),
				Channels:      int(binary.LittleEndian.Uint16(chunk[2:4])),
				SampleRate:    int(binary.LittleEndian.Uint32(chunk[4:8])),
				BitsPerSample: int(binary.LittleEndian.Uint16(chunk[14:16])),
			}
			haveFmt = true
		case "data":
			body = chunk
		}

		// Chunks are word aligned.
		off = start + size + size%2
	}

	if !haveFmt {
		return pcm.Buffer{}, info, fmt.Errorf("%w: missing fmt chunk", ErrUnsupportedFormat)
	}
	if info.Format != wavFormatPCM && info.Format != wavFormatExtensible {
		return pcm.Buffer{}, info, fmt.Errorf("%w: wav format %d", ErrUnsupportedFormat, info.Format)
	}
	if info.BitsPerSample != 16 {
		return pcm.Buffer{}, info, fmt.Errorf("%w: %d-bit wav", ErrUnsupportedFormat, info.BitsPerSample)
	}
	if info.Channels < 1 || info.SampleRate <= 0 {
		return pcm.Buffer{}, info, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, info.Channels, info.SampleRate)
	}
	if body == nil {
		return pcm.Buffer{}, info, fmt.Errorf("%w: missing data chunk", ErrUnsupportedFormat)
	}

	body = body[:len(body)/2*2]
	samples := make([]int16, len(body)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(body[i*2:]))
	}
	return pcm.Wrap(resampler.Downmix(samples, info.Channels), info.SampleRate), info, nil
}

// EncodeWAV encodes buf as a mono 16-bit PCM RIFF/WAVE file.
func EncodeWAV(buf pcm.Buffer) []byte {
	dataSize := uint32(buf.Len() * 2)
	var b bytes.Buffer
	b.Grow(44 + int(dataSize))

	writeUint32 := func(v uint32) { binary.Write(&b, binary.LittleEndian, v) }
	writeUint16 := func(v uint16) { binary.Write(&b, binary.LittleEndian, v) }

	b.WriteString("RIFF")
	writeUint32(36 + dataSize)
	b.WriteString("WAVE")

	b.WriteString("fmt ")
	writeUint32(16)
	writeUint16(wavFormatPCM)
	writeUint16(1) // mono
	writeUint32(uint32(buf.SampleRate()))
	writeUint32(uint32(buf.SampleRate() * 2))
	writeUint16(2) // block align
	writeUint16(16)

	b.WriteString("data")
	writeUint32(dataSize)
	b.Write(buf.Bytes())
	return b.Bytes()
}
