package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrEmptyPCM is returned when a WAV is requested for zero-length audio.
var ErrEmptyPCM = errors.New("audio: empty PCM data")

// WriteWAV writes pcm to w framed as a 16-bit PCM RIFF/WAVE file.
func WriteWAV(w io.Writer, pcm []byte, sampleRate, channels int) error {
	if len(pcm) == 0 {
		return ErrEmptyPCM
	}
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("audio: invalid WAV format %d Hz / %d ch", sampleRate, channels)
	}

	dataLen := uint32(len(pcm))
	byteRate := uint32(sampleRate * channels * bytesPerSample)
	blockAlign := uint16(channels * bytesPerSample)

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataLen)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM format tag
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], 16) // bits per sample
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataLen)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("audio: write WAV header: %w", err)
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("audio: write WAV data: %w", err)
	}
	return nil
}

// ReadWAV parses a 16-bit PCM RIFF/WAVE stream and returns the sample data
// with its format. Only the plain PCM layout produced by [WriteWAV] is
// supported; compressed or extensible WAVs are rejected.
func ReadWAV(r io.Reader) (pcm []byte, sampleRate, channels int, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("audio: read WAV: %w", err)
	}
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, errors.New("audio: not a RIFF/WAVE stream")
	}
	if string(data[12:16]) != "fmt " || binary.LittleEndian.Uint16(data[20:22]) != 1 {
		return nil, 0, 0, errors.New("audio: unsupported WAV encoding")
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		return nil, 0, 0, fmt.Errorf("audio: unsupported bit depth %d", bits)
	}

	channels = int(binary.LittleEndian.Uint16(data[22:24]))
	sampleRate = int(binary.LittleEndian.Uint32(data[24:28]))

	// Scan chunks for "data"; some encoders insert extra chunks after fmt.
	fmtSize := binary.LittleEndian.Uint32(data[16:20])
	off := 20 + int(fmtSize)
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		if id == "data" {
			end := off + 8 + size
			if end > len(data) {
				end = len(data)
			}
			return data[off+8 : end], sampleRate, channels, nil
		}
		off += 8 + size
	}
	return nil, 0, 0, errors.New("audio: WAV data chunk not found")
}
