package tts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// WAV containers here are always 16-bit mono PCM, matching what the
// synthesizer emits.
const (
	bitsPerSample = 16
	numChannels   = 1
)

// WriteSilence writes a silent PCM WAV file of the given duration.
func WriteSilence(path string, durationMS int64, sampleRate int) error {
	if durationMS < 0 {
		durationMS = 0
	}
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	samples := int(int64(sampleRate) * durationMS / 1000)
	dataLen := samples * numChannels * bitsPerSample / 8
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], numChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen))

	payload := make([]byte, len(header)+dataLen)
	copy(payload, header)
	return os.WriteFile(path, payload, 0o644)
}

// DurationMillis reads a WAV header and returns the clip duration in
// milliseconds, computed from the data chunk length and byte rate.
func DurationMillis(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read wav: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, errors.New("not a RIFF/WAVE file")
	}

	var byteRate uint32
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		switch chunkID {
		case "fmt ":
			if body+16 > len(data) {
				return 0, errors.New("truncated fmt chunk")
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
		case "data":
			if byteRate == 0 {
				return 0, errors.New("fmt chunk missing or zero byte rate")
			}
			if body+chunkLen > len(data) {
				chunkLen = len(data) - body
			}
			return int64(chunkLen) * 1000 / int64(byteRate), nil
		}
		// Chunks are word-aligned.
		offset = body + chunkLen + chunkLen%2
	}
	return 0, errors.New("no data chunk")
}
