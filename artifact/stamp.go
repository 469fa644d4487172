package artifact

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

const stampMagic = "JQRS"

// stamped is the JSON envelope of idf.json and classifier.json.
type stamped[T any] struct {
	RunID string `json:"run_id"`
	Value T      `json:"value"`
}

func writeJSON[T any](path, runID string, value T) error {
	data, err := json.Marshal(stamped[T]{RunID: runID, Value: value})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSON[T any](path string) (string, T, error) {
	var s stamped[T]
	data, err := os.ReadFile(path)
	if err != nil {
		return "", s.Value, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return "", s.Value, err
	}
	return s.RunID, s.Value, nil
}

// stampBinary prefixes payload with magic and the run id.
func stampBinary(runID string, payload []byte) []byte {
	out := make([]byte, 0, len(stampMagic)+4+len(runID)+len(payload))
	out = append(out, stampMagic...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(runID)))
	out = append(out, runID...)
	return append(out, payload...)
}

func unstampBinary(data []byte) (string, []byte, error) {
	if len(data) < len(stampMagic)+4 || string(data[:len(stampMagic)]) != stampMagic {
		return "", nil, errors.New("missing run stamp")
	}
	off := len(stampMagic)
	n := int(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	if off+n > len(data) {
		return "", nil, errors.New("truncated run stamp")
	}
	return string(data[off : off+n]), data[off+n:], nil
}

func checksum(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return File{}, fmt.Errorf("checksum %s: %w", path, err)
	}
	return File{SHA256: hex.EncodeToString(h.Sum(nil)), Size: n}, nil
}
