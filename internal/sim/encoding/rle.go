package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// RLE is the encoding name carried next to RLE payloads on the wire.
const RLE = "RLE"

// EncodeRLE encodes a sequence of small values as base64(varint pairs).
// The pairs are (value, run_len) repeated.
func EncodeRLE(vals []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(vals) {
		v := vals[i]
		run := 1
		for j := i + 1; j < len(vals) && vals[j] == v && run < 1<<31; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(v))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func DecodeRLE(b64 string) ([]uint16, error) {
	return decodeRLE(b64, -1)
}

// DecodeRLEN is DecodeRLE for a payload that must expand to exactly n values.
// It stops early instead of expanding an oversized run.
func DecodeRLEN(b64 string, n int) ([]uint16, error) {
	out, err := decodeRLE(b64, n)
	if err != nil {
		return nil, err
	}
	if len(out) != n {
		return nil, fmt.Errorf("rle length %d, want %d", len(out), n)
	}
	return out, nil
}

func decodeRLE(b64 string, limit int) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint16
	if limit > 0 {
		out = make([]uint16, 0, limit)
	}
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if v > 0xFFFF {
			return nil, fmt.Errorf("value too large: %d", v)
		}
		if limit >= 0 && uint64(len(out))+run > uint64(limit) {
			return nil, fmt.Errorf("rle overflows %d values", limit)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(v))
		}
	}
	return out, nil
}
