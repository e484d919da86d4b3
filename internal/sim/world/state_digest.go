package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

// stateDigest hashes the tick, the arena, every agent in creation order and
// the occupancy table. Two worlds with the same digest arbitrate identically.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteI64(h, &tmp, w.cfg.Seed)
	digestWriteU64(h, &tmp, uint64(w.cfg.Height))
	digestWriteU64(h, &tmp, uint64(w.cfg.Width))

	digestWriteU64(h, &tmp, uint64(len(w.order)))
	for _, id := range w.order {
		a := w.agents[id]
		digestWriteString(h, &tmp, a.ID)
		digestWriteI64(h, &tmp, int64(a.Pos.X))
		digestWriteI64(h, &tmp, int64(a.Pos.Y))
	}

	flags := w.grid.Flags()
	buf := make([]byte, len(flags))
	for i, f := range flags {
		buf[i] = byte(f)
	}
	h.Write(buf)

	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWriteString(h hashWriter, tmp *[8]byte, s string) {
	digestWriteU64(h, tmp, uint64(len(s)))
	h.Write([]byte(s))
}
