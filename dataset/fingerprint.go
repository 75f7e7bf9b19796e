package dataset

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint 返回表内容的摘要（BLAKE2b-256，十六进制）。
// 摘要覆盖列名、列类型与全部取值，内容相同的两张表得到相同的指纹，可直接作为缓存 key。
func Fingerprint(t *Table) string {
	h, _ := blake2b.New256(nil)
	var buf [8]byte
	writeUint := func(n uint64) {
		binary.LittleEndian.PutUint64(buf[:], n)
		h.Write(buf[:])
	}

	writeUint(uint64(t.Width()))
	writeUint(uint64(t.Len()))
	for _, c := range t.columns {
		writeBytes(h, writeUint, []byte(c.name))
		writeUint(uint64(c.kind))
		switch c.kind {
		case KindString:
			for _, s := range c.strings {
				writeBytes(h, writeUint, []byte(s))
			}
		case KindInt:
			for _, n := range c.ints {
				writeUint(uint64(n))
			}
		case KindFloat:
			for _, f := range c.floats {
				writeUint(math.Float64bits(f))
			}
		case KindBool:
			for _, b := range c.bools {
				if b {
					writeUint(1)
				} else {
					writeUint(0)
				}
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeBytes 写入长度前缀与内容，避免相邻字符串拼接产生歧义。
func writeBytes(h hash.Hash, writeUint func(uint64), b []byte) {
	writeUint(uint64(len(b)))
	h.Write(b)
}
