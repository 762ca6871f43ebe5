// Package uuid generates time-ordered identifiers for database records.
package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	googleuuid "github.com/google/uuid"
)

// The millisecond timestamp alone cannot order rows created in the same
// millisecond, so the rand_a bits carry a per-process counter (the
// fixed-length counter method of RFC 9562). Ids generated by one process
// are strictly increasing.
var (
	genMu  sync.Mutex
	lastMS uint64
	seq    uint16
)

func next() (uint64, uint16) {
	genMu.Lock()
	defer genMu.Unlock()

	ms := uint64(time.Now().UnixMilli())
	if ms <= lastMS {
		seq++
		if seq > 0x0fff {
			// Counter exhausted within the millisecond. Borrow from the
			// timestamp rather than block.
			lastMS++
			seq = 0
		}
		return lastMS, seq
	}

	lastMS = ms
	seq = 0
	return ms, 0
}

// New generates a new UUIDv7 based on the current timestamp. UUIDv7 is
// time-ordered, which makes ids double as the monotonic ordering key for
// transactions and conversation entries.
//
// Format (RFC 9562):
// - 48 bits: Unix timestamp in milliseconds
// - 4 bits: version (0111 = 7)
// - 12 bits: monotonic counter
// - 2 bits: variant (10)
// - 62 bits: random data
func New() string {
	var uuid [16]byte

	timestamp, counter := next()
	binary.BigEndian.PutUint64(uuid[0:8], timestamp<<16)

	if _, err := rand.Read(uuid[8:]); err != nil {
		// Fallback to standard UUIDv4 if random generation fails.
		return googleuuid.New().String()
	}

	// Version 7 with the counter in rand_a, variant 10.
	binary.BigEndian.PutUint16(uuid[6:8], 0x7000|counter)
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(uuid[0:4]),
		binary.BigEndian.Uint16(uuid[4:6]),
		binary.BigEndian.Uint16(uuid[6:8]),
		binary.BigEndian.Uint16(uuid[8:10]),
		uuid[10:16],
	)
}

// IsValid checks if a string is a valid UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
