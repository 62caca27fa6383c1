package vectorindex

import (
	"crypto/md5"
	"encoding/binary"
)

// pointIDPrefixV1 is the fixed prefix of the v1 id scheme. The scheme is
// versioned: changing the prefix or the hash algorithm changes every id,
// which is a reindex migration event, never a silent change.
const pointIDPrefixV1 = "summary_"

// PointID derives the stable point id for a civil date (YYYY-MM-DD).
//
// v1 scheme: the first 8 bytes of md5(pointIDPrefixV1 + date),
// interpreted as a big-endian unsigned 64-bit integer. The id is
// identical across calls for a given date, so re-indexing a date
// overwrites rather than duplicates.
func PointID(date string) uint64 {
	sum := md5.Sum([]byte(pointIDPrefixV1 + date))
	return binary.BigEndian.Uint64(sum[:8])
}
