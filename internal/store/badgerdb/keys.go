package badgerdb

import "encoding/binary"

const (
	rowPrefix  = "contact:row:"
	slugPrefix = "contact:idx:slug:"
	idSequence = "contact:seq"
)

// rowKey encodes id big-endian so keys sort in id order.
// Badger holds on to keys until commit, so every call allocates.
func rowKey(id int64) []byte {
	buf := make([]byte, 0, len(rowPrefix)+8)
	buf = append(buf, rowPrefix...)
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// slugKey builds the slug index key.
func slugKey(slug string) []byte {
	buf := make([]byte, 0, len(slugPrefix)+len(slug))
	buf = append(buf, slugPrefix...)
	return append(buf, slug...)
}

// idFromRowKey decodes the id suffix of a row key.
func idFromRowKey(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key[len(rowPrefix):]))
}

func encodeID(id int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

func decodeID(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
