package hashutil

import (
	"encoding/hex"
	"strconv"

	"lukechampine.com/blake3"
)

// digestBytes is the truncated length of a content digest.
const digestBytes = 16

// Digest returns the hex encoded, truncated BLAKE3 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:digestBytes])
}

// DigestString is Digest for string payloads such as snapshot content.
func DigestString(content string) string {
	return Digest([]byte(content))
}

// StrongETag formats the digest of body as a quoted entity tag.
func StrongETag(body []byte) string {
	return strconv.Quote(Digest(body))
}
