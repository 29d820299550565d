package km2

import (
	"errors"

	"golang.org/x/text/encoding/unicode"
)

// decodeUTF16LE decodes raw little-endian UTF-16 bytes strictly: an odd
// byte count or an unpaired surrogate is reported as an error before
// decoding, since the x/text decoder itself would substitute U+FFFD, so
// malformed string-table data surfaces as a proper
// core.EngineError(ErrInvalidUtf16) instead of corrupting text silently.
func decodeUTF16LE(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", errors.New("odd number of bytes in UTF-16 data")
	}
	for i := 0; i < len(b); i += 2 {
		u := uint16(b[i]) | uint16(b[i+1])<<8
		if u >= 0xD800 && u < 0xDC00 {
			if i+3 >= len(b) || b[i+3] < 0xDC || b[i+3] > 0xDF {
				return "", errors.New("unpaired high surrogate in UTF-16 data")
			}
			i += 2
		} else if u >= 0xDC00 && u < 0xE000 {
			return "", errors.New("unpaired low surrogate in UTF-16 data")
		}
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := decoder.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
