package driver

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/cryptowatch/cryptowatch/internal/record"
)

var errShortRecord = errors.New("driver: record shorter than fixed header")

func decodeHeader(b []byte, hdr *record.Header) error {
	return binary.Read(bytes.NewReader(b), binary.LittleEndian, hdr)
}
