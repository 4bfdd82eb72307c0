// ABOUTME: Danmaku wire protocol: 16-byte big-endian header framing
// ABOUTME: Encodes client packets and splits server frames, inflating zlib bodies

package services

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Operations
const (
	OpHeartbeat    uint32 = 2
	OpHeartbeatAck uint32 = 3
	OpMessage      uint32 = 5
	OpJoin         uint32 = 7
	OpWelcome      uint32 = 8
)

// Protocol versions
const (
	ProtoJSON       uint16 = 0
	ProtoHeartbeat  uint16 = 1
	ProtoZlib       uint16 = 2
	ProtoBrotli     uint16 = 3
	packetHeaderLen        = 16
	maxPacketBody          = 1 << 20
	maxNesting             = 2
)

// ErrMalformedPacket marks a frame that cannot be split
var ErrMalformedPacket = errors.New("malformed danmaku packet")

// Packet is one decoded frame
type Packet struct {
	Protocol  uint16
	Operation uint32
	Sequence  uint32
	Body      []byte
}

// EncodePacket frames body for operation op.
//
//	0       4       6       8       12      16
//	| len   | hlen  | proto | op    | seq   | body...
func EncodePacket(op uint32, body []byte) []byte {
	buf := make([]byte, packetHeaderLen+len(body))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(buf)))
	binary.BigEndian.PutUint16(buf[4:6], packetHeaderLen)
	binary.BigEndian.PutUint16(buf[6:8], ProtoHeartbeat)
	binary.BigEndian.PutUint32(buf[8:12], op)
	binary.BigEndian.PutUint32(buf[12:16], 1)
	copy(buf[packetHeaderLen:], body)
	return buf
}

// DecodePackets splits data into frames. Zlib-compressed message frames
// are inflated and their inner frames returned in place.
func DecodePackets(data []byte) ([]Packet, error) {
	return decodePackets(data, 0)
}

func decodePackets(data []byte, depth int) ([]Packet, error) {
	var packets []Packet
	for len(data) > 0 {
		if len(data) < packetHeaderLen {
			return packets, fmt.Errorf("%w: %d trailing bytes", ErrMalformedPacket, len(data))
		}
		packetLen := binary.BigEndian.Uint32(data[0:4])
		headerLen := binary.BigEndian.Uint16(data[4:6])
		if headerLen < packetHeaderLen || uint32(headerLen) > packetLen || packetLen > uint32(len(data)) {
			return packets, fmt.Errorf("%w: length %d header %d available %d", ErrMalformedPacket, packetLen, headerLen, len(data))
		}
		if packetLen-uint32(headerLen) > maxPacketBody {
			return packets, fmt.Errorf("%w: body of %d bytes", ErrMalformedPacket, packetLen-uint32(headerLen))
		}

		p := Packet{
			Protocol:  binary.BigEndian.Uint16(data[6:8]),
			Operation: binary.BigEndian.Uint32(data[8:12]),
			Sequence:  binary.BigEndian.Uint32(data[12:16]),
			Body:      data[headerLen:packetLen],
		}
		data = data[packetLen:]

		if p.Operation == OpMessage && p.Protocol == ProtoZlib {
			if depth >= maxNesting {
				return packets, fmt.Errorf("%w: compressed frames nested too deep", ErrMalformedPacket)
			}
			inflated, err := inflate(p.Body)
			if err != nil {
				return packets, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
			}
			inner, err := decodePackets(inflated, depth+1)
			packets = append(packets, inner...)
			if err != nil {
				return packets, err
			}
			continue
		}
		packets = append(packets, p)
	}
	return packets, nil
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(r, maxPacketBody*8)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Popularity reads the viewer count from a heartbeat reply body
func (p Packet) Popularity() (uint32, bool) {
	if p.Operation != OpHeartbeatAck || len(p.Body) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(p.Body[:4]), true
}
