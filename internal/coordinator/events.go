package coordinator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// qrScan is a decoded QR reader report.
type qrScan struct {
	ReadingCode string `json:"lectura"`
}

// decodeAGVStatus parses an AGV position report: {"ubicacion":3,"estado":"carry"}.
func decodeAGVStatus(payload []byte) (AGVStatus, error) {
	var status AGVStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return AGVStatus{}, fmt.Errorf("%w: agv status: %v", ErrBadPayload, err)
	}
	if status.Location < 0 {
		return AGVStatus{}, fmt.Errorf("%w: agv status: negative location %d", ErrBadPayload, status.Location)
	}
	return status, nil
}

// decodeInfrared parses an infrared sensor report, a bare integer payload.
func decodeInfrared(payload []byte) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		return 0, fmt.Errorf("%w: infrared reading %q", ErrBadPayload, payload)
	}
	return value, nil
}

// decodeQRScan parses a QR reader report. Scanners in the field publish
// two shapes: the reading object directly, or the same object serialized
// as a JSON string under a "QR Code" key. The wrapped shape is detected
// first so a direct object with an empty lectura is still reported as such.
func decodeQRScan(payload []byte) (qrScan, error) {
	var wrapped struct {
		Inner string `json:"QR Code"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil && wrapped.Inner != "" {
		var scan qrScan
		if err := json.Unmarshal([]byte(wrapped.Inner), &scan); err != nil {
			return qrScan{}, fmt.Errorf("%w: wrapped qr scan: %v", ErrBadPayload, err)
		}
		if scan.ReadingCode == "" {
			return qrScan{}, fmt.Errorf("%w: wrapped qr scan: empty lectura", ErrBadPayload)
		}
		return scan, nil
	}

	var scan qrScan
	if err := json.Unmarshal(payload, &scan); err != nil {
		return qrScan{}, fmt.Errorf("%w: qr scan: %v", ErrBadPayload, err)
	}
	if scan.ReadingCode == "" {
		return qrScan{}, fmt.Errorf("%w: qr scan: empty lectura", ErrBadPayload)
	}
	return scan, nil
}
