package meter

import "github.com/snksoft/crc"

// Result pairs one capture target with the outcome of the shared driver
// call.  Every target of a capture shares the same driver code and
// success flag; Saved and Error are per-target.
type Result struct {
	// Code is the raw return code of the capture entry point
	Code int `json:"code"`

	// Success is true when Code is within the session's success set
	Success bool `json:"success"`

	// Path is the resolved output path for this target
	Path string `json:"path"`

	// Manufacturer, Width, Height and Meters echo the device metadata
	// in effect for this capture
	Manufacturer string `json:"manufacturer"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Meters       int    `json:"meters"`

	// Meter is the clamped 1-based meter index actually persisted,
	// which may differ from the requested one on out-of-range requests
	Meter int `json:"meter"`

	// Saved is true only if an encode and write actually happened
	Saved bool `json:"saved"`

	// Checksum is CRC-16/XMODEM over the written file body, 0 when
	// nothing was saved.  The orchestration layer uses it to verify
	// files it relocates.
	Checksum uint16 `json:"checksum"`

	// Error holds the per-target encode or write failure, empty otherwise
	Error string `json:"error,omitempty"`
}

var crcTable = crc.NewTable(crc.XMODEM)

func checksum(data []byte) uint16 {
	c := crcTable.InitCrc()
	c = crcTable.UpdateCrc(c, data)
	return crcTable.CRC16(c)
}

// ReturnCode derives the normalized process exit code from a batch of
// results: 0 when the driver call succeeded, the raw driver code
// otherwise.  A raw code of 0 on a failed call maps to -1 so a failure
// never masquerades as success.
func ReturnCode(results []Result) int {
	for _, r := range results {
		if r.Success {
			continue
		}
		if r.Code == 0 {
			return -1
		}
		return r.Code
	}
	return 0
}
