package blobstore

import (
	"errors"
	"io"
	"time"

	tcmp3 "github.com/tcolgate/mp3"
)

// ErrNotMP3 is returned when no MPEG audio frame could be decoded.
var ErrNotMP3 = errors.New("no mp3 frames found")

// ProbeMP3Duration sums frame durations until the reader is exhausted. A
// truncated trailing frame ends the scan without failing it.
func ProbeMP3Duration(r io.Reader) (time.Duration, error) {
	var (
		total   time.Duration
		frames  int
		dec     = tcmp3.NewDecoder(r)
		frame   tcmp3.Frame
		skipped int
	)
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) || (frames > 0 && errors.Is(err, io.ErrUnexpectedEOF)) {
				break
			}
			return 0, err
		}
		total += frame.Duration()
		frames++
	}
	if frames == 0 {
		return 0, ErrNotMP3
	}
	return total, nil
}
