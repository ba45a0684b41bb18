// Package pcm holds clips of signed 16-bit mono audio.
//
// A [Buffer] is the unit handed to the keyword-spotting pipeline: a finite,
// read-only run of samples plus the rate they were captured at. Helpers
// convert between raw little-endian bytes, normalized float32 and Buffer.
//
// Example usage:
//
//	buf, err := pcm.FromBytes(raw, pcm.DefaultSampleRate)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(buf.Len(), buf.Duration())
package pcm
