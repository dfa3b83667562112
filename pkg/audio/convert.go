package audio

import "encoding/binary"

// BytesToInt16 reinterprets little-endian PCM bytes as int16 samples.
// A trailing odd byte is dropped.
func BytesToInt16(b []byte) []int16 {
	n := len(b) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out
}

// Int16ToBytes serialises int16 samples as little-endian PCM bytes.
func Int16ToBytes(s []int16) []byte {
	out := make([]byte, 2*len(s))
	for i, v := range s {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}

// ResampleMono16 linearly resamples 16-bit mono PCM from srcRate to dstRate.
// The input is returned unchanged when the rates match or when either rate is
// not positive.
func ResampleMono16(pcm []byte, srcRate, dstRate int) []byte {
	if srcRate == dstRate || srcRate <= 0 || dstRate <= 0 || len(pcm) < 2 {
		return pcm
	}

	src := BytesToInt16(pcm)
	srcLen := len(src)
	dstLen := int(int64(srcLen) * int64(dstRate) / int64(srcRate))
	if dstLen == 0 {
		return nil
	}

	dst := make([]int16, dstLen)
	for i := range dst {
		// Position in the source expressed as sample index + fraction.
		pos := int64(i) * int64(srcRate)
		idx := int(pos / int64(dstRate))
		frac := pos % int64(dstRate)

		if idx >= srcLen-1 {
			dst[i] = src[srcLen-1]
			continue
		}
		a := int64(src[idx])
		b := int64(src[idx+1])
		dst[i] = int16(a + (b-a)*frac/int64(dstRate))
	}
	return Int16ToBytes(dst)
}

// MonoToStereo duplicates each mono sample into both channels.
func MonoToStereo(pcm []byte) []byte {
	src := BytesToInt16(pcm)
	dst := make([]int16, 2*len(src))
	for i, v := range src {
		dst[2*i] = v
		dst[2*i+1] = v
	}
	return Int16ToBytes(dst)
}

// StereoToMono averages each sample pair into a single channel.
func StereoToMono(pcm []byte) []byte {
	src := BytesToInt16(pcm)
	dst := make([]int16, len(src)/2)
	for i := range dst {
		dst[i] = int16((int32(src[2*i]) + int32(src[2*i+1])) / 2)
	}
	return Int16ToBytes(dst)
}

// ScaleVolume multiplies every sample by factor, clamping to the int16 range.
// A factor of 1 returns the input unchanged.
func ScaleVolume(pcm []byte, factor float64) []byte {
	if factor == 1 {
		return pcm
	}
	src := BytesToInt16(pcm)
	dst := make([]int16, len(src))
	for i, v := range src {
		scaled := float64(v) * factor
		switch {
		case scaled > 32767:
			dst[i] = 32767
		case scaled < -32768:
			dst[i] = -32768
		default:
			dst[i] = int16(scaled)
		}
	}
	return Int16ToBytes(dst)
}
