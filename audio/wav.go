package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV encodes b as 16-bit mono PCM.
func (b *Buffer) WriteWAV(w io.WriteSeeker) error {
	data := make([]int, len(b.samples))
	for i, s := range b.samples {
		data[i] = int(toInt16(s))
	}
	enc := wav.NewEncoder(w, b.sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{SampleRate: b.sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}

// WriteWAVFile writes b to path.
func (b *Buffer) WriteWAVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := b.WriteWAV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadWAV decodes a 16-bit mono PCM file into a buffer.
func ReadWAV(r io.ReadSeeker) (*Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid WAV file")
	}
	if dec.NumChans != 1 {
		return nil, fmt.Errorf("unsupported channel count: %d (expected 1)", dec.NumChans)
	}
	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bits per sample: %d (expected 16)", dec.BitDepth)
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav data: %w", err)
	}
	samples := make([]float64, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = float64(v) / 32768.0
	}
	return wrap(samples, int(dec.SampleRate)), nil
}

// ReadWAVFile is a convenience wrapper that opens a file path.
func ReadWAVFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWAV(f)
}
