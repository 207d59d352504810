package protocol

import "testing"

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint32
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: ChecksumEmpty,
		},
		{
			name:     "nil data",
			data:     nil,
			expected: ChecksumEmpty,
		},
		{
			name:     "single zero byte",
			data:     []byte{0x00},
			expected: 0xD202EF8D,
		},
		{
			name:     "known payload",
			data:     []byte{0xDE, 0xAD, 0xBE, 0xEF},
			expected: 0x7C9CA35A, // zlib crc32 of DE AD BE EF
		},
		{
			name:     "ascii string",
			data:     []byte("123456789"),
			expected: 0xCBF43926, // standard CRC-32 check value
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Checksum(tt.data)
			if result != tt.expected {
				t.Errorf("Checksum() = 0x%08X, want 0x%08X", result, tt.expected)
			}
		})
	}
}

func TestChecksumDeterminism(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i * 7)
	}

	first := Checksum(data)
	second := Checksum(data)
	if first != second {
		t.Errorf("Checksum() not deterministic: 0x%08X != 0x%08X", first, second)
	}
}

func TestChecksumWriterMatchesChecksum(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	var w ChecksumWriter
	for _, b := range data {
		if err := w.WriteByte(b); err != nil {
			t.Fatalf("WriteByte() error = %v", err)
		}
	}

	if got, want := w.Sum(), Checksum(data); got != want {
		t.Errorf("ChecksumWriter.Sum() = 0x%08X, want 0x%08X", got, want)
	}

	w.Reset()
	if got := w.Sum(); got != ChecksumEmpty {
		t.Errorf("Sum() after Reset() = 0x%08X, want 0x%08X", got, ChecksumEmpty)
	}

	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got, want := w.Sum(), Checksum(data); got != want {
		t.Errorf("ChecksumWriter.Sum() after Write = 0x%08X, want 0x%08X", got, want)
	}
}

func BenchmarkChecksum(b *testing.B) {
	data := make([]byte, 64*1024)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Checksum(data)
	}
}
