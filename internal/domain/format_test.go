package domain

import "testing"

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "zero", bytes: 0, want: "0.0 B"},
		{name: "bytes", bytes: 512, want: "512.0 B"},
		{name: "kilobytes", bytes: 2048, want: "2.0 KB"},
		{name: "one megabyte", bytes: 1048576, want: "1.0 MB"},
		{name: "fractional megabytes", bytes: 1572864, want: "1.5 MB"},
		{name: "gigabytes", bytes: 7 * 1024 * 1024 * 1024, want: "7.0 GB"},
		{name: "terabytes", bytes: 2 * 1024 * 1024 * 1024 * 1024, want: "2.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSize(tt.bytes); got != tt.want {
				t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestDestinationLabel(t *testing.T) {
	if got := DestinationFileHost.Label(); got != "PIXELDRAIN" {
		t.Errorf("DestinationFileHost.Label() = %q, want PIXELDRAIN", got)
	}
	if got := DestinationAttachment.Label(); got != "TELEGRAM" {
		t.Errorf("DestinationAttachment.Label() = %q, want TELEGRAM", got)
	}
}
