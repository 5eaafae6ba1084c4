package domains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "URL with scheme, www, path and query",
			input:  "https://www.Example.com/path?x=1",
			want:   "example.com",
			wantOK: true,
		},
		{
			name:   "email address",
			input:  "user@Example.org",
			want:   "example.org",
			wantOK: true,
		},
		{
			name:   "bare domain",
			input:  "example.com",
			want:   "example.com",
			wantOK: true,
		},
		{
			name:   "http scheme without www",
			input:  "http://shop.example.de/katalog",
			want:   "shop.example.de",
			wantOK: true,
		},
		{
			name:   "too short",
			input:  "ab",
			wantOK: false,
		},
		{
			name:   "no dot",
			input:  "localhost",
			wantOK: false,
		},
		{
			name:   "empty",
			input:  "",
			wantOK: false,
		},
		{
			name:   "whitespace padding",
			input:  "  WWW.Example.COM  ",
			want:   "example.com",
			wantOK: true,
		},
		{
			name:   "email with plus tag",
			input:  "info+sales@firma.de",
			want:   "firma.de",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Derive(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
