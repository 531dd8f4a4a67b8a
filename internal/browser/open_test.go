package browser

import (
	"strings"
	"testing"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		goos    string
		url     string
		wantBin string
		wantErr bool
	}{
		{"darwin", "https://support.example.com", "open", false},
		{"linux", "https://support.example.com/rg", "xdg-open", false},
		{"windows", "http://support.example.com", "rundll32", false},
		{"plan9", "https://support.example.com", "", true},
		{"linux", "file:///etc/passwd", "", true},
		{"linux", "javascript:alert(1)", "", true},
		{"linux", "https://", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.goos+" "+tc.url, func(t *testing.T) {
			cmd, err := command(tc.goos, tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", cmd.Args)
				}
				return
			}
			if err != nil {
				t.Fatalf("command: %v", err)
			}
			if !strings.HasSuffix(cmd.Path, tc.wantBin) && cmd.Args[0] != tc.wantBin {
				t.Errorf("binary = %q, want %q", cmd.Args[0], tc.wantBin)
			}
			if cmd.Args[len(cmd.Args)-1] != tc.url {
				t.Errorf("last arg = %q, want url", cmd.Args[len(cmd.Args)-1])
			}
		})
	}
}
