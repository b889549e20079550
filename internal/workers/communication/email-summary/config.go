// internal/workers/communication/email-summary/config.go
package emailsummary

import "path/filepath"

type Config struct {
	// AttachmentsDir receives rendered transcripts. Files are never removed.
	AttachmentsDir string
}

func DefaultConfig() *Config {
	return &Config{AttachmentsDir: filepath.Join("data", "temp_attachments")}
}
