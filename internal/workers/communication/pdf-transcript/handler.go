// internal/workers/communication/pdf-transcript/handler.go
package pdftranscript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"pk-market-chat/internal/common/logger"
	"pk-market-chat/internal/models"
)

var ErrRenderFailed = errors.New("PDF_RENDER_FAILED")

// Renderer writes a chat transcript as a PDF document.
type Renderer struct {
	logger logger.Logger
	now    func() time.Time
}

func NewRenderer(log logger.Logger) *Renderer {
	return &Renderer{
		logger: logger.ForComponent(log, "pdf-transcript"),
		now:    time.Now,
	}
}

// Render writes history to path, creating the parent directory if needed.
// An existing file at path is replaced.
func (r *Renderer) Render(history []models.ChatMessage, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %v", ErrRenderFailed, err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; runes outside it are printed as "?".
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Chat Summary", true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Chat History", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Generated "+r.now().Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(history) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No messages in this conversation.", "", "L", false)
	}

	for _, msg := range history {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, tr(roleLabel(msg.Role)+":"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(msg.Content), "", "L", false)
		pdf.Ln(3)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	r.logger.Info("transcript rendered", map[string]interface{}{
		"path":     path,
		"messages": len(history),
	})
	return nil
}

func roleLabel(role string) string {
	switch strings.ToLower(role) {
	case "user":
		return "User"
	case "assistant", "bot":
		return "Assistant"
	case "":
		return "Message"
	default:
		r, size := utf8.DecodeRuneInString(role)
		return string(unicode.ToUpper(r)) + role[size:]
	}
}
