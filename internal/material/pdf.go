package material

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PDFExtractor turns a PDF file into plain text.
type PDFExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Pdftotext extracts text with the poppler pdftotext tool.
type Pdftotext struct {
	// Bin overrides the executable, default "pdftotext".
	Bin string
}

func (p Pdftotext) ExtractText(ctx context.Context, path string) (string, error) {
	bin := p.Bin
	if bin == "" {
		bin = "pdftotext"
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-enc", "UTF-8", path, "-")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("pdftotext failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}
