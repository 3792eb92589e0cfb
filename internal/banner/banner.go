package banner

import (
	"fmt"
	"io"
	"strings"

	"github.com/skip2/go-qrcode"
)

// UploaderPage is the page the usage steps point the browser at.
const UploaderPage = "upload-images.html"

type Info struct {
	// URL is the local address, e.g. http://localhost:8080.
	URL string
	// BaseDir is printed so the operator can see what is being served.
	BaseDir string
	// QRURL, when set, is rendered as a terminal QR code. Typically the
	// LAN address so a phone on the same network can open the page.
	QRURL string
}

// Write prints the startup banner.
func Write(w io.Writer, info Info) error {
	url := strings.TrimRight(info.URL, "/")

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("Marga Image Uploader - Local Server\n\n")
	fmt.Fprintf(&b, "Server running at: %s\n", url)
	if info.BaseDir != "" {
		fmt.Fprintf(&b, "Serving files from: %s\n", info.BaseDir)
	}
	b.WriteString("\nNext steps:\n")
	b.WriteString("1. Open your browser\n")
	fmt.Fprintf(&b, "2. Go to: %s/%s\n", url, UploaderPage)
	b.WriteString("3. Click \"Start Upload\"\n")

	if info.QRURL != "" {
		qr, err := QRCode(strings.TrimRight(info.QRURL, "/") + "/" + UploaderPage)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "\nScan to open on another device (%s):\n%s", info.QRURL, qr)
	}

	b.WriteString("\nPress Ctrl+C to stop the server\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteStopped prints the shutdown confirmation.
func WriteStopped(w io.Writer) error {
	_, err := io.WriteString(w, "\n\nServer stopped\n")
	return err
}

// QRCode renders payload as a compact block-character QR code.
func QRCode(payload string) (string, error) {
	if payload == "" {
		return "", nil
	}
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("qr code: %w", err)
	}
	return code.ToSmallString(false), nil
}
