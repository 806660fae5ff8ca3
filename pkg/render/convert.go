package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
)

// ConverterBin is the librsvg command-line converter.
const ConverterBin = "rsvg-convert"

// ToPDF converts SVG to PDF.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "-f", "pdf")
}

// ToPNG converts SVG to PNG at the given scale. Non-positive scales render
// at 1x.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', -1, 64))
}

func convert(svg []byte, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(ConverterBin)
	if err != nil {
		return nil, fmt.Errorf("%s not found: install librsvg", ConverterBin)
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &out, &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", ConverterBin, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out.Bytes(), nil
}
