package utils

import (
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const watermarkDesc = "fontname:Helvetica-Bold, points:48, position:c, fillcolor:#bfbfbf, opacity:0.15, rotation:-45"

// AddTextWatermark overlays text centered and rotated on every page of the
// PDF at inFile and writes the result to a sibling file, returning its path.
func AddTextWatermark(inFile, text string) (string, error) {
	wm, err := api.TextWatermark(text, watermarkDesc, true, false, types.POINTS)
	if err != nil {
		return "", err
	}

	outFile := strings.TrimSuffix(inFile, ".pdf") + "_watermarked.pdf"
	if err := api.AddWatermarksFile(inFile, outFile, nil, wm, nil); err != nil {
		return "", err
	}
	return outFile, nil
}
