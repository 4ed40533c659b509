package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFCPUInspector reads document structure with pdfcpu.
type PDFCPUInspector struct{}

func (PDFCPUInspector) Inspect(ctx context.Context, path string, maxPages int) (Inspection, error) {
	if err := ctx.Err(); err != nil {
		return Inspection{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Inspection{}, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return Inspection{}, fmt.Errorf("pdfcpu read: %w", err)
	}

	n := pctx.PageCount
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}
	return Inspection{
		PageCount: pctx.PageCount,
		HasImages: hasImageXObjects(pctx, n),
	}, nil
}

func hasImageXObjects(pctx *model.Context, pages int) bool {
	if pctx.Optimize != nil {
		for pageNr := 1; pageNr <= pages; pageNr++ {
			if len(pdfcpu.ImageObjNrs(pctx, pageNr)) > 0 {
				return true
			}
		}
	}
	// Fallback: scan the xref table for image streams.
	for _, entry := range pctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}
