package xmlpath

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
	"github.com/kirillkom/nonprofit-scan/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
	paths   domain.FieldPaths
}

func NewExtractor(storage ports.ObjectStorage, paths domain.FieldPaths) *Extractor {
	return &Extractor{storage: storage, paths: paths}
}

// Extract never fails loudly: unreadable or malformed documents are reported
// as absent so one bad filing cannot stop a scan.
func (e *Extractor) Extract(ctx context.Context, id string) (rec domain.ExtractedRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("extract_panic", "source_id", id, "panic", r)
			rec, ok = domain.ExtractedRecord{}, false
		}
	}()

	reader, err := e.storage.Open(ctx, id)
	if err != nil {
		slog.Debug("extract_open_failed", "source_id", id, "error", err)
		return domain.ExtractedRecord{}, false
	}
	defer reader.Close()

	doc, err := xmlquery.Parse(reader)
	if err != nil {
		slog.Debug("extract_parse_failed", "source_id", id, "error", err)
		return domain.ExtractedRecord{}, false
	}
	if roots := rootElements(doc); roots != 1 {
		slog.Debug("extract_parse_failed", "source_id", id, "root_elements", roots)
		return domain.ExtractedRecord{}, false
	}
	return e.fromDocument(id, doc), true
}

// rootElements counts top-level elements. A well-formed document has exactly
// one; the parser tolerates more.
func rootElements(doc *xmlquery.Node) int {
	n := 0
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			n++
		}
	}
	return n
}

func (e *Extractor) fromDocument(id string, doc *xmlquery.Node) domain.ExtractedRecord {
	rec := domain.ExtractedRecord{SourceID: id}
	if name, found := Resolve(doc, e.paths.Name); found {
		rec.OrganizationName = domain.Present(name)
	}
	if mission, found := Resolve(doc, e.paths.Mission); found {
		rec.MissionText = domain.Present(mission)
	}
	if raw, found := ResolveFunc(doc, e.paths.Revenue, isAmount); found {
		rec.Revenue, _ = parseAmount(raw)
	}
	return rec
}

func isAmount(s string) bool {
	_, ok := parseAmount(s)
	return ok
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
