package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quantcluster/marketlens/internal/domain"
)

// Archiver uploads scan reports to S3 as newline-delimited JSON, one finding
// per line, keyed by scan timestamp. Reports are append-only; nothing is ever
// deleted from the primary store here.
type Archiver struct {
	writer *Writer
}

// NewArchiver creates an Archiver that uploads through the given writer.
func NewArchiver(writer *Writer) *Archiver {
	return &Archiver{writer: writer}
}

// ArchiveScan serializes the findings of one detection pass to JSONL and
// uploads the report. It returns the object key.
func (a *Archiver) ArchiveScan(ctx context.Context, at time.Time, opps []domain.Opportunity) (string, error) {
	buf, err := marshalJSONL(opps)
	if err != nil {
		return "", fmt.Errorf("s3blob: archive scan marshal: %w", err)
	}

	key := scanReportKey(at)
	if err := a.writer.Put(ctx, key, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return "", fmt.Errorf("s3blob: archive scan upload: %w", err)
	}
	return key, nil
}

// scanReportKey builds the S3 key for a scan report, partitioned by day.
//
//	scans/2026-08-30/20260830T141500Z.jsonl
func scanReportKey(at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("scans/%s/%s.jsonl", at.Format("2006-01-02"), at.Format("20060102T150405Z"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
