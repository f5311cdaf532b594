package propdump

import (
	"context"
	"log/slog"
	"strings"

	"raybands/internal/export"
	"raybands/internal/logging"
	"raybands/internal/session"
)

// Collect discovers the properties of each object key and fetches their
// current values. Scalar values land in the returned rows; array values go
// into the bundle. A failed fetch becomes a row carrying the status string
// instead of a value — the export always has one row per property.
func Collect(ctx context.Context, h session.Handle, keys []string, log *slog.Logger) ([]export.PropertyRow, *export.Bundle, error) {
	if log == nil {
		log = logging.Discard()
	}
	bundle := export.NewBundle()
	var rows []export.PropertyRow

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		v, st := h.Get(key, session.PropDumpForKey)
		if !st.OK() {
			log.Warn("property discovery failed", "key", key, "status", st.String())
			rows = append(rows, export.PropertyRow{ObjectKey: key, PropertyName: session.PropDumpForKey, Value: st.String()})
			continue
		}
		text, ok := v.String()
		if !ok {
			rows = append(rows, export.PropertyRow{ObjectKey: key, PropertyName: session.PropDumpForKey, Value: session.StatusTypeMismatch.String()})
			continue
		}

		props, skipped, err := Parse(strings.NewReader(text))
		if err != nil {
			log.Warn("property dump unparsable", "key", key, "error", err)
			rows = append(rows, export.PropertyRow{ObjectKey: key, PropertyName: session.PropDumpForKey, Value: err.Error()})
			continue
		}
		for _, s := range skipped {
			log.Debug("skipped dump row", "key", key, "row", s)
		}

		for _, p := range props {
			rows = append(rows, fetchProperty(h, bundle, key, p))
		}
		bundle.Processed = append(bundle.Processed, key)
	}

	bundle.Scalars = rows
	return rows, bundle, nil
}

func fetchProperty(h session.Handle, bundle *export.Bundle, key string, p Property) export.PropertyRow {
	row := export.PropertyRow{ObjectKey: key, PropertyName: p.Name}

	v, st := h.Get(key, p.Name)
	if !st.OK() {
		row.Value = st.String()
		return row
	}
	if p.IsArray {
		arr, ok := v.Array()
		if !ok {
			row.Value = session.StatusTypeMismatch.String()
			return row
		}
		bundle.AddArray(key, p.Name, arr)
		row.Value = v.Display()
		return row
	}
	row.Value = v.Display()
	return row
}
