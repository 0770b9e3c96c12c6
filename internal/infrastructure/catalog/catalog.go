// Package catalog lee el catálogo de productos que entrega el sistema externo (CSV) y lo
// convierte en filas de products, location_stocks y sales_limits.
//
// Formato: encabezado obligatorio id,name,allocation_type,allocatable,frame_limit.
// El separador puede ser coma o punto y coma (exportes de Excel en español).
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Entry una fila del catálogo.
type Entry struct {
	ProductID      int64
	Name           string
	AllocationType string
	AllocatableQty int64
	FrameLimitQty  int64 // solo FRAME; 0 = sin cupo propio
}

var header = []string{"id", "name", "allocation_type", "allocatable", "frame_limit"}

// Decode envuelve r según la codificación del archivo.
func Decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("catalog: codificación no soportada %q", encoding)
}

// Parse lee y valida el catálogo. Ids repetidos o negativos son error; la salida va ordenada por id.
func Parse(r io.Reader, encoding string) ([]Entry, error) {
	dr, err := Decode(r, encoding)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dr)
	if err != nil {
		return nil, fmt.Errorf("catalog: leer: %w", err)
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	cr.TrimLeadingSpace = true
	if first, _, _ := strings.Cut(text, "\n"); strings.Count(first, ";") > strings.Count(first, ",") {
		cr.Comma = ';'
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("catalog: csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog: archivo vacío")
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(rows))
	out := make([]Entry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		e, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("catalog: línea %d: %w", line, err)
		}
		if seen[e.ProductID] {
			return nil, fmt.Errorf("catalog: línea %d: producto %d repetido", line, e.ProductID)
		}
		seen[e.ProductID] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func checkHeader(row []string) error {
	if len(row) < len(header) {
		return fmt.Errorf("catalog: encabezado incompleto, se espera %s", strings.Join(header, ","))
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(row[i]), h) {
			return fmt.Errorf("catalog: columna %d debe ser %q, no %q", i+1, h, row[i])
		}
	}
	return nil
}

func parseRow(row []string) (Entry, error) {
	if len(row) < len(header) {
		return Entry{}, fmt.Errorf("se esperan %d columnas, hay %d", len(header), len(row))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil || id <= 0 {
		return Entry{}, fmt.Errorf("id inválido %q", row[0])
	}
	name := strings.TrimSpace(row[1])
	if name == "" {
		return Entry{}, fmt.Errorf("name vacío")
	}
	typ := strings.ToUpper(strings.TrimSpace(row[2]))
	if !entity.ValidAllocationType(typ) {
		return Entry{}, fmt.Errorf("allocation_type desconocido %q", row[2])
	}
	alloc, err := parseQty(row[3])
	if err != nil {
		return Entry{}, fmt.Errorf("allocatable: %w", err)
	}
	limit, err := parseQty(row[4])
	if err != nil {
		return Entry{}, fmt.Errorf("frame_limit: %w", err)
	}
	if typ == entity.AllocationTypeReal && limit != 0 {
		return Entry{}, fmt.Errorf("frame_limit solo aplica a productos FRAME")
	}
	return Entry{ProductID: id, Name: name, AllocationType: typ, AllocatableQty: alloc, FrameLimitQty: limit}, nil
}

func parseQty(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("cantidad inválida %q", s)
	}
	return n, nil
}

// WriteSQL escribe los INSERT idempotentes (ON CONFLICT) para cargar el catálogo en PostgreSQL.
// committed_qty y consumed_qty no se tocan en filas existentes.
func WriteSQL(w io.Writer, entries []Entry, locationID string) error {
	bw := &errWriter{w: w}
	bw.printf("-- Catálogo de productos (%d filas)\n", len(entries))
	bw.printf("-- Generado por cmd/seed_catalog\n\n")
	if len(entries) == 0 {
		return bw.err
	}

	bw.printf("-- 1. Productos\n")
	bw.printf("INSERT INTO products (id, name, allocation_type) VALUES\n")
	for i, e := range entries {
		bw.printf("  (%d, '%s', '%s')%s\n", e.ProductID, escapeSQL(e.Name), e.AllocationType, sep(i, len(entries)))
	}
	bw.printf("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, allocation_type = EXCLUDED.allocation_type, updated_at = now();\n\n")

	bw.printf("-- 2. Libro de stock (ubicación %s)\n", locationID)
	bw.printf("INSERT INTO location_stocks (product_id, location_id, allocatable_qty) VALUES\n")
	for i, e := range entries {
		bw.printf("  (%d, '%s', %d)%s\n", e.ProductID, escapeSQL(locationID), e.AllocatableQty, sep(i, len(entries)))
	}
	bw.printf("ON CONFLICT (product_id, location_id) DO UPDATE SET allocatable_qty = GREATEST(EXCLUDED.allocatable_qty, location_stocks.committed_qty), updated_at = now();\n")

	var limits []Entry
	for _, e := range entries {
		if e.FrameLimitQty > 0 {
			limits = append(limits, e)
		}
	}
	if len(limits) > 0 {
		bw.printf("\n-- 3. Cupos frame\n")
		bw.printf("INSERT INTO sales_limits (product_id, frame_limit_qty) VALUES\n")
		for i, e := range limits {
			bw.printf("  (%d, %d)%s\n", e.ProductID, e.FrameLimitQty, sep(i, len(limits)))
		}
		bw.printf("ON CONFLICT (product_id) DO UPDATE SET frame_limit_qty = GREATEST(EXCLUDED.frame_limit_qty, sales_limits.consumed_qty), updated_at = now();\n")
	}
	return bw.err
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
