// seed_catalog genera el script SQL que puebla marcas, categorías y productos a partir de la
// exportación CSV de la planilla de precios (Excel guarda en Windows-1252).
//
// Uso: go run ./cmd/seed_catalog [catalogo.csv] [salida.sql]
// Por defecto lee catalogo.csv del directorio actual y escribe
// internal/infrastructure/postgres/migrations/0002_seed_catalog.sql.
//
// Columnas: name, company, category, consumer_price, retail_price, bulk_price, bulk_limit,
// description, image. Un precio vacío queda NULL.
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var columns = []string{
	"name", "company", "category", "consumer_price", "retail_price", "bulk_price", "bulk_limit",
	"description", "image",
}

type row struct {
	Name        string
	Company     string
	Category    string
	Consumer    decimal.NullDecimal
	Retail      decimal.NullDecimal
	Bulk        decimal.NullDecimal
	BulkLimit   *int
	Description string
	Image       string
}

func main() {
	csvPath := "catalogo.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "0002_seed_catalog.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := parseCatalog(transform.NewReader(f, charmap.Windows1252.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d productos\n", outPath, len(rows))
}

// parseCatalog lee el CSV ya decodificado a UTF-8. La primera fila es el encabezado.
func parseCatalog(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range columns[:3] {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("falta la columna %q", c)
		}
	}

	var rows []row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if get("name") == "" {
			continue
		}
		r := row{
			Name:        get("name"),
			Company:     get("company"),
			Category:    get("category"),
			Description: get("description"),
			Image:       get("image"),
		}
		if r.Company == "" || r.Category == "" {
			return nil, fmt.Errorf("línea %d: company y category son obligatorios", line)
		}
		for col, dst := range map[string]*decimal.NullDecimal{
			"consumer_price": &r.Consumer, "retail_price": &r.Retail, "bulk_price": &r.Bulk,
		} {
			if *dst, err = parsePrice(get(col)); err != nil {
				return nil, fmt.Errorf("línea %d, %s: %w", line, col, err)
			}
		}
		if s := get("bulk_limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("línea %d, bulk_limit: %q no es un entero válido", line, s)
			}
			r.BulkLimit = &n
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// parsePrice acepta "1.234,50", "1234.50" y "Rs 1,200"; vacío es NULL.
func parsePrice(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(s, "Rs."), "Rs"))
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	s = strings.ReplaceAll(s, " ", "")
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ",") == 1 && len(s)-strings.Index(s, ",") != 4:
		s = strings.ReplaceAll(s, ",", ".")
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("precio %q inválido", s)
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("precio %q negativo", s)
	}
	return decimal.NewNullDecimal(d), nil
}

// writeSQL escribe el script idempotente: ids derivados del nombre, ON CONFLICT en todo.
func writeSQL(w io.Writer, rows []row) error {
	companies := map[string]struct{}{}
	categories := map[string]struct{}{}
	for _, r := range rows {
		companies[r.Company] = struct{}{}
		categories[r.Category] = struct{}{}
	}

	var b strings.Builder
	b.WriteString("-- Catálogo inicial\n")
	b.WriteString("-- Generado por cmd/seed_catalog\n\n")

	b.WriteString("-- 1. Marcas\n")
	for _, name := range sortedKeys(companies) {
		fmt.Fprintf(&b, "INSERT INTO companies (id, name) VALUES ('%s', '%s') ON CONFLICT (name) DO NOTHING;\n",
			stableID("company", name), escapeSQL(name))
	}
	b.WriteString("\n-- 2. Categorías\n")
	for _, name := range sortedKeys(categories) {
		fmt.Fprintf(&b, "INSERT INTO categories (id, name) VALUES ('%s', '%s') ON CONFLICT (name) DO NOTHING;\n",
			stableID("category", name), escapeSQL(name))
	}

	b.WriteString("\n-- 3. Productos (price y original_price son alias de consumer_price y retail_price)\n")
	for _, r := range rows {
		fmt.Fprintf(&b, `INSERT INTO products (id, name, company_id, category_id, price, consumer_price, original_price,
                      retail_price, bulk_price, bulk_limit, image_url, description)
SELECT '%s', '%s', c.id, k.id, %s, %s, %s, %s, %s, %s, '%s', '%s'
FROM companies c, categories k WHERE c.name = '%s' AND k.name = '%s'
ON CONFLICT (id) DO UPDATE SET consumer_price = EXCLUDED.consumer_price, retail_price = EXCLUDED.retail_price,
    bulk_price = EXCLUDED.bulk_price, bulk_limit = EXCLUDED.bulk_limit, updated_at = now();
`,
			stableID("product", r.Company+"/"+r.Name), escapeSQL(r.Name),
			sqlDecimal(r.Consumer), sqlDecimal(r.Consumer), sqlDecimal(r.Retail), sqlDecimal(r.Retail),
			sqlDecimal(r.Bulk), sqlInt(r.BulkLimit), escapeSQL(r.Image), escapeSQL(r.Description),
			escapeSQL(r.Company), escapeSQL(r.Category),
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// stableID UUID v5: la misma fila genera siempre el mismo id.
func stableID(kind, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+strings.ToLower(name))).String()
}

func sqlDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return "NULL"
	}
	return d.Decimal.StringFixed(2)
}

func sqlInt(n *int) string {
	if n == nil {
		return "NULL"
	}
	return strconv.Itoa(*n)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
