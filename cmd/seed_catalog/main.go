// seed_catalog genera el script SQL para poblar products, location_stocks y sales_limits
// a partir del CSV de catálogo que exporta el sistema de productos.
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.csv] [codificación]
// Por defecto busca catalogo.csv en el directorio actual, en UTF-8 (latin1 y windows-1252 también).
// Escribe: internal/infrastructure/postgres/seeds/catalog.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/infrastructure/catalog"
)

func main() {
	csvPath := "catalogo.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	encoding := "utf-8"
	if len(os.Args) > 2 {
		encoding = os.Args[2]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	entries, err := catalog.Parse(f, encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	// Ruta del script de salida (relativa al módulo)
	moduleRoot := findModuleRoot()
	outDir := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "seeds")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	outPath := filepath.Join(outDir, "catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := catalog.WriteSQL(out, entries, entity.DefaultLocationID); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	frames := 0
	for _, e := range entries {
		if e.AllocationType == entity.AllocationTypeFrame {
			frames++
		}
	}
	fmt.Printf("Generado %s: %d productos, %d frame\n", outPath, len(entries), frames)
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
