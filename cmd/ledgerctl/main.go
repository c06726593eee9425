// Command ledgerctl herramientas de operación de los libros: validar semillas,
// simular un consumo FEFO, emitir tokens de desarrollo y consultar el diario.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
