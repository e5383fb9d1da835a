// ====================================
// File: cmd/price-report/main.go
// ====================================
package main

import "github.com/rovshanmuradov/solana-price-report/internal/cli"

func main() {
	cli.Execute()
}
