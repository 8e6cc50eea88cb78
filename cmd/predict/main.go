// Command predict evaluates operator-job pairs from the terminal.
package main

import (
	"errors"
	"fmt"
	"os"

	"mismatch-predictor/internal/models"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, models.ErrInvalidInput) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
