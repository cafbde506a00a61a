package main

import (
	"os"

	"github.com/soundprediction/graphrag/cmd/graphrag"
)

func main() {
	if err := graphrag.Execute(); err != nil {
		os.Exit(1)
	}
}
