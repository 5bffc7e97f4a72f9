package main

import (
	_ "time/tzdata"

	"github.com/oggyno/kasir-restoran/internal/cli"
)

func main() {
	cli.Execute()
}
