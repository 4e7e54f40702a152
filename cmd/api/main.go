package main

import (
	"os"

	"shelter-operations/internal/cli"
)

// @title Shelter Operations API
// @version 1.0
// @description Ciclo de vida de estado y ubicación de animales albergados.
// @BasePath /
func main() {
	os.Exit(cli.Execute())
}
