package main

import (
	"os"

	"snax.fit/snax/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
