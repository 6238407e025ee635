package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/danl5/gofade/pkg/config"
	"github.com/danl5/gofade/pkg/controller"
)

var (
	outputPath = flag.String("o", "./fsm_visual", "output path")
)

func main() {
	flag.Parse()

	m, err := controller.NewMachine(config.Config{Into: true}, slog.Default())
	if err != nil {
		panic(err)
	}
	visualStr := m.Visualize()

	f, err := os.OpenFile(*outputPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	_, err = f.WriteString(visualStr)
	if err != nil {
		panic(err)
	}

	fmt.Println("Visualization finished")
}
