package main

import "github.com/CarterFendley/pipelines/internal/cli"

func main() {
	cli.Execute()
}
