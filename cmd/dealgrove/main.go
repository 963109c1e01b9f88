package main

import "github.com/dealgrove/dealgrove/internal/cli"

func main() {
	cli.Execute()
}
