package main

import "github.com/propdoc/propdoc/internal/cli"

func main() {
	cli.Execute()
}
