package main

import "gitignoregen/internal/cli"

func main() {
	cli.Execute()
}
