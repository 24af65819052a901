package main

import "github.com/UkralStul/minifeed/internal/cli"

func main() {
	cli.Execute()
}
