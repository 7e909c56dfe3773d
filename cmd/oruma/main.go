package main

import "github.com/KaushikNagaraj77/oruma-go/internal/cli"

func main() {
	cli.Execute()
}
