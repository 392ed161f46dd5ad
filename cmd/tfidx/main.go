package main

import "tfidx/internal/cli"

func main() {
	cli.Execute()
}
