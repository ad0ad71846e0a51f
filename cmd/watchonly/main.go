package main

import "github.com/vietddude/watchonly/internal/cli"

func main() {
	cli.Execute()
}
