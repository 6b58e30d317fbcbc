package main

import "github.com/vietddude/sfclient/internal/cli"

func main() {
	cli.Execute()
}
