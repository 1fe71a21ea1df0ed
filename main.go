package main

import "github.com/onit-labs/onit-markets-go/cmd"

func main() {
	cmd.Execute()
}
