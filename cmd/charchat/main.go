// Command charchat is a terminal client for a character chat server.
package main

import "github.com/charchat/charchat/internal/cli"

func main() {
	cli.Execute()
}
