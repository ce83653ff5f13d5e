package main

import "github.com/chriserin/tap14/cmd"

func main() {
	cmd.Execute()
}
