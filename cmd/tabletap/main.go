package main

import "github.com/tjaksic234/tabletap/cmd"

func main() {
	cmd.Execute()
}
