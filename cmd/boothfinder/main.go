package main

import "github.com/expomap/boothfinder/cmd/boothfinder/cmd"

func main() {
	cmd.Execute()
}
