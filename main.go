package main

import "reelnotes/cmd"

func main() {
	cmd.Execute()
}
