package main

import "github.com/repplus/paramscope/cmd"

func main() {
	cmd.Execute()
}
