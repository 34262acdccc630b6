package main

import "github.com/brogergvhs/crunchymanga/cmd"

func main() {
	cmd.Execute()
}
