package main

import "github.com/CodeStranger-Fred/trainplot/cmd"

func main() {
	cmd.Execute()
}
