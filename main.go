package main

import "github.com/VriskaSerket51/eastward-go/src/cmd"

func main() {
	cmd.Execute()
}
