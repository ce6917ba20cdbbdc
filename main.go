package main

import "github.com/qobs-build/hiergen/cmd"

func main() {
	cmd.Execute()
}
