package main

import "github.com/pacco-io/pacco/cmd"

func main() {
	cmd.Execute()
}
