package main

import "github.com/srslogics/datasentinel/cmd"

func main() {
	cmd.Execute()
}
