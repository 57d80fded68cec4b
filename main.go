package main

import "github.com/recruiterlab/persona-matrix/cmd"

func main() {
	cmd.Execute()
}
