package main

import "github.com/iksnae/vis-merge/cmd"

func main() {
	cmd.Execute()
}
