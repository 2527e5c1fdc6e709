package main

import "github.com/jywlabs/prdwiz/cmd"

func main() {
	cmd.Execute()
}
