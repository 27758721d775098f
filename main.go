package main

import "github.com/pipet-dev/pipet/cmd"

func main() {
	cmd.Execute()
}
