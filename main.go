package main

import "github.com/xplore-cli/xplore/cmd"

func main() {
	cmd.Execute()
}
