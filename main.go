package main

import "github.com/wentf9/nij/cmd"

func main() {
	cmd.Execute()
}
