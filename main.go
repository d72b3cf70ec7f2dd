package main

import "github.com/derickschaefer/liftoff/cmd"

func main() {
	cmd.Execute()
}
