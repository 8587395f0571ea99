package main

import "github.com/RyanBlaney/sonido-armonia/cli"

func main() {
	cli.Execute()
}
