package main

import "github.com/mamadbah2/telelbirds/cmd/telelbirds/commands"

func main() {
	commands.Execute()
}
