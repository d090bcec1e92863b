package main

import "github.com/pfrederiksen/musiclist/internal/cli"

func main() {
	cli.Execute()
}
