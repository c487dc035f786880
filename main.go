package main

import "github.com/samsaffron/streamdown/cmd"

func main() {
	cmd.Execute()
}
