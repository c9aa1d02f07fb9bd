package main

import "chatrelay/cli"

func main() {
	cli.Execute()
}
