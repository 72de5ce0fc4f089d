package main

import "ride-agent/internal/cli"

func main() {
	cli.Execute()
}
