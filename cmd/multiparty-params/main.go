package main

import "multiparty-params/internal/cli"

func main() {
	cli.Execute()
}
