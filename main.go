package main

import "github.com/lab1702/starbattle/cli"

func main() {
	cli.Execute()
}
