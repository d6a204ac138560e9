package main

import "github.com/josephlewis42/osh/cmd"

func main() {
	cmd.Execute()
}
