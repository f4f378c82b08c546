package main

import "github.com/iksnae/persona-chat/cmd"

func main() {
	cmd.Execute()
}
