package main

import "splice/cmd"

func main() {
	cmd.Execute()
}
